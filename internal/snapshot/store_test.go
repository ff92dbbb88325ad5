package snapshot

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "atelier.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	blob := []byte(`{"chat":{"state":"completed"}}`)
	id, err := store.Save(blob)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(blob) {
		t.Errorf("loaded blob = %q, want %q", loaded, blob)
	}
}

func TestLoadUnknownID(t *testing.T) {
	store := newTestStore(t)
	blob, err := store.Load("no-such-id")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if blob != nil {
		t.Errorf("unknown ID returned data: %q", blob)
	}
}

func TestLatestAndList(t *testing.T) {
	store := newTestStore(t)

	if blob, err := store.Latest(); err != nil || blob != nil {
		t.Fatalf("empty store Latest = %q, %v", blob, err)
	}

	for _, payload := range []string{"first", "second", "third"} {
		if _, err := store.Save([]byte(payload)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	infos, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("listed %d snapshots, want 3", len(infos))
	}
}

func TestPrune(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		if _, err := store.Save([]byte{byte(i)}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	if err := store.Prune(2); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	infos, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 2 {
		t.Errorf("after prune: %d snapshots, want 2", len(infos))
	}
}
