package log

import "testing"

func TestAppendAndReadAll(t *testing.T) {
	tmpDir := t.TempDir()

	logger, err := NewLogger(tmpDir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	events := []LogEvent{
		{Event: EventSubmitStarted, Mode: "chat", Provider: "google", Model: "gemini-2.5-flash"},
		{Event: EventSubmitCommitted, Mode: "chat", Updates: 3, DurationMs: 812},
		{Event: EventLayoutDegenerate, Mode: "splitter", Nodes: 2, Reason: "cycle or missing reference"},
	}
	for _, ev := range events {
		if err := logger.Append(ev); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("read %d events, want %d", len(got), len(events))
	}
	for i, ev := range events {
		if got[i].Event != ev.Event {
			t.Errorf("event %d: got %q, want %q", i, got[i].Event, ev.Event)
		}
		if got[i].Time.IsZero() {
			t.Errorf("event %d: time was not stamped", i)
		}
	}
	if got[1].Updates != 3 {
		t.Errorf("updates: got %d, want 3", got[1].Updates)
	}
}

func TestReadAllMissingFile(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on missing file: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}
