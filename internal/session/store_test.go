package session

import (
	"testing"

	"github.com/atelier-dev/atelier/internal/chat"
)

func TestStoreSeedsEveryMode(t *testing.T) {
	s := NewStore()
	for _, m := range AllModes() {
		rec := s.Get(m)
		if rec.State != StateIdle {
			t.Errorf("mode %s: initial state = %q, want %q", m, rec.State, StateIdle)
		}
	}
}

func TestUpdateIsolatesModes(t *testing.T) {
	s := NewStore()
	chatBefore := s.Get(ModeChat)
	chatVersion := s.Version(ModeChat)

	s.Update(ModeSummarizer, func(r Record) Record {
		r.Input = "long article"
		r.State = StateProcessing
		return r
	})

	if got := s.Get(ModeSummarizer).Input; got != "long article" {
		t.Errorf("summarizer input = %q, want %q", got, "long article")
	}
	chatAfter := s.Get(ModeChat)
	if chatAfter.State != chatBefore.State || chatAfter.Input != chatBefore.Input {
		t.Error("chat record changed by summarizer update")
	}
	if s.Version(ModeChat) != chatVersion {
		t.Errorf("chat version advanced from %d to %d on summarizer update", chatVersion, s.Version(ModeChat))
	}
}

func TestNoOpUpdateDoesNotAdvanceVersion(t *testing.T) {
	s := NewStore()
	before := s.Version(ModeRewriter)

	s.Update(ModeRewriter, func(r Record) Record { return r })

	if got := s.Version(ModeRewriter); got != before {
		t.Errorf("version advanced to %d on identity update, want %d", got, before)
	}

	// Same value written explicitly is still a no-op.
	s.Update(ModeRewriter, func(r Record) Record {
		r.State = StateIdle
		return r
	})
	if got := s.Version(ModeRewriter); got != before {
		t.Errorf("version advanced to %d on value-equal update, want %d", got, before)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	s := NewStore()
	s.Update(ModeChat, func(r Record) Record {
		r.History = append(r.History, chat.TextMessage(chat.RoleUser, "hi"))
		r.State = StateCompleted
		return r
	})

	s.Reset(ModeChat)

	rec := s.Get(ModeChat)
	if len(rec.History) != 0 {
		t.Errorf("history length after reset = %d, want 0", len(rec.History))
	}
	if rec.State != StateIdle {
		t.Errorf("state after reset = %q, want %q", rec.State, StateIdle)
	}
}

func TestUpdateUnknownModePanics(t *testing.T) {
	s := NewStore()
	defer func() {
		if recover() == nil {
			t.Error("update of unknown mode did not panic")
		}
	}()
	s.Update(Mode(99), func(r Record) Record { return r })
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewStore()
	s.Update(ModeChat, func(r Record) Record {
		r.History = []chat.Message{
			chat.TextMessage(chat.RoleUser, "Hi"),
			chat.TextMessage(chat.RoleModel, "Hello"),
		}
		r.State = StateCompleted
		return r
	})
	s.Update(ModeScaffolder, func(r Record) Record {
		r.Input = "todo app"
		return r
	})

	blob, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	restored := NewStore()
	if err := restored.Restore(blob); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	rec := restored.Get(ModeChat)
	if len(rec.History) != 2 {
		t.Fatalf("restored history length = %d, want 2", len(rec.History))
	}
	if got := rec.History[1].FirstText(); got != "Hello" {
		t.Errorf("restored model text = %q, want %q", got, "Hello")
	}
	if got := restored.Get(ModeScaffolder).Input; got != "todo app" {
		t.Errorf("restored scaffolder input = %q, want %q", got, "todo app")
	}
}

func TestRestoreIgnoresUnknownModeNames(t *testing.T) {
	s := NewStore()
	blob := []byte(`{"no-such-mode":{"state":"completed"},"chat":{"state":"error"}}`)
	if err := s.Restore(blob); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := s.Get(ModeChat).State; got != StateError {
		t.Errorf("chat state = %q, want %q", got, StateError)
	}
}
