package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/atelier-dev/atelier/internal/backend"
	"github.com/atelier-dev/atelier/internal/chat"
	"github.com/atelier-dev/atelier/internal/config"
	"github.com/atelier-dev/atelier/internal/provider"
	"github.com/atelier-dev/atelier/internal/session"
)

func newTestOrchestrator(t *testing.T, scripted *backend.Scripted) (*Orchestrator, *session.Store) {
	t.Helper()
	store := session.NewStore()
	cfg := config.DefaultConfig()
	cfg.SetAPIKey("google", "test-key")
	o := New(store, cfg, nil)
	o.SetClientFactory(func(provider.Selection, string) backend.Conversationalist {
		return scripted
	})
	return o, store
}

func stagePending(store *session.Store, text string) {
	store.Update(session.ModeChat, func(r session.Record) session.Record {
		r.PendingInput = text
		return r
	})
}

func TestSubmitSuccess(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("Hello")}
	o, store := newTestOrchestrator(t, scripted)
	stagePending(store, "Hi")

	outcome := o.Submit(context.Background(), session.ModeChat)

	if outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", outcome)
	}
	rec := store.Get(session.ModeChat)
	if len(rec.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(rec.History))
	}
	user, model := rec.History[0], rec.History[1]
	if user.Role != chat.RoleUser || user.FirstText() != "Hi" {
		t.Errorf("user message = %+v", user)
	}
	if model.Role != chat.RoleModel || model.FirstText() != "Hello" {
		t.Errorf("model message = %+v", model)
	}
	if len(model.Parts) != 1 {
		t.Errorf("model parts = %d, want 1", len(model.Parts))
	}
	if model.Thinking != nil {
		t.Errorf("empty thinking should normalize to nil, got %v", model.Thinking)
	}
	if rec.IsStreaming {
		t.Error("streaming flag not cleared")
	}
	if rec.State != session.StateCompleted {
		t.Errorf("state = %q, want completed", rec.State)
	}
	if rec.PendingInput != "" {
		t.Error("pending input not cleared on dispatch")
	}
}

func TestSubmitEmptyInputIsNoOp(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("never")}
	o, store := newTestOrchestrator(t, scripted)
	stagePending(store, "   \n\t ")
	version := store.Version(session.ModeChat)

	if outcome := o.Submit(context.Background(), session.ModeChat); outcome != OutcomeNoOp {
		t.Fatalf("outcome = %v, want noop", outcome)
	}
	if scripted.Calls != 0 {
		t.Error("backend was called for an empty submission")
	}
	if store.Version(session.ModeChat) != version {
		t.Error("session mutated by an empty submission")
	}
}

func TestSubmitWhileStreamingIsNoOp(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("never")}
	o, store := newTestOrchestrator(t, scripted)
	store.Update(session.ModeChat, func(r session.Record) session.Record {
		r.PendingInput = "second"
		r.IsStreaming = true
		return r
	})

	if outcome := o.Submit(context.Background(), session.ModeChat); outcome != OutcomeNoOp {
		t.Fatalf("outcome = %v, want noop", outcome)
	}
	if scripted.Calls != 0 {
		t.Error("backend called while a submission was in flight")
	}
}

func TestSubmitMissingCredentialRejected(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("never")}
	store := session.NewStore()
	cfg := config.DefaultConfig() // google selected, no key stored
	o := New(store, cfg, nil)
	o.SetClientFactory(func(provider.Selection, string) backend.Conversationalist { return scripted })
	stagePending(store, "Hi")

	outcome := o.Submit(context.Background(), session.ModeChat)

	if outcome != OutcomeRejected {
		t.Fatalf("outcome = %v, want rejected", outcome)
	}
	rec := store.Get(session.ModeChat)
	if rec.Failure == nil || rec.Failure.Kind != session.FailureValidation {
		t.Fatalf("failure = %+v, want validation failure", rec.Failure)
	}
	if !strings.Contains(rec.Failure.Message, "requires an API key") {
		t.Errorf("failure message = %q", rec.Failure.Message)
	}
	if len(rec.History) != 0 {
		t.Errorf("history mutated on rejection: %d entries", len(rec.History))
	}
	if scripted.Calls != 0 {
		t.Error("backend called despite missing credential")
	}
}

func TestSubmitWhitespaceCredentialRejected(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("never")}
	store := session.NewStore()
	cfg := config.DefaultConfig()
	cfg.SetAPIKey("google", "   ")
	o := New(store, cfg, nil)
	o.SetClientFactory(func(provider.Selection, string) backend.Conversationalist { return scripted })
	stagePending(store, "Hi")

	if outcome := o.Submit(context.Background(), session.ModeChat); outcome != OutcomeRejected {
		t.Fatalf("outcome = %v, want rejected", outcome)
	}
}

func TestSubmitLocalProviderNeedsNoCredential(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("ok")}
	store := session.NewStore()
	cfg := config.DefaultConfig()
	cfg.Provider.Selected = "local"
	o := New(store, cfg, nil)
	o.SetClientFactory(func(provider.Selection, string) backend.Conversationalist { return scripted })
	stagePending(store, "Hi")

	if outcome := o.Submit(context.Background(), session.ModeChat); outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", outcome)
	}
}

func TestSubmitCancellationRollsBackPlaceholderOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scripted := &backend.Scripted{
		Updates:     []backend.Update{{Text: "partial"}},
		Final:       backend.EchoText("never"),
		CancelAfter: 1,
		Cancel:      cancel,
	}
	o, store := newTestOrchestrator(t, scripted)
	stagePending(store, "Hi")

	outcome := o.Submit(ctx, session.ModeChat)

	if outcome != OutcomeAborted {
		t.Fatalf("outcome = %v, want aborted", outcome)
	}
	rec := store.Get(session.ModeChat)
	// User message retained, placeholder removed.
	if len(rec.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(rec.History))
	}
	if rec.History[0].Role != chat.RoleUser {
		t.Errorf("surviving message role = %q, want user", rec.History[0].Role)
	}
	if rec.Failure != nil {
		t.Errorf("abort recorded an error: %+v", rec.Failure)
	}
	if rec.IsStreaming {
		t.Error("streaming flag not cleared on abort")
	}
	if rec.State != session.StateIdle {
		t.Errorf("state = %q, want idle", rec.State)
	}
}

func TestSubmitBackendFailure(t *testing.T) {
	scripted := &backend.Scripted{Err: errors.New("connection reset")}
	o, store := newTestOrchestrator(t, scripted)
	stagePending(store, "Hi")

	outcome := o.Submit(context.Background(), session.ModeChat)

	if outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want failed", outcome)
	}
	rec := store.Get(session.ModeChat)
	if len(rec.History) != 1 {
		t.Fatalf("history length = %d, want 1 (user message preserved)", len(rec.History))
	}
	if rec.Failure == nil || rec.Failure.Message != "Chat failed: connection reset" {
		t.Errorf("failure = %+v", rec.Failure)
	}
	if rec.Failure.Kind != session.FailureTransport {
		t.Errorf("failure kind = %q, want transport", rec.Failure.Kind)
	}
	if rec.State != session.StateError {
		t.Errorf("state = %q, want error", rec.State)
	}
}

func TestSubmitCumulativeUpdatesReplaceWholesale(t *testing.T) {
	scripted := &backend.Scripted{
		Updates: []backend.Update{{Text: "Hel"}, {Text: "Hello"}},
		Final:   backend.Response{Text: "Hello"},
	}
	o, store := newTestOrchestrator(t, scripted)
	stagePending(store, "Hi")

	if outcome := o.Submit(context.Background(), session.ModeChat); outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", outcome)
	}
	rec := store.Get(session.ModeChat)
	if got := rec.History[1].FirstText(); got != "Hello" {
		t.Errorf("final text = %q, want %q (cumulative text must replace, not append)", got, "Hello")
	}
}

func TestSubmitThinkingReplacedOnlyWhenCarried(t *testing.T) {
	scripted := &backend.Scripted{
		Updates: []backend.Update{
			{Text: "a", Thinking: []chat.ThinkingSegment{{Label: "plan", Text: "step one"}}},
			{Text: "ab"}, // no thinking carried: list left untouched
		},
		Final: backend.Response{Text: "ab", Thinking: []chat.ThinkingSegment{{Label: "plan", Text: "step one"}}},
	}
	o, store := newTestOrchestrator(t, scripted)
	stagePending(store, "Hi")

	o.Submit(context.Background(), session.ModeChat)

	rec := store.Get(session.ModeChat)
	if len(rec.History[1].Thinking) != 1 || rec.History[1].Thinking[0].Text != "step one" {
		t.Errorf("thinking = %+v, want the carried segment preserved", rec.History[1].Thinking)
	}
}

func TestSubmitEmptyFinalTextSynthesizesEmptyPart(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.Response{Text: ""}}
	o, store := newTestOrchestrator(t, scripted)
	stagePending(store, "Hi")

	o.Submit(context.Background(), session.ModeChat)

	rec := store.Get(session.ModeChat)
	model := rec.History[1]
	if len(model.Parts) != 1 {
		t.Fatalf("model parts = %d, want exactly one synthesized empty text part", len(model.Parts))
	}
	if model.Parts[0].Text != "" || model.Parts[0].InlineData != nil {
		t.Errorf("synthesized part = %+v", model.Parts[0])
	}
}

func TestSubmitAttachmentsBecomeParts(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("read it")}
	o, store := newTestOrchestrator(t, scripted)
	store.Update(session.ModeChat, func(r session.Record) session.Record {
		r.PendingInput = "see attached"
		r.PendingFiles = []session.Attachment{
			{Name: "a.txt", MIMEType: "text/plain", Data: []byte("alpha")},
			{Name: "b.png", MIMEType: "image/png", Data: []byte{1, 2, 3}},
		}
		return r
	})

	o.Submit(context.Background(), session.ModeChat)

	if scripted.LastRequest == nil {
		t.Fatal("backend never called")
	}
	parts := scripted.LastRequest.NewMessage.Parts
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3 (text + document + image)", len(parts))
	}
	if !strings.Contains(parts[1].Text, "--- document: a.txt ---") {
		t.Errorf("document part = %q", parts[1].Text)
	}
	if parts[2].InlineData == nil || parts[2].InlineData.MIMEType != "image/png" {
		t.Errorf("image part = %+v", parts[2])
	}
	rec := store.Get(session.ModeChat)
	if len(rec.PendingFiles) != 0 {
		t.Error("pending files not cleared on dispatch")
	}
}

func TestSubmitPassesPriorHistoryOnly(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("third")}
	o, store := newTestOrchestrator(t, scripted)
	store.Update(session.ModeChat, func(r session.Record) session.Record {
		r.History = []chat.Message{
			chat.TextMessage(chat.RoleUser, "first"),
			chat.TextMessage(chat.RoleModel, "second"),
		}
		r.PendingInput = "next"
		return r
	})

	o.Submit(context.Background(), session.ModeChat)

	if got := len(scripted.LastRequest.History); got != 2 {
		t.Errorf("backend saw %d history entries, want the 2 prior to this exchange", got)
	}
	if scripted.LastRequest.NewMessage.FirstText() != "next" {
		t.Errorf("new message = %q", scripted.LastRequest.NewMessage.FirstText())
	}
}

// clearingBackend wipes the chat history mid-stream, simulating the
// user clearing the conversation while a response is in flight.
type clearingBackend struct {
	store *session.Store
}

func (c *clearingBackend) SendConversation(_ context.Context, req backend.Request) (*backend.Response, error) {
	req.OnUpdate(backend.Update{Text: "partial"})
	c.store.Reset(session.ModeChat)
	req.OnUpdate(backend.Update{Text: "more"})
	return &backend.Response{Text: "done"}, nil
}

func TestMergeIsNoOpWhenHistoryCleared(t *testing.T) {
	store := session.NewStore()
	cfg := config.DefaultConfig()
	cfg.SetAPIKey("google", "k")
	o := New(store, cfg, nil)
	o.SetClientFactory(func(provider.Selection, string) backend.Conversationalist {
		return &clearingBackend{store: store}
	})
	stagePending(store, "Hi")

	outcome := o.Submit(context.Background(), session.ModeChat)

	if outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", outcome)
	}
	rec := store.Get(session.ModeChat)
	if len(rec.History) != 0 {
		t.Errorf("merge resurrected cleared history: %d entries", len(rec.History))
	}
}

func TestOtherModesUntouchedBySubmit(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("Hello")}
	o, store := newTestOrchestrator(t, scripted)
	stagePending(store, "Hi")
	versions := make(map[session.Mode]uint64)
	for _, m := range session.AllModes() {
		if m != session.ModeChat {
			versions[m] = store.Version(m)
		}
	}

	o.Submit(context.Background(), session.ModeChat)

	for m, v := range versions {
		if store.Version(m) != v {
			t.Errorf("mode %s version changed from %d to %d", m, v, store.Version(m))
		}
	}
}

func TestRunGenerationSuccess(t *testing.T) {
	scripted := &backend.Scripted{
		Updates: []backend.Update{{Text: "A sum"}, {Text: "A summary."}},
		Final:   backend.Response{Text: "A summary."},
	}
	o, store := newTestOrchestrator(t, scripted)
	store.Update(session.ModeSummarizer, func(r session.Record) session.Record {
		r.Input = "a very long article"
		return r
	})

	outcome := o.RunGeneration(context.Background(), session.ModeSummarizer)

	if outcome != OutcomeCommitted {
		t.Fatalf("outcome = %v, want committed", outcome)
	}
	rec := store.Get(session.ModeSummarizer)
	if rec.Output != "A summary." {
		t.Errorf("output = %q", rec.Output)
	}
	if rec.State != session.StateCompleted {
		t.Errorf("state = %q, want completed", rec.State)
	}
	if rec.Progress.Percentage != 100 {
		t.Errorf("progress = %+v", rec.Progress)
	}
}

func TestRunGenerationEmptyInputIsNoOp(t *testing.T) {
	scripted := &backend.Scripted{Final: backend.EchoText("never")}
	o, _ := newTestOrchestrator(t, scripted)

	if outcome := o.RunGeneration(context.Background(), session.ModeSummarizer); outcome != OutcomeNoOp {
		t.Fatalf("outcome = %v, want noop", outcome)
	}
	if scripted.Calls != 0 {
		t.Error("backend called with empty input")
	}
}

func TestRunGenerationFailure(t *testing.T) {
	scripted := &backend.Scripted{Err: errors.New("boom")}
	o, store := newTestOrchestrator(t, scripted)
	store.Update(session.ModeRewriter, func(r session.Record) session.Record {
		r.Input = "rewrite me"
		return r
	})

	if outcome := o.RunGeneration(context.Background(), session.ModeRewriter); outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want failed", outcome)
	}
	rec := store.Get(session.ModeRewriter)
	if rec.Failure == nil || rec.Failure.Message != "Generation failed: boom" {
		t.Errorf("failure = %+v", rec.Failure)
	}
}
