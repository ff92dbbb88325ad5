// Package orchestrator drives one user-initiated exchange against a
// conversational backend end to end: precondition checks, provider
// resolution, optimistic history updates, streaming merges, and
// rollback on failure or cancellation.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelier-dev/atelier/internal/backend"
	"github.com/atelier-dev/atelier/internal/chat"
	"github.com/atelier-dev/atelier/internal/config"
	"github.com/atelier-dev/atelier/internal/filepart"
	"github.com/atelier-dev/atelier/internal/log"
	"github.com/atelier-dev/atelier/internal/provider"
	"github.com/atelier-dev/atelier/internal/session"
	"github.com/atelier-dev/atelier/prompts"
)

// Outcome is the terminal state of one submission.
type Outcome string

const (
	// OutcomeNoOp: preconditions not met, nothing changed.
	OutcomeNoOp Outcome = "noop"
	// OutcomeRejected: validation failed before any backend call.
	OutcomeRejected Outcome = "rejected"
	// OutcomeCommitted: the exchange completed and was folded into history.
	OutcomeCommitted Outcome = "committed"
	// OutcomeAborted: the user cancelled; the placeholder was rolled back.
	OutcomeAborted Outcome = "aborted"
	// OutcomeFailed: the backend failed; the placeholder was rolled back.
	OutcomeFailed Outcome = "failed"
)

const unknownErrorMessage = "An unknown error occurred."

// ClientFactory builds a backend client for a resolved selection.
type ClientFactory func(sel provider.Selection, apiKey string) backend.Conversationalist

// Orchestrator owns the submission pipeline. One instance serves the
// whole workspace; per-submission state lives on the stack.
type Orchestrator struct {
	store   *session.Store
	cfg     *config.Config
	logger  *log.Logger
	clients ClientFactory
}

// New creates an orchestrator over the given store and config. logger
// may be nil to disable event logging.
func New(store *session.Store, cfg *config.Config, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		cfg:     cfg,
		logger:  logger,
		clients: defaultClientFactory,
	}
}

// SetClientFactory replaces the backend construction hook. Tests use
// this to inject scripted backends.
func (o *Orchestrator) SetClientFactory(f ClientFactory) { o.clients = f }

func defaultClientFactory(sel provider.Selection, apiKey string) backend.Conversationalist {
	switch sel.Provider {
	case provider.Google:
		return backend.NewGeminiClient(apiKey, sel.Model)
	case provider.Anthropic:
		return backend.NewAnthropicClient(apiKey, sel.Model)
	case provider.Local:
		return backend.NewLocalClient("", sel.Model)
	default:
		panic(fmt.Sprintf("orchestrator: no client for provider %v", sel.Provider))
	}
}

// Submit executes one chat exchange for the mode's pending input and
// attachments. All failures land in the mode's session record; nothing
// propagates as an error to the caller.
//
// The caller owns the can-submit gate (no second submission while one
// is in flight); Submit still refuses to start when the session is
// already streaming.
func (o *Orchestrator) Submit(ctx context.Context, mode session.Mode) Outcome {
	rec := o.store.Get(mode)
	if rec.IsStreaming {
		return OutcomeNoOp
	}

	text := strings.TrimSpace(rec.PendingInput)
	files := rec.PendingFiles
	if text == "" && len(files) == 0 {
		return OutcomeNoOp
	}

	// Validating.
	sel, key, failure := o.resolve(mode)
	if failure != nil {
		o.reject(mode, *failure)
		return OutcomeRejected
	}

	parts, err := buildParts(text, files)
	if err != nil {
		o.reject(mode, session.Failure{
			Kind:    session.FailureValidation,
			Message: err.Error(),
		})
		return OutcomeRejected
	}

	userMsg := chat.Message{Role: chat.RoleUser, Parts: parts}
	priorHistory := rec.History

	// Dispatching: commit the user message and an empty placeholder
	// atomically, clear the error, and reset the input surface so it
	// is usable again regardless of response latency.
	o.store.Update(mode, func(r session.Record) session.Record {
		history := make([]chat.Message, 0, len(r.History)+2)
		history = append(history, r.History...)
		history = append(history, userMsg, chat.Message{Role: chat.RoleModel, Parts: []chat.Part{}})
		r.History = history
		r.Failure = nil
		r.IsStreaming = true
		r.PendingInput = ""
		r.PendingFiles = nil
		r.State = session.StateProcessing
		r.Progress = session.Progress{Stage: "waiting for response"}
		return r
	})

	o.logEvent(log.LogEvent{
		Event:    log.EventSubmitStarted,
		Mode:     mode.String(),
		Provider: sel.Provider.String(),
		Model:    sel.Model,
	})

	updates := 0
	req := backend.Request{
		History:           priorHistory,
		NewMessage:        userMsg,
		SystemInstruction: systemInstruction(mode),
		Generation:        backend.GenerationConfig{},
		OnUpdate: func(u backend.Update) {
			updates++
			o.foldUpdate(mode, u)
		},
	}

	client := o.clients(sel, key)
	resp, err := client.SendConversation(ctx, req)

	switch {
	case err == nil:
		o.commit(mode, *resp)
		o.logEvent(log.LogEvent{Event: log.EventSubmitCommitted, Mode: mode.String(), Updates: updates})
		return OutcomeCommitted

	case backend.IsAbort(err):
		o.rollback(mode, nil, session.StateIdle)
		o.logEvent(log.LogEvent{Event: log.EventSubmitAborted, Mode: mode.String(), Updates: updates})
		return OutcomeAborted

	default:
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = unknownErrorMessage
		}
		failure := session.Failure{
			Kind:    session.FailureTransport,
			Message: "Chat failed: " + msg,
		}
		o.rollback(mode, &failure, session.StateError)
		o.logEvent(log.LogEvent{Event: log.EventSubmitFailed, Mode: mode.String(), Error: msg})
		return OutcomeFailed
	}
}

// resolve returns the effective selection and trimmed credential, or a
// validation failure when the provider requires a key and none is set.
func (o *Orchestrator) resolve(mode session.Mode) (provider.Selection, string, *session.Failure) {
	sel := provider.Resolve(mode, o.globals(), o.overrides())
	key := strings.TrimSpace(o.cfg.APIKey(sel.Provider.String()))
	if sel.RequiresCredential && key == "" {
		return sel, "", &session.Failure{
			Kind:    session.FailureValidation,
			Message: fmt.Sprintf("%s requires an API key. Add one in Settings.", sel.Provider.Info().Label),
		}
	}
	return sel, key, nil
}

func (o *Orchestrator) globals() provider.Globals {
	globals := provider.Globals{Model: o.cfg.Provider.Model}
	if id, ok := provider.FromName(o.cfg.Provider.Selected); ok {
		globals.Provider = id
	}
	return globals
}

func (o *Orchestrator) overrides() map[session.Mode]provider.Override {
	if len(o.cfg.Modes) == 0 {
		return nil
	}
	overrides := make(map[session.Mode]provider.Override, len(o.cfg.Modes))
	for name, ov := range o.cfg.Modes {
		mode, ok := session.ModeFromName(name)
		if !ok {
			continue
		}
		out := provider.Override{Model: ov.Model}
		if id, found := provider.FromName(ov.Provider); found {
			out.Provider = id
			out.HasProvider = true
		}
		overrides[mode] = out
	}
	return overrides
}

// reject records a validation failure without touching history.
func (o *Orchestrator) reject(mode session.Mode, failure session.Failure) {
	o.store.Update(mode, func(r session.Record) session.Record {
		f := failure
		r.Failure = &f
		r.State = session.StateError
		return r
	})
	o.logEvent(log.LogEvent{Event: log.EventSubmitRejected, Mode: mode.String(), Reason: failure.Message})
}

// foldUpdate merges a cumulative incremental update into the trailing
// placeholder. If history was cleared or rewritten by another actor
// between dispatch and this update, the merge is a silent no-op.
func (o *Orchestrator) foldUpdate(mode session.Mode, u backend.Update) {
	o.store.Update(mode, func(r session.Record) session.Record {
		merged, ok := mergeIntoLast(r.History, u.Text, u.Thinking, false)
		if !ok {
			return r
		}
		r.History = merged
		r.Progress = session.Progress{Stage: "streaming", Percentage: 50}
		return r
	})
}

// commit applies the final response and clears the streaming flag. The
// trailing model message is guaranteed a non-empty parts list.
func (o *Orchestrator) commit(mode session.Mode, resp backend.Response) {
	thinking := resp.Thinking
	if len(thinking) == 0 {
		thinking = nil
	}
	o.store.Update(mode, func(r session.Record) session.Record {
		if merged, ok := mergeIntoLast(r.History, resp.Text, thinking, true); ok {
			r.History = merged
		}
		r.IsStreaming = false
		r.State = session.StateCompleted
		r.Progress = session.Progress{Stage: "done", Percentage: 100}
		return r
	})
}

// rollback removes the trailing placeholder (never the user message
// before it), clears the streaming flag, and records failure if any.
func (o *Orchestrator) rollback(mode session.Mode, failure *session.Failure, state session.AppState) {
	o.store.Update(mode, func(r session.Record) session.Record {
		if n := len(r.History); n > 0 && r.History[n-1].Role == chat.RoleModel {
			r.History = r.History[:n-1:n] // re-slice; prior entries untouched
		}
		r.IsStreaming = false
		r.Failure = failure
		r.State = state
		r.Progress = session.Progress{}
		return r
	})
}

// mergeIntoLast folds cumulative text and an optional thinking list
// into the last history entry. The first text part's content is
// replaced wholesale (the backend contract delivers cumulative text,
// never deltas); the thinking list is replaced only when non-nil.
//
// Returns ok=false when history is empty or its last entry is not a
// model message, in which case the caller must treat the merge as a
// no-op rather than resurrect stale state.
func mergeIntoLast(history []chat.Message, text string, thinking []chat.ThinkingSegment, final bool) ([]chat.Message, bool) {
	n := len(history)
	if n == 0 || history[n-1].Role != chat.RoleModel {
		return nil, false
	}

	merged := make([]chat.Message, n)
	copy(merged, history)
	last := merged[n-1]

	parts := make([]chat.Part, len(last.Parts))
	copy(parts, last.Parts)
	replaced := false
	for i := range parts {
		if parts[i].InlineData == nil {
			parts[i].Text = text
			replaced = true
			break
		}
	}
	if !replaced && (text != "" || final) {
		// Committed messages never end with empty parts: synthesize a
		// text part even when the accumulated text is empty.
		parts = append(parts, chat.Part{Text: text})
	}
	last.Parts = parts

	if thinking != nil {
		last.Thinking = thinking
	}

	merged[n-1] = last
	return merged, true
}

func buildParts(text string, files []session.Attachment) ([]chat.Part, error) {
	fileParts, err := filepart.ToParts(files)
	if err != nil {
		return nil, err
	}
	parts := make([]chat.Part, 0, len(fileParts)+1)
	if text != "" {
		parts = append(parts, chat.Part{Text: text})
	}
	parts = append(parts, fileParts...)
	return parts, nil
}

func systemInstruction(mode session.Mode) string {
	switch mode {
	case session.ModeSummarizer:
		return prompts.SummarizerSystem
	case session.ModeRewriter:
		return prompts.RewriterSystem
	case session.ModeScaffolder:
		return prompts.ScaffolderSystem
	case session.ModeSplitter:
		return prompts.SplitterSystem
	case session.ModeAgentDesigner:
		return prompts.AgentDesignerSystem
	case session.ModeChat:
		return prompts.ChatSystem
	default:
		return ""
	}
}

func (o *Orchestrator) logEvent(event log.LogEvent) {
	if o.logger == nil {
		return
	}
	_ = o.logger.Append(event)
}
