package orchestrator

import (
	"context"
	"strings"

	"github.com/atelier-dev/atelier/internal/backend"
	"github.com/atelier-dev/atelier/internal/chat"
	"github.com/atelier-dev/atelier/internal/log"
	"github.com/atelier-dev/atelier/internal/session"
)

// RunGeneration executes one non-conversational exchange for a form
// mode (summarizer, rewriter, scaffolder, splitter, agent designer):
// the mode's Input plus optional Instructions go out as a single user
// message and the final text lands in the record's Output field.
//
// The state machine mirrors Submit minus history: idle → processing
// (with staged progress) → completed | error, or back to idle on
// cancellation with Output untouched.
func (o *Orchestrator) RunGeneration(ctx context.Context, mode session.Mode) Outcome {
	rec := o.store.Get(mode)
	if rec.State == session.StateProcessing {
		return OutcomeNoOp
	}
	input := strings.TrimSpace(rec.Input)
	if input == "" {
		return OutcomeNoOp
	}

	sel, key, failure := o.resolve(mode)
	if failure != nil {
		o.reject(mode, *failure)
		return OutcomeRejected
	}

	prompt := input
	if instructions := strings.TrimSpace(rec.Instructions); instructions != "" {
		prompt = instructions + "\n\n" + input
	}
	userMsg := chat.TextMessage(chat.RoleUser, prompt)

	o.store.Update(mode, func(r session.Record) session.Record {
		r.Failure = nil
		r.State = session.StateProcessing
		r.Progress = session.Progress{Stage: "generating", Percentage: 10}
		return r
	})
	o.logEvent(log.LogEvent{
		Event:    log.EventRunStarted,
		Mode:     mode.String(),
		Provider: sel.Provider.String(),
		Model:    sel.Model,
	})

	req := backend.Request{
		NewMessage:        userMsg,
		SystemInstruction: systemInstruction(mode),
		OnUpdate: func(u backend.Update) {
			o.store.Update(mode, func(r session.Record) session.Record {
				if r.State != session.StateProcessing {
					return r
				}
				r.Output = u.Text
				r.Progress = session.Progress{Stage: "streaming", Percentage: 50}
				return r
			})
		},
	}

	client := o.clients(sel, key)
	resp, err := client.SendConversation(ctx, req)

	switch {
	case err == nil:
		o.store.Update(mode, func(r session.Record) session.Record {
			r.Output = resp.Text
			r.State = session.StateCompleted
			r.Progress = session.Progress{Stage: "done", Percentage: 100}
			return r
		})
		o.logEvent(log.LogEvent{Event: log.EventRunCompleted, Mode: mode.String()})
		return OutcomeCommitted

	case backend.IsAbort(err):
		o.store.Update(mode, func(r session.Record) session.Record {
			r.State = session.StateIdle
			r.Progress = session.Progress{}
			return r
		})
		o.logEvent(log.LogEvent{Event: log.EventSubmitAborted, Mode: mode.String()})
		return OutcomeAborted

	default:
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = unknownErrorMessage
		}
		o.store.Update(mode, func(r session.Record) session.Record {
			failure := session.Failure{
				Kind:    session.FailureTransport,
				Message: "Generation failed: " + msg,
			}
			r.Failure = &failure
			r.State = session.StateError
			r.Progress = session.Progress{}
			return r
		})
		o.logEvent(log.LogEvent{Event: log.EventRunFailed, Mode: mode.String(), Error: msg})
		return OutcomeFailed
	}
}
