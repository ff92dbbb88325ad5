package backend

import (
	"context"

	"github.com/atelier-dev/atelier/internal/chat"
)

// Scripted is a Conversationalist for tests. It replays a fixed script
// of incremental updates followed by a final response or error, and
// records the request it was handed.
type Scripted struct {
	Updates []Update
	Final   Response
	Err     error

	// CancelAfter, when > 0, cancels via the provided cancel func after
	// that many updates have been emitted, simulating a stop action
	// arriving mid-stream.
	CancelAfter int
	Cancel      context.CancelFunc

	LastRequest *Request
	Calls       int
}

// SendConversation replays the script.
func (s *Scripted) SendConversation(ctx context.Context, req Request) (*Response, error) {
	s.Calls++
	reqCopy := req
	s.LastRequest = &reqCopy

	for i, update := range s.Updates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if req.OnUpdate != nil {
			req.OnUpdate(update)
		}
		if s.CancelAfter > 0 && i+1 == s.CancelAfter && s.Cancel != nil {
			s.Cancel()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	final := s.Final
	final.Thinking = cloneThinking(final.Thinking)
	return &final, nil
}

var _ Conversationalist = (*Scripted)(nil)

// EchoText is a convenience for building a scripted final response.
func EchoText(text string) Response {
	return Response{Text: text, Thinking: []chat.ThinkingSegment{}}
}
