// Package backend abstracts the conversational AI services the
// workspace talks to. Adapters own their provider's wire format; the
// rest of the system sees only SendConversation.
package backend

import (
	"context"
	"errors"

	"github.com/atelier-dev/atelier/internal/chat"
)

// Update is an incremental snapshot of an in-flight response.
//
// Text is always the full cumulative text so far, never a delta.
// Adapters whose providers emit deltas must accumulate before invoking
// OnUpdate; callers fold updates in by wholesale replacement, so a
// delta slipping through here would corrupt displayed text.
// Thinking is nil when the update carries no new reasoning trace.
type Update struct {
	Text     string
	Thinking []chat.ThinkingSegment
}

// RetrievalConfig points a request at stored documents for grounding.
type RetrievalConfig struct {
	StoreIDs []string
	TopK     int
}

// GenerationConfig carries sampling parameters.
type GenerationConfig struct {
	Temperature float64
	MaxTokens   int
}

// Request is one conversational exchange. History is the conversation
// as it existed before this exchange; NewMessage is appended by the
// adapter in whatever shape its provider expects.
type Request struct {
	History           []chat.Message
	NewMessage        chat.Message
	SystemInstruction string
	Retrieval         *RetrievalConfig
	Generation        GenerationConfig

	// OnUpdate, if non-nil, is invoked zero or more times before
	// SendConversation returns, always with cumulative snapshots and
	// always before the final response.
	OnUpdate func(Update)
}

// Response is a completed exchange.
type Response struct {
	Text     string
	Thinking []chat.ThinkingSegment
}

// Conversationalist is the capability every backend adapter provides.
type Conversationalist interface {
	// SendConversation performs one exchange. A cancelled ctx must
	// surface as an error satisfying IsAbort.
	SendConversation(ctx context.Context, req Request) (*Response, error)
}

// IsAbort reports whether err is a user-initiated cancellation rather
// than a transport or backend failure.
func IsAbort(err error) bool {
	return errors.Is(err, context.Canceled)
}
