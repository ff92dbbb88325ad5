// Package chat defines the message types exchanged with AI backends.
package chat

import "strings"

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part is one unit of message content. Exactly one field is set:
// Text for plain text, InlineData for base64-encoded binary content.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries binary content as a base64 string with its MIME type.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// ThinkingSegment is a labeled chunk of a backend's reasoning trace,
// distinct from its final answer text.
type ThinkingSegment struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
}

// HasContent reports whether the segment carries renderable text.
// Whitespace-only segments do not count.
func (t ThinkingSegment) HasContent() bool {
	return strings.TrimSpace(t.Text) != ""
}

// Message is a single entry in a conversation history.
type Message struct {
	Role     Role              `json:"role"`
	Parts    []Part            `json:"parts"`
	Thinking []ThinkingSegment `json:"thinking,omitempty"`
}

// TextMessage builds a message holding a single text part.
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

// FirstText returns the text of the first text part, or "" if none.
func (m Message) FirstText() string {
	for _, p := range m.Parts {
		if p.InlineData == nil {
			return p.Text
		}
	}
	return ""
}

// HasThinking reports whether the message carries at least one
// thinking segment with renderable content.
func (m Message) HasThinking() bool {
	for _, seg := range m.Thinking {
		if seg.HasContent() {
			return true
		}
	}
	return false
}
