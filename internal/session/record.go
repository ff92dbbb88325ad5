package session

import "github.com/atelier-dev/atelier/internal/chat"

// AppState tracks where a mode's current run is in its lifecycle.
type AppState string

const (
	StateIdle       AppState = "idle"
	StateProcessing AppState = "processing"
	StateCompleted  AppState = "completed"
	StateError      AppState = "error"
)

// Progress describes how far a run has advanced.
type Progress struct {
	Stage      string `json:"stage"`
	Percentage int    `json:"percentage"`
}

// FailureKind classifies a structured failure.
type FailureKind string

const (
	// FailureValidation covers preconditions rejected before any
	// backend call: missing credential, empty submission.
	FailureValidation FailureKind = "validation"
	// FailureTransport covers network or backend errors surfaced to
	// the user after a call was dispatched.
	FailureTransport FailureKind = "transport"
	// FailureLayout covers degraded dependency-graph layouts. Non-fatal.
	FailureLayout FailureKind = "layout"
)

// Failure is a user-facing structured error recorded in a session.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Attachment is a file the user staged for the next chat submission.
type Attachment struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// Record is the isolated state bag owned by one mode. Records are plain
// values: the store hands out copies and accepts replacements, never
// shared pointers, so one mode's update cannot leak into another's.
type Record struct {
	// Form fields shared by the one-shot modes.
	Input        string `json:"input,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Output       string `json:"output,omitempty"`

	State    AppState `json:"state"`
	Progress Progress `json:"progress"`
	Failure  *Failure `json:"failure,omitempty"`

	// Chat-mode fields.
	History      []chat.Message `json:"history,omitempty"`
	PendingInput string         `json:"pendingInput,omitempty"`
	PendingFiles []Attachment   `json:"pendingFiles,omitempty"`
	IsStreaming  bool           `json:"isStreaming,omitempty"`
}

// DefaultRecord returns the state every mode starts (and resets) to.
func DefaultRecord() Record {
	return Record{State: StateIdle}
}
