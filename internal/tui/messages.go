package tui

import (
	"github.com/atelier-dev/atelier/internal/orchestrator"
	"github.com/atelier-dev/atelier/internal/session"
)

// ============================================================================
// Submission Messages
// ============================================================================

// SubmitFinishedMsg signals that a chat submission reached a terminal state.
type SubmitFinishedMsg struct {
	Mode    session.Mode
	Outcome orchestrator.Outcome
}

// GenerationFinishedMsg signals that a one-shot run reached a terminal state.
type GenerationFinishedMsg struct {
	Mode    session.Mode
	Outcome orchestrator.Outcome
}

// StreamTickMsg drives re-renders while a response is streaming in.
type StreamTickMsg struct{}

// ============================================================================
// Navigation Messages
// ============================================================================

// OpenModeMsg switches the workspace to the given mode's view.
type OpenModeMsg struct {
	Mode session.Mode
}

// BackToHomeMsg returns to the mode picker.
type BackToHomeMsg struct{}

// ============================================================================
// Snapshot Messages
// ============================================================================

// SnapshotSavedMsg signals that the session state was persisted.
type SnapshotSavedMsg struct {
	ID  string
	Err error
}

// SnapshotRestoredMsg signals that session state was loaded from disk.
type SnapshotRestoredMsg struct {
	Err error
}

// ============================================================================
// Utility Messages
// ============================================================================

// CtrlCResetMsg clears the quit-confirmation state after a timeout.
type CtrlCResetMsg struct{}

// ErrorMsg is a generic error message for unrecoverable errors.
type ErrorMsg struct {
	Err error
}
