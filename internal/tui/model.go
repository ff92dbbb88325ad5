package tui

import (
	"context"
	"sync"

	"github.com/atelier-dev/atelier/internal/config"
	"github.com/atelier-dev/atelier/internal/log"
	"github.com/atelier-dev/atelier/internal/orchestrator"
	"github.com/atelier-dev/atelier/internal/session"
	"github.com/atelier-dev/atelier/internal/snapshot"
)

// ViewState represents the current screen of the TUI.
type ViewState int

const (
	StateHome ViewState = iota
	StateChat
	StateForm
)

// Workspace holds the shared application state every view reads from.
type Workspace struct {
	Cfg          *config.Config
	Store        *session.Store
	Orchestrator *orchestrator.Orchestrator
	Snapshots    *snapshot.Store // nil when the database could not open
	Logger       *log.Logger     // nil to disable event logging

	State      ViewState
	ActiveMode session.Mode

	// Terminal dimensions.
	Width  int
	Height int

	// Ctrl+C confirmation state.
	CtrlCPending bool

	mu      sync.Mutex
	cancels map[session.Mode]context.CancelFunc
}

// NewWorkspace creates the shared workspace state.
func NewWorkspace(cfg *config.Config, store *session.Store, orch *orchestrator.Orchestrator, snaps *snapshot.Store, logger *log.Logger) *Workspace {
	return &Workspace{
		Cfg:          cfg,
		Store:        store,
		Orchestrator: orch,
		Snapshots:    snaps,
		Logger:       logger,
		State:        StateHome,
		ActiveMode:   session.ModeChat,
		Width:        80,
		Height:       24,
		cancels:      make(map[session.Mode]context.CancelFunc),
	}
}

// BeginSubmission registers a cancellable context for one in-flight
// submission. The returned context is what the orchestrator call runs
// under; StopSubmission cancels it.
func (w *Workspace) BeginSubmission(mode session.Mode) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	defer w.mu.Unlock()
	if prev, ok := w.cancels[mode]; ok {
		prev()
	}
	w.cancels[mode] = cancel
	return ctx
}

// StopSubmission cancels the mode's in-flight submission, if any.
func (w *Workspace) StopSubmission(mode session.Mode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cancel, ok := w.cancels[mode]; ok {
		cancel()
		delete(w.cancels, mode)
	}
}

// EndSubmission releases the mode's cancel handle after a terminal state.
func (w *Workspace) EndSubmission(mode session.Mode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.cancels, mode)
}
