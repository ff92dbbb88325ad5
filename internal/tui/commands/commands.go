package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atelier-dev/atelier/internal/orchestrator"
	"github.com/atelier-dev/atelier/internal/session"
	"github.com/atelier-dev/atelier/internal/snapshot"
	"github.com/atelier-dev/atelier/internal/tui"
)

// streamTickInterval paces viewport refreshes while a response streams in.
const streamTickInterval = 80 * time.Millisecond

// SubmitChat runs a conversational submission in the background. The
// orchestrator mutates the session store as updates arrive; the view polls
// via StreamTick until the finished message lands.
func SubmitChat(ctx context.Context, orch *orchestrator.Orchestrator, mode session.Mode) tea.Cmd {
	return func() tea.Msg {
		outcome := orch.Submit(ctx, mode)
		return tui.SubmitFinishedMsg{Mode: mode, Outcome: outcome}
	}
}

// RunGeneration runs a one-shot form submission in the background.
func RunGeneration(ctx context.Context, orch *orchestrator.Orchestrator, mode session.Mode) tea.Cmd {
	return func() tea.Msg {
		outcome := orch.RunGeneration(ctx, mode)
		return tui.GenerationFinishedMsg{Mode: mode, Outcome: outcome}
	}
}

// StreamTick schedules the next streaming re-render.
func StreamTick() tea.Cmd {
	return tea.Tick(streamTickInterval, func(time.Time) tea.Msg {
		return tui.StreamTickMsg{}
	})
}

// SaveSnapshot persists the current session state.
func SaveSnapshot(store *session.Store, snaps *snapshot.Store) tea.Cmd {
	return func() tea.Msg {
		data, err := store.Snapshot()
		if err != nil {
			return tui.SnapshotSavedMsg{Err: err}
		}
		id, err := snaps.Save(data)
		return tui.SnapshotSavedMsg{ID: id, Err: err}
	}
}

// RestoreSnapshot loads the most recent snapshot into the session store.
func RestoreSnapshot(store *session.Store, snaps *snapshot.Store) tea.Cmd {
	return func() tea.Msg {
		blob, err := snaps.Latest()
		if err != nil {
			return tui.SnapshotRestoredMsg{Err: err}
		}
		return tui.SnapshotRestoredMsg{Err: store.Restore(blob)}
	}
}

// ResetCtrlC clears the quit confirmation after a grace period.
func ResetCtrlC() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return tui.CtrlCResetMsg{}
	})
}
