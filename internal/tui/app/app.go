// Package app wires the workspace views into a single Bubble Tea program.
package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atelier-dev/atelier/internal/log"
	"github.com/atelier-dev/atelier/internal/session"
	"github.com/atelier-dev/atelier/internal/tui"
	"github.com/atelier-dev/atelier/internal/tui/commands"
	"github.com/atelier-dev/atelier/internal/tui/views"
)

// App is the root model. It routes messages to whichever view is
// active and owns the global key handling (quit, snapshot).
type App struct {
	ws     *tui.Workspace
	home   views.HomeModel
	chat   views.ChatModel
	form   views.FormModel
	notice string
}

// New creates the root model over a prepared workspace.
func New(ws *tui.Workspace) App {
	return App{
		ws:   ws,
		home: views.NewHomeModel(ws, ws.Width, ws.Height),
	}
}

// Init starts the program.
func (a App) Init() tea.Cmd {
	if a.ws.Logger != nil {
		_ = a.ws.Logger.Append(log.LogEvent{Event: log.EventWorkspaceStarted})
	}
	return nil
}

// Update routes messages to the active view.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.ws.Width = msg.Width
		a.ws.Height = msg.Height
		// Every view resizes, not just the active one, so stale
		// dimensions never show up after switching.
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.home, cmd = a.home.Update(msg)
		cmds = append(cmds, cmd)
		if a.ws.State == tui.StateChat {
			a.chat, cmd = a.chat.Update(msg)
			cmds = append(cmds, cmd)
		}
		if a.ws.State == tui.StateForm {
			a.form, cmd = a.form.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyCtrlC:
			if a.ws.CtrlCPending {
				return a, tea.Quit
			}
			a.ws.CtrlCPending = true
			a.notice = "Press Ctrl+C again to quit"
			return a, commands.ResetCtrlC()

		case tui.KeyCtrlS:
			if a.ws.Snapshots == nil {
				a.notice = "Snapshots unavailable"
				return a, nil
			}
			return a, commands.SaveSnapshot(a.ws.Store, a.ws.Snapshots)

		case tui.KeyCtrlO:
			// Restore only from the picker: overwriting a mode's state
			// while its view is open would fight the open editors.
			if a.ws.State != tui.StateHome || a.ws.Snapshots == nil {
				return a, nil
			}
			return a, commands.RestoreSnapshot(a.ws.Store, a.ws.Snapshots)
		}
		// Any other key clears the quit confirmation.
		a.ws.CtrlCPending = false
		a.notice = ""

	case tui.CtrlCResetMsg:
		a.ws.CtrlCPending = false
		if a.notice == "Press Ctrl+C again to quit" {
			a.notice = ""
		}
		return a, nil

	case tui.OpenModeMsg:
		a.ws.ActiveMode = msg.Mode
		if msg.Mode == session.ModeChat {
			a.ws.State = tui.StateChat
			a.chat = views.NewChatModel(a.ws, a.ws.Width, a.ws.Height)
			return a, a.chat.Init()
		}
		a.ws.State = tui.StateForm
		a.form = views.NewFormModel(a.ws, msg.Mode, a.ws.Width, a.ws.Height)
		return a, a.form.Init()

	case tui.BackToHomeMsg:
		a.ws.State = tui.StateHome
		return a, nil

	case tui.SnapshotSavedMsg:
		if msg.Err != nil {
			a.notice = "Snapshot failed: " + msg.Err.Error()
			return a, nil
		}
		a.notice = fmt.Sprintf("Snapshot saved (%s)", shortID(msg.ID))
		if a.ws.Logger != nil {
			_ = a.ws.Logger.Append(log.LogEvent{Event: log.EventSnapshotSaved, SnapshotID: msg.ID})
		}
		return a, nil

	case tui.SnapshotRestoredMsg:
		if msg.Err != nil {
			a.notice = "Restore failed: " + msg.Err.Error()
			return a, nil
		}
		a.notice = "Snapshot restored"
		if a.ws.Logger != nil {
			_ = a.ws.Logger.Append(log.LogEvent{Event: log.EventSnapshotRestored})
		}
		return a, nil

	case tui.ErrorMsg:
		a.notice = msg.Err.Error()
		return a, nil
	}

	return a.routeToActive(msg)
}

// routeToActive forwards a message to whichever view owns the screen.
// Finished-submission messages always reach their view even when the
// user has already navigated elsewhere, so cancel handles get released.
func (a App) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.ws.State {
	case tui.StateChat:
		a.chat, cmd = a.chat.Update(msg)
	case tui.StateForm:
		a.form, cmd = a.form.Update(msg)
	default:
		switch msg := msg.(type) {
		case tui.SubmitFinishedMsg:
			a.ws.EndSubmission(msg.Mode)
		case tui.GenerationFinishedMsg:
			a.ws.EndSubmission(msg.Mode)
		default:
			a.home, cmd = a.home.Update(msg)
		}
	}
	return a, cmd
}

// View renders the active view plus the global notice line.
func (a App) View() string {
	var body string
	switch a.ws.State {
	case tui.StateChat:
		body = a.chat.View()
	case tui.StateForm:
		body = a.form.View()
	default:
		body = a.home.View()
	}

	if a.notice != "" {
		body += "\n" + tui.WarningStyle.Render(a.notice)
	}
	return body
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
