// Package views provides TUI view components for the workspace.
package views

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atelier-dev/atelier/internal/session"
	"github.com/atelier-dev/atelier/internal/tui"
)

// modeItem adapts a mode to the bubbles list item interface.
type modeItem struct {
	mode   session.Mode
	status string
}

func (i modeItem) Title() string       { return i.mode.Label() }
func (i modeItem) Description() string { return i.status }
func (i modeItem) FilterValue() string { return i.mode.Label() }

// HomeModel is the mode picker.
type HomeModel struct {
	ws   *tui.Workspace
	list list.Model
}

// NewHomeModel creates the mode picker over the workspace's modes.
func NewHomeModel(ws *tui.Workspace, width, height int) HomeModel {
	l := list.New(nil, list.NewDefaultDelegate(), width-4, height-6)
	l.Title = "Atelier"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	m := HomeModel{ws: ws, list: l}
	m.refresh()
	return m
}

// refresh rebuilds list items from current session state.
func (m *HomeModel) refresh() {
	modes := session.AllModes()
	items := make([]list.Item, 0, len(modes))
	for _, mode := range modes {
		items = append(items, modeItem{mode: mode, status: statusLine(m.ws.Store.Get(mode))})
	}
	m.list.SetItems(items)
}

func statusLine(rec session.Record) string {
	switch rec.State {
	case session.StateProcessing:
		return tui.StatusRunning + " " + rec.Progress.Stage
	case session.StateCompleted:
		return tui.StatusDone + " completed"
	case session.StateError:
		msg := "error"
		if rec.Failure != nil {
			msg = rec.Failure.Message
		}
		return tui.StatusFailed + " " + msg
	default:
		return tui.StatusIdle + " idle"
	}
}

// Update handles messages for the mode picker.
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == tui.KeyEnter {
			if item, ok := m.list.SelectedItem().(modeItem); ok {
				return m, func() tea.Msg {
					return tui.OpenModeMsg{Mode: item.mode}
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the mode picker.
func (m HomeModel) View() string {
	m.refresh()
	footer := tui.DimStyle.Render("Enter: Open mode · Ctrl+S: Save snapshot · Ctrl+O: Restore latest · Ctrl+C twice: Quit")
	return m.list.View() + "\n" + footer
}
