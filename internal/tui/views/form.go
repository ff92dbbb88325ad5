package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atelier-dev/atelier/internal/log"
	"github.com/atelier-dev/atelier/internal/orchestrator"
	"github.com/atelier-dev/atelier/internal/plan"
	"github.com/atelier-dev/atelier/internal/rewrite"
	"github.com/atelier-dev/atelier/internal/session"
	"github.com/atelier-dev/atelier/internal/tui"
	"github.com/atelier-dev/atelier/internal/tui/commands"
)

const (
	focusInput = iota
	focusInstructions
)

// FormModel is the view model for the one-shot modes (summarizer,
// rewriter, scaffolder, splitter, agent designer). It collects an input
// document plus optional instructions and shows the generated output.
type FormModel struct {
	ws           *tui.Workspace
	mode         session.Mode
	input        textarea.Model
	instructions textarea.Model
	output       viewport.Model
	spinner      spinner.Model
	focus        int
	width        int
	height       int
}

// NewFormModel creates a form view for the given mode, prefilled from
// the mode's session record.
func NewFormModel(ws *tui.Workspace, mode session.Mode, width, height int) FormModel {
	rec := ws.Store.Get(mode)

	input := newFormArea("Paste or type the source text...", width)
	input.SetHeight(6)
	input.SetValue(rec.Input)
	input.Focus()

	instructions := newFormArea("Optional instructions (tone, format, constraints)...", width)
	instructions.SetHeight(2)
	instructions.SetValue(rec.Instructions)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))

	out := viewport.New(outputWidth(width), outputHeight(height))

	m := FormModel{
		ws:           ws,
		mode:         mode,
		input:        input,
		instructions: instructions,
		output:       out,
		spinner:      sp,
		focus:        focusInput,
		width:        width,
		height:       height,
	}
	m.syncOutput()
	return m
}

func newFormArea(placeholder string, width int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = 0
	ta.SetWidth(width - 8)
	ta.ShowLineNumbers = false
	return ta
}

func outputWidth(width int) int {
	w := width - 8
	if w < 20 {
		w = 20
	}
	return w
}

func outputHeight(height int) int {
	h := height - 22
	if h < 4 {
		h = 4
	}
	return h
}

// Init returns the initial command for the form view.
func (m FormModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages for the form view.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	rec := m.ws.Store.Get(m.mode)
	running := rec.State == session.StateProcessing

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyTab:
			if running {
				return m, nil
			}
			m = m.toggleFocus()
			return m, nil

		case tui.KeyCtrlG:
			if running || strings.TrimSpace(m.input.Value()) == "" {
				return m, nil
			}
			m.ws.Store.Update(m.mode, func(r session.Record) session.Record {
				r.Input = m.input.Value()
				r.Instructions = m.instructions.Value()
				return r
			})
			ctx := m.ws.BeginSubmission(m.mode)
			return m, tea.Batch(
				commands.RunGeneration(ctx, m.ws.Orchestrator, m.mode),
				commands.StreamTick(),
			)

		case tui.KeyEsc:
			if running {
				m.ws.StopSubmission(m.mode)
				return m, nil
			}
			// Keep drafts around for the next visit.
			m.ws.Store.Update(m.mode, func(r session.Record) session.Record {
				r.Input = m.input.Value()
				r.Instructions = m.instructions.Value()
				return r
			})
			return m, func() tea.Msg { return tui.BackToHomeMsg{} }

		case tui.KeyCtrlR:
			if !running {
				m.ws.Store.Reset(m.mode)
				m.input.Reset()
				m.instructions.Reset()
				m.syncOutput()
			}
			return m, nil
		}

	case tui.StreamTickMsg:
		if running {
			m.syncOutput()
			cmds = append(cmds, commands.StreamTick())
		}

	case tui.GenerationFinishedMsg:
		if msg.Mode == m.mode {
			m.ws.EndSubmission(m.mode)
			if msg.Outcome == orchestrator.OutcomeCommitted {
				m.logLayout()
			}
			m.syncOutput()
		}
		return m, nil

	case spinner.TickMsg:
		if running {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 8)
		m.instructions.SetWidth(msg.Width - 8)
		m.output.Width = outputWidth(msg.Width)
		m.output.Height = outputHeight(msg.Height)
		m.syncOutput()
		return m, nil
	}

	if !running {
		switch m.focus {
		case focusInput:
			m.input, cmd = m.input.Update(msg)
		case focusInstructions:
			m.instructions, cmd = m.instructions.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	m.output, cmd = m.output.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m FormModel) toggleFocus() FormModel {
	if m.focus == focusInput {
		m.focus = focusInstructions
		m.input.Blur()
		m.instructions.Focus()
	} else {
		m.focus = focusInput
		m.instructions.Blur()
		m.input.Focus()
	}
	return m
}

// logLayout records a layout_degenerate event when the splitter's plan
// could not be leveled cleanly.
func (m FormModel) logLayout() {
	if m.mode != session.ModeSplitter || m.ws.Logger == nil {
		return
	}
	rec := m.ws.Store.Get(m.mode)
	g, err := plan.ParseGraph(rec.Output)
	if err != nil || len(g.Nodes) == 0 {
		return
	}
	levels, degenerate := plan.ComputeLevels(g.Nodes)
	if !degenerate {
		return
	}
	_ = m.ws.Logger.Append(log.LogEvent{
		Event:  log.EventLayoutDegenerate,
		Mode:   m.mode.String(),
		Nodes:  len(g.Nodes),
		Levels: len(levels),
	})
}

func (m *FormModel) syncOutput() {
	rec := m.ws.Store.Get(m.mode)
	m.output.SetContent(m.renderOutput(rec))
	m.output.GotoTop()
}

// renderOutput decorates the raw model output per mode: the splitter
// gets a dependency diagram, the rewriter an inline diff.
func (m FormModel) renderOutput(rec session.Record) string {
	if rec.State == session.StateError && rec.Failure != nil {
		return tui.ErrorStyle.Render(rec.Failure.Message)
	}
	if strings.TrimSpace(rec.Output) == "" {
		return tui.DimStyle.Render("Output will appear here.")
	}

	switch m.mode {
	case session.ModeSplitter:
		g, err := plan.ParseGraph(rec.Output)
		if err != nil || len(g.Nodes) == 0 {
			return rec.Output
		}
		diagram, _ := plan.RenderDiagram(g)
		return diagram + "\n\n" + rec.Output

	case session.ModeRewriter:
		if rec.State != session.StateCompleted {
			return rec.Output
		}
		diffs := rewrite.Compare(rec.Input, rec.Output)
		stats := rewrite.Stats(diffs)
		if !stats.Changed() {
			return rec.Output
		}
		summary := tui.DimStyle.Render(fmt.Sprintf("+%d / -%d characters", stats.Inserted, stats.Deleted))
		return summary + "\n\n" + rewrite.RenderInline(diffs)
	}
	return rec.Output
}

// View renders the form view.
func (m FormModel) View() string {
	rec := m.ws.Store.Get(m.mode)
	running := rec.State == session.StateProcessing

	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render(m.mode.Label()))
	b.WriteString("\n\n")

	b.WriteString(fieldLabel("Input", m.focus == focusInput))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(fieldLabel("Instructions", m.focus == focusInstructions))
	b.WriteString("\n")
	b.WriteString(m.instructions.View())
	b.WriteString("\n\n")

	switch {
	case running:
		b.WriteString(fmt.Sprintf("%s %s (%d%%)", m.spinner.View(), rec.Progress.Stage, rec.Progress.Percentage))
	case rec.State == session.StateCompleted:
		b.WriteString(tui.SuccessStyle.Render("Done"))
	case rec.State == session.StateError:
		b.WriteString(tui.ErrorStyle.Render("Failed"))
	default:
		b.WriteString(tui.DimStyle.Render("Ready"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.output.View())
	b.WriteString("\n\n")

	footer := "Ctrl+G: Run · Tab: Switch field · Ctrl+R: Clear · Esc: Back"
	if running {
		footer = "Esc: Stop"
	}
	b.WriteString(tui.DimStyle.Render(footer))

	return tui.BoxStyle.Width(m.width - 4).Render(b.String())
}

func fieldLabel(name string, focused bool) string {
	if focused {
		return tui.TitleStyle.Render("▸ " + name)
	}
	return tui.DimStyle.Render("  " + name)
}
