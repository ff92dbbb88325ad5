package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atelier-dev/atelier/internal/chat"
	"github.com/atelier-dev/atelier/internal/session"
	"github.com/atelier-dev/atelier/internal/tui"
	"github.com/atelier-dev/atelier/internal/tui/commands"
)

// ChatModel is the view model for the conversational mode. It renders
// straight from the session store each frame, so streaming updates made
// by the orchestrator show up without any extra plumbing.
type ChatModel struct {
	ws       *tui.Workspace
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

// NewChatModel creates the chat view.
func NewChatModel(ws *tui.Workspace, width, height int) ChatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message... (Enter to send)"
	ta.CharLimit = 5000
	ta.SetWidth(width - 8)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	// Shift+Enter is unreliable across terminals; Ctrl+J inserts a newline.
	keyMap := ta.KeyMap
	keyMap.InsertNewline = key.NewBinding(
		key.WithKeys("ctrl+j"),
		key.WithHelp("ctrl+j", "new line"),
	)
	ta.KeyMap = keyMap

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))

	vpHeight := height - 14
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := width - 8
	if vpWidth < 20 {
		vpWidth = 20
	}
	vp := viewport.New(vpWidth, vpHeight)

	m := ChatModel{
		ws:       ws,
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		width:    width,
		height:   height,
	}
	m.syncViewport()
	return m
}

func (m *ChatModel) syncViewport() {
	rec := m.ws.Store.Get(session.ModeChat)
	m.viewport.SetContent(formatHistory(rec, m.ws.Cfg.UI.ShowThinking))
	m.viewport.GotoBottom()
}

// Init returns the initial command for the chat view.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages for the chat view.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	rec := m.ws.Store.Get(session.ModeChat)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyEnter:
			content := strings.TrimSpace(m.textarea.Value())
			if content == "" || rec.IsStreaming {
				return m, nil
			}
			m.ws.Store.Update(session.ModeChat, func(r session.Record) session.Record {
				r.PendingInput = content
				return r
			})
			m.textarea.Reset()
			ctx := m.ws.BeginSubmission(session.ModeChat)
			m.syncViewport()
			return m, tea.Batch(
				commands.SubmitChat(ctx, m.ws.Orchestrator, session.ModeChat),
				commands.StreamTick(),
			)

		case tui.KeyEsc:
			if rec.IsStreaming {
				// Stop the in-flight response instead of leaving.
				m.ws.StopSubmission(session.ModeChat)
				return m, nil
			}
			return m, func() tea.Msg { return tui.BackToHomeMsg{} }

		case tui.KeyCtrlR:
			if !rec.IsStreaming {
				m.ws.Store.Reset(session.ModeChat)
				m.syncViewport()
			}
			return m, nil
		}

	case tui.StreamTickMsg:
		if rec.IsStreaming {
			m.syncViewport()
			cmds = append(cmds, commands.StreamTick())
		}

	case tui.SubmitFinishedMsg:
		if msg.Mode == session.ModeChat {
			m.ws.EndSubmission(session.ModeChat)
			m.syncViewport()
		}
		return m, nil

	case spinner.TickMsg:
		if rec.IsStreaming {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := msg.Height - 14
		if vpHeight < 5 {
			vpHeight = 5
		}
		vpWidth := msg.Width - 8
		if vpWidth < 20 {
			vpWidth = 20
		}
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
		m.textarea.SetWidth(vpWidth)
		m.syncViewport()
		return m, nil
	}

	if !rec.IsStreaming {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the chat view.
func (m ChatModel) View() string {
	rec := m.ws.Store.Get(session.ModeChat)

	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render("Chat"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	switch {
	case rec.IsStreaming:
		b.WriteString(fmt.Sprintf("%s %s...", m.spinner.View(), rec.Progress.Stage))
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render(m.textarea.View()))
	case rec.Failure != nil:
		b.WriteString(tui.ErrorStyle.Render(rec.Failure.Message))
		b.WriteString("\n\n")
		b.WriteString(m.textarea.View())
	default:
		b.WriteString(m.textarea.View())
	}

	b.WriteString("\n\n")
	footer := "Enter: Send · Ctrl+J: New line · Ctrl+R: Clear · Esc: Back"
	if rec.IsStreaming {
		footer = "Esc: Stop response"
	}
	b.WriteString(tui.DimStyle.Render(footer))

	return tui.BoxStyle.Width(m.width - 4).Render(b.String())
}

// formatHistory formats the chat history for display in the viewport.
func formatHistory(rec session.Record, showThinking bool) string {
	if len(rec.History) == 0 {
		return tui.DimStyle.Render("No messages yet. Start the conversation!")
	}

	var b strings.Builder
	for i, msg := range rec.History {
		var prefix string
		var style lipgloss.Style

		switch msg.Role {
		case chat.RoleUser:
			prefix = "You: "
			style = tui.UserStyle
		case chat.RoleModel:
			prefix = "Model: "
			style = tui.ModelStyle
		default:
			prefix = string(msg.Role) + ": "
			style = tui.DimStyle
		}

		b.WriteString(style.Render(prefix))

		if showThinking && msg.HasThinking() {
			for _, seg := range msg.Thinking {
				if !seg.HasContent() {
					continue
				}
				label := seg.Label
				if label == "" {
					label = "thinking"
				}
				b.WriteString("\n")
				b.WriteString(tui.ThinkingStyle.Render(fmt.Sprintf("[%s] %s", label, seg.Text)))
			}
			b.WriteString("\n")
		}

		b.WriteString(renderParts(msg.Parts))

		if i < len(rec.History)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func renderParts(parts []chat.Part) string {
	var out []string
	for _, p := range parts {
		if p.InlineData != nil {
			out = append(out, tui.DimStyle.Render(fmt.Sprintf("[attachment: %s]", p.InlineData.MIMEType)))
			continue
		}
		out = append(out, p.Text)
	}
	return strings.Join(out, "\n")
}
