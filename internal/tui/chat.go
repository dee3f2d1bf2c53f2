// Package tui provides the interactive chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tokensage/tokensage/pkg/models"
)

// QueryHandler is the orchestrator surface the chat depends on.
type QueryHandler interface {
	HandleQuery(ctx context.Context, input string) *models.Result
	Reset()
}

// resultMsg carries a finished query result back into the update loop.
type resultMsg struct {
	result *models.Result
}

// chatMessage is one transcript entry.
type chatMessage struct {
	user     bool
	category models.Category
	isError  bool
	text     string
}

var (
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	categoryStyles = map[models.Category]lipgloss.Style{
		models.CategoryMarket:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		models.CategoryAnalysis:  lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
		models.CategorySwap:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		models.CategoryComposite: lipgloss.NewStyle().Foreground(lipgloss.Color("171")).Bold(true),
	}
)

// Chat is the bubbletea model for the chat interface.
type Chat struct {
	orch     QueryHandler
	input    textinput.Model
	viewport viewport.Model
	messages []chatMessage
	waiting  bool
	ready    bool
	width    int
	height   int
	quitting bool
}

// NewChat creates a Chat backed by the given orchestrator.
func NewChat(orch QueryHandler) *Chat {
	ti := textinput.New()
	ti.Placeholder = "Ask about a token, or paste an address..."
	ti.Focus()
	ti.CharLimit = 500

	return &Chat{
		orch:  orch,
		input: ti,
	}
}

// Init implements tea.Model.
func (c *Chat) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.input.Width = msg.Width - 6
		vpHeight := msg.Height - 4
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !c.ready {
			c.viewport = viewport.New(msg.Width, vpHeight)
			c.ready = true
		} else {
			c.viewport.Width = msg.Width
			c.viewport.Height = vpHeight
		}
		c.refreshTranscript()
		return c, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			c.quitting = true
			return c, tea.Quit

		case "ctrl+r":
			c.orch.Reset()
			c.messages = nil
			c.refreshTranscript()
			return c, nil

		case "enter":
			text := strings.TrimSpace(c.input.Value())
			if text == "" || c.waiting {
				return c, nil
			}
			c.input.Reset()
			c.messages = append(c.messages, chatMessage{user: true, text: text})
			c.waiting = true
			c.refreshTranscript()
			return c, c.queryCmd(text)
		}

	case resultMsg:
		c.waiting = false
		c.messages = append(c.messages, chatMessage{
			category: msg.result.Type,
			isError:  !msg.result.OK(),
			text:     msg.result.Response,
		})
		c.refreshTranscript()
		return c, nil
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// queryCmd dispatches a query off the update loop.
func (c *Chat) queryCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{result: c.orch.HandleQuery(context.Background(), text)}
	}
}

// refreshTranscript re-renders the viewport content and scrolls to the
// bottom.
func (c *Chat) refreshTranscript() {
	if !c.ready {
		return
	}
	c.viewport.SetContent(c.transcript())
	c.viewport.GotoBottom()
}

// transcript renders the full message history.
func (c *Chat) transcript() string {
	var sb strings.Builder
	for _, m := range c.messages {
		sb.WriteString(renderMessage(m, c.width))
		sb.WriteString("\n")
	}
	if c.waiting {
		sb.WriteString(statusStyle.Render("thinking..."))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderMessage formats one transcript entry with its role label.
func renderMessage(m chatMessage, width int) string {
	var label string
	switch {
	case m.user:
		label = userStyle.Render("you")
	case m.isError:
		label = errorStyle.Render(fmt.Sprintf("%s (error)", m.category))
	default:
		style, ok := categoryStyles[m.category]
		if !ok {
			style = statusStyle
		}
		label = style.Render(string(m.category))
	}

	body := m.text
	if width > 8 {
		body = lipgloss.NewStyle().Width(width - 2).Render(m.text)
	}
	return label + "\n" + body + "\n"
}

// View implements tea.Model.
func (c *Chat) View() string {
	if c.quitting {
		return ""
	}
	if !c.ready {
		return "loading..."
	}

	inputBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(c.width - 2).
		Render(c.input.View())

	return c.viewport.View() + "\n" + inputBox
}

// Run starts the chat interface and blocks until the user quits.
func Run(orch QueryHandler) error {
	p := tea.NewProgram(NewChat(orch), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
