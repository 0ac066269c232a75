package tui

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/tui/theme"
)

// chatUserID identifies the dashboard operator to the backend so history is
// stable across sessions.
const chatUserID = "studio_user"

// chatLine is one transcript entry. Link fields come from structured server
// errors and are rendered as markdown links, never raw markup.
type chatLine struct {
	role      string // "user" or "bot"
	text      string
	linkURL   string
	linkLabel string
}

// chatSendMsg asks the app to dispatch a live-chat send.
type chatSendMsg struct {
	text string
}

// LiveChat is the live conversation pane for one persisted bot.
type LiveChat struct {
	botID   int
	botName string
	gen     int

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	lines   []chatLine
	busy    bool
	loading bool
	focused bool
	width   int
	height  int
}

// NewLiveChat opens a session pane for a bot. History is loaded by the app;
// gen ties responses to this session.
func NewLiveChat(bot botapi.Bot, gen int) *LiveChat {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(14),
	)
	vp.MouseWheelEnabled = true

	input := textinput.New()
	input.Placeholder = "Escribe un mensaje..."
	input.CharLimit = 1000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Current().Primary))

	return &LiveChat{
		botID:    bot.ID,
		botName:  bot.Name,
		gen:      gen,
		viewport: vp,
		input:    input,
		spinner:  sp,
		loading:  true,
		focused:  true,
	}
}

// BotID returns the bot behind this session.
func (c *LiveChat) BotID() int { return c.botID }

// Gen returns the session generation.
func (c *LiveChat) Gen() int { return c.gen }

// Update handles messages for the live chat pane.
func (c *LiveChat) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case HistoryLoadedMsg:
		if msg.Gen != c.gen {
			return nil
		}
		c.loading = false
		if msg.Err != nil {
			c.lines = append(c.lines, chatLine{role: "bot", text: botapi.UserMessage(msg.Err)})
			c.refresh()
			return nil
		}
		for _, h := range msg.History {
			role := "bot"
			if h.Role == "user" {
				role = "user"
			}
			c.lines = append(c.lines, chatLine{role: role, text: h.Message})
		}
		if len(msg.History) == 0 {
			// First contact: the bot greets.
			c.lines = append(c.lines, chatLine{
				role: "bot",
				text: fmt.Sprintf("¡Hola! Soy %s. ¿En qué puedo ayudarte?", c.botName),
			})
		}
		c.refresh()
		return nil

	case ChatReplyMsg:
		if msg.Gen != c.gen {
			return nil
		}
		c.busy = false
		switch {
		case msg.Err == nil:
			c.lines = append(c.lines, chatLine{role: "bot", text: msg.Reply})
		case botapi.IsQuotaExceeded(msg.Err):
			c.lines = append(c.lines, chatLine{
				role:      "bot",
				text:      botapi.UserMessage(msg.Err),
				linkURL:   "https://quantumweb.mx/planes",
				linkLabel: "Mejorar mi plan",
			})
		default:
			var apiErr *botapi.APIError
			if errors.As(msg.Err, &apiErr) {
				c.lines = append(c.lines, chatLine{
					role:      "bot",
					text:      apiErr.Message,
					linkURL:   apiErr.LinkURL,
					linkLabel: apiErr.LinkLabel,
				})
			} else {
				c.lines = append(c.lines, chatLine{role: "bot", text: botapi.UserMessage(msg.Err)})
			}
		}
		c.refresh()
		return nil

	case spinner.TickMsg:
		if c.busy || c.loading {
			var cmd tea.Cmd
			c.spinner, cmd = c.spinner.Update(msg)
			return cmd
		}
		return nil

	case tea.KeyPressMsg:
		if !c.focused {
			return nil
		}
		if msg.String() == "enter" {
			text := strings.TrimSpace(c.input.Value())
			if text == "" || c.busy || c.loading {
				return nil
			}
			c.input.SetValue("")
			c.busy = true
			c.lines = append(c.lines, chatLine{role: "user", text: text})
			c.refresh()
			return tea.Batch(
				c.spinner.Tick,
				func() tea.Msg { return chatSendMsg{text: text} },
			)
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	cmds = append(cmds, cmd)
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// refresh rebuilds the viewport content from the transcript.
func (c *LiveChat) refresh() {
	t := theme.Current()
	userStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info)).Bold(true)
	botStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Secondary)).Bold(true)

	contentWidth := c.viewport.Width() - 2
	if contentWidth < 20 {
		contentWidth = 20
	}

	var b strings.Builder
	for i, line := range c.lines {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if line.role == "user" {
			b.WriteString(userStyle.Render("Tú"))
			b.WriteString("\n")
			b.WriteString(wrapText(line.text, contentWidth))
		} else {
			b.WriteString(botStyle.Render(c.botName))
			b.WriteString("\n")
			b.WriteString(renderServerMessage(line.text, line.linkURL, line.linkLabel, contentWidth))
		}
	}
	c.viewport.SetContent(b.String())
	c.viewport.GotoBottom()
}

// SetFocused toggles keyboard focus for the pane.
func (c *LiveChat) SetFocused(focused bool) {
	c.focused = focused
	if focused {
		c.input.Focus()
	} else {
		c.input.Blur()
	}
}

// SetSize updates the pane dimensions.
func (c *LiveChat) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.viewport.SetWidth(width)
	vpHeight := height - 6
	if vpHeight < 5 {
		vpHeight = 5
	}
	c.viewport.SetHeight(vpHeight)
	c.input.SetWidth(width - 2)
	c.refresh()
}

// View renders the live chat pane.
func (c *LiveChat) View() string {
	t := theme.Current()

	title := t.S().SectionTitle.Render("Chat con " + c.botName)

	parts := []string{title, ""}
	if c.loading {
		parts = append(parts, c.spinner.View()+" Cargando conversación...")
	} else {
		parts = append(parts, c.viewport.View())
	}
	if c.busy {
		parts = append(parts, c.spinner.View()+" escribiendo...")
	}
	parts = append(parts, "", c.input.View(), "",
		renderHintBar("enter", "enviar", "esc", "cerrar chat"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
