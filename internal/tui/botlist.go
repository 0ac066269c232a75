package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/tui/theme"
)

// openChatMsg asks the app to start a live-chat session with a bot.
type openChatMsg struct {
	bot botapi.Bot
}

// deleteRequestedMsg marks a bot as pending deletion; the app shows the
// confirmation modal. No request is sent yet.
type deleteRequestedMsg struct {
	bot botapi.Bot
}

// connectRequestMsg asks the app to link the bot's stored WhatsApp number.
type connectRequestMsg struct {
	bot botapi.Bot
}

// BotListPanel renders the persisted bots with per-bot actions.
type BotListPanel struct {
	bots     []botapi.Bot
	selected int
	loading  bool
	fetchErr string
	focused  bool
	width    int
	height   int
}

// NewBotListPanel creates the panel in its loading state.
func NewBotListPanel() *BotListPanel {
	return &BotListPanel{loading: true, focused: true}
}

// Update handles messages for the bot list.
func (p *BotListPanel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case BotsLoadedMsg:
		p.loading = false
		p.fetchErr = ""
		p.bots = msg.Bots
		if p.selected >= len(p.bots) {
			p.selected = len(p.bots) - 1
		}
		if p.selected < 0 {
			p.selected = 0
		}
		return nil

	case BotsErrorMsg:
		p.loading = false
		p.fetchErr = botapi.UserMessage(msg.Err)
		return nil

	case tea.KeyPressMsg:
		if !p.focused || p.loading {
			return nil
		}
		switch msg.String() {
		case "up", "k":
			if p.selected > 0 {
				p.selected--
			}
		case "down", "j":
			if p.selected < len(p.bots)-1 {
				p.selected++
			}
		case "enter", "c":
			if bot, ok := p.Selected(); ok {
				return func() tea.Msg { return openChatMsg{bot: bot} }
			}
		case "e":
			if bot, ok := p.Selected(); ok {
				return func() tea.Msg { return EditRequestMsg{Bot: bot} }
			}
		case "d":
			if bot, ok := p.Selected(); ok {
				return func() tea.Msg { return deleteRequestedMsg{bot: bot} }
			}
		case "w":
			if bot, ok := p.Selected(); ok {
				return func() tea.Msg { return connectRequestMsg{bot: bot} }
			}
		}
	}
	return nil
}

// Selected returns the currently selected bot.
func (p *BotListPanel) Selected() (botapi.Bot, bool) {
	if len(p.bots) == 0 || p.selected >= len(p.bots) {
		return botapi.Bot{}, false
	}
	return p.bots[p.selected], true
}

// SetFocused toggles keyboard focus for the panel.
func (p *BotListPanel) SetFocused(focused bool) {
	p.focused = focused
}

// SetSize updates the panel dimensions.
func (p *BotListPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the bot list.
func (p *BotListPanel) View() string {
	t := theme.Current()

	title := t.S().SectionTitle.Render("Mis chatbots")

	var parts []string
	parts = append(parts, title, "")

	switch {
	case p.loading:
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)).
			Render("Cargando chatbots..."))
	case p.fetchErr != "":
		parts = append(parts, t.S().ErrorText.Render("✗ "+p.fetchErr))
	case len(p.bots) == 0:
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)).
			Render("Aún no tienes chatbots. Crea uno con 'botstudio wizard'."))
	default:
		selectedStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.BgBase)).
			Background(lipgloss.Color(t.Primary)).
			Bold(true).
			Padding(0, 1)
		normalStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgBase)).
			Padding(0, 1)
		detailStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgMuted)).
			PaddingLeft(3)

		for i, bot := range p.bots {
			line := fmt.Sprintf("%s (%s)", bot.Name, bot.Tone)
			if i == p.selected && p.focused {
				parts = append(parts, selectedStyle.Render("▸ "+line))
			} else {
				parts = append(parts, normalStyle.Render("  "+line))
			}
			if i == p.selected {
				detail := bot.Purpose
				if bot.WhatsAppNumber != "" {
					detail += " · " + bot.WhatsAppNumber
				}
				parts = append(parts, detailStyle.Render(truncate(detail, p.width-6)))
			}
		}
	}

	parts = append(parts, "",
		renderHintBar("enter", "chatear", "e", "editar", "w", "whatsapp", "d", "borrar"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
