// Package tui is the chatbot dashboard: the persisted bot list, a live chat
// pane, and the quota line, over the backend client.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/config"
	"github.com/quantumweb/botstudio/internal/logger"
	"github.com/quantumweb/botstudio/internal/tui/botwizard"
	"github.com/quantumweb/botstudio/internal/tui/theme"
)

// Result is what the dashboard hands back to the command layer. EditBot, when
// non-nil, asks the caller to relaunch the wizard seeded with that bot.
type Result struct {
	EditBot *botapi.Bot
}

// App is the root model for the dashboard.
type App struct {
	cfg    *config.Config
	client *botapi.Client
	ctx    context.Context

	list  *BotListPanel
	chat  *LiveChat
	toast *Toast

	quota    *botapi.Quota
	quotaErr string

	// pendingDelete holds the bot awaiting confirmation. Nothing is sent
	// until the user confirms.
	pendingDelete *botapi.Bot
	confirmDelete *botwizard.ConfirmationModal

	// chatGen ties history loads and replies to the session that asked.
	chatGen int
	busy    bool

	editBot  *botapi.Bot
	loginErr error

	width  int
	height int
}

// Run starts the dashboard and blocks until it exits.
func Run(cfg *config.Config, client *botapi.Client) (*Result, error) {
	m := NewApp(cfg, client)

	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("dashboard failed: %w", err)
	}

	app, ok := finalModel.(*App)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if app.loginErr != nil {
		return nil, app.loginErr
	}
	return &Result{EditBot: app.editBot}, nil
}

// NewApp builds the dashboard model without starting a program.
func NewApp(cfg *config.Config, client *botapi.Client) *App {
	return &App{
		cfg:           cfg,
		client:        client,
		ctx:           context.Background(),
		list:          NewBotListPanel(),
		toast:         NewToast(),
		confirmDelete: botwizard.NewConfirmationModal("Eliminar chatbot", ""),
	}
}

func (m *App) Init() tea.Cmd {
	return tea.Batch(m.fetchBots(), m.fetchQuota())
}

func (m *App) fetchBots() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		bots, err := client.ListBots(ctx)
		if err != nil {
			return BotsErrorMsg{Err: err}
		}
		return BotsLoadedMsg{Bots: bots}
	}
}

func (m *App) fetchQuota() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		quota, err := client.Quota(ctx)
		return QuotaLoadedMsg{Quota: quota, Err: err}
	}
}

func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyPressMsg:
		if m.confirmDelete.IsVisible() {
			switch msg.String() {
			case "y", "Y":
				m.confirmDelete.Hide()
				if m.pendingDelete != nil {
					bot := *m.pendingDelete
					m.pendingDelete = nil
					return m, m.deleteBot(bot)
				}
				return m, nil
			case "n", "N", "esc":
				m.confirmDelete.Hide()
				m.pendingDelete = nil
				return m, nil
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			if m.chat == nil || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case "esc":
			if m.chat != nil {
				m.closeChat()
				return m, nil
			}
			return m, tea.Quit
		case "tab":
			if m.chat != nil {
				focused := !m.list.focused
				m.list.SetFocused(focused)
				m.chat.SetFocused(!focused)
				return m, nil
			}
		case "r":
			if m.chat == nil || m.list.focused {
				m.list.loading = true
				return m, tea.Batch(m.fetchBots(), m.fetchQuota())
			}
		}

	case BotsLoadedMsg, BotsErrorMsg:
		return m, m.list.Update(msg)

	case QuotaLoadedMsg:
		if msg.Err != nil {
			m.quotaErr = botapi.UserMessage(msg.Err)
			if errors.Is(msg.Err, botapi.ErrLoginRequired) {
				m.loginErr = msg.Err
				return m, tea.Quit
			}
			return m, nil
		}
		m.quota = msg.Quota
		m.quotaErr = ""
		return m, nil

	case openChatMsg:
		m.chatGen++
		m.chat = NewLiveChat(msg.bot, m.chatGen)
		m.list.SetFocused(false)
		m.layout()
		return m, tea.Batch(m.chat.spinner.Tick, m.loadHistory(msg.bot.ID, m.chatGen))

	case deleteRequestedMsg:
		bot := msg.bot
		m.pendingDelete = &bot
		m.confirmDelete.SetMessage(fmt.Sprintf(
			"¿Eliminar \"%s\"? Esta acción no se puede deshacer.", bot.Name))
		m.confirmDelete.Show()
		return m, nil

	case connectRequestMsg:
		if msg.bot.WhatsAppNumber == "" {
			return m, m.toast.Show("Este chatbot no tiene número de WhatsApp. Edítalo primero.")
		}
		return m, m.connectWhatsApp(msg.bot)

	case DeleteResultMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, botapi.ErrLoginRequired) {
				m.loginErr = msg.Err
				return m, tea.Quit
			}
			return m, m.toast.Show(botapi.UserMessage(msg.Err))
		}
		// The deleted bot's session is gone server-side too.
		if m.chat != nil && m.chat.BotID() == msg.BotID {
			m.closeChat()
		}
		text := msg.Message
		if text == "" {
			text = "Chatbot eliminado"
		}
		return m, tea.Batch(m.toast.Show(text), m.fetchBots())

	case ConnectResultMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, botapi.ErrLoginRequired) {
				m.loginErr = msg.Err
				return m, tea.Quit
			}
			return m, m.toast.Show(botapi.UserMessage(msg.Err))
		}
		text := msg.Message
		if text == "" {
			text = "WhatsApp conectado"
		}
		return m, m.toast.Show(text)

	case EditRequestMsg:
		bot := msg.Bot
		m.editBot = &bot
		return m, tea.Quit

	case chatSendMsg:
		if m.chat == nil {
			return m, nil
		}
		return m, m.sendChat(m.chat.BotID(), m.chat.Gen(), msg.text)

	case HistoryLoadedMsg:
		if msg.Err != nil && errors.Is(msg.Err, botapi.ErrLoginRequired) {
			m.loginErr = msg.Err
			return m, tea.Quit
		}
		if m.chat != nil {
			return m, m.chat.Update(msg)
		}
		return m, nil

	case ChatReplyMsg:
		if msg.Err != nil && errors.Is(msg.Err, botapi.ErrLoginRequired) {
			m.loginErr = msg.Err
			return m, tea.Quit
		}
		var cmds []tea.Cmd
		if m.chat != nil {
			cmds = append(cmds, m.chat.Update(msg))
		}
		// The send consumed quota; refresh the advisory line.
		cmds = append(cmds, m.fetchQuota())
		return m, tea.Batch(cmds...)

	case ToastDismissMsg:
		return m, m.toast.Update(msg)
	}

	var cmds []tea.Cmd
	if _, isKey := msg.(tea.KeyPressMsg); isKey {
		if m.chat != nil && !m.list.focused {
			cmds = append(cmds, m.chat.Update(msg))
		} else {
			cmds = append(cmds, m.list.Update(msg))
		}
	} else {
		cmds = append(cmds, m.list.Update(msg))
		if m.chat != nil {
			cmds = append(cmds, m.chat.Update(msg))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *App) closeChat() {
	// Bump gen so in-flight history loads and replies for the old session
	// are dropped.
	m.chatGen++
	m.chat = nil
	m.list.SetFocused(true)
	m.layout()
}

func (m *App) layout() {
	if m.width == 0 {
		return
	}
	contentHeight := m.height - 4
	if m.chat != nil {
		listWidth := m.width / 3
		m.list.SetSize(listWidth, contentHeight)
		m.chat.SetSize(m.width-listWidth-3, contentHeight)
	} else {
		m.list.SetSize(m.width-4, contentHeight)
	}
}

func (m *App) loadHistory(botID, gen int) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		history, err := client.History(ctx, botID, chatUserID)
		return HistoryLoadedMsg{Gen: gen, History: history, Err: err}
	}
}

func (m *App) sendChat(botID, gen int, text string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		reply, err := client.Chat(ctx, botID, chatUserID, text)
		return ChatReplyMsg{Gen: gen, Reply: reply, Err: err}
	}
}

func (m *App) deleteBot(bot botapi.Bot) tea.Cmd {
	client, ctx := m.client, m.ctx
	logger.Info("deleting bot id=%d name=%s", bot.ID, bot.Name)
	return func() tea.Msg {
		message, err := client.DeleteBot(ctx, bot.ID)
		return DeleteResultMsg{BotID: bot.ID, Message: message, Err: err}
	}
}

func (m *App) connectWhatsApp(bot botapi.Bot) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		message, err := client.ConnectWhatsApp(ctx, bot.ID, bot.WhatsAppNumber)
		return ConnectResultMsg{BotID: bot.ID, Message: message, Err: err}
	}
}

// quotaLine renders the advisory message budget.
func (m *App) quotaLine() string {
	t := theme.Current()
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted))
	if m.quotaErr != "" {
		return muted.Render("Cuota no disponible")
	}
	if m.quota == nil {
		return muted.Render("Cargando cuota...")
	}
	used, limit := m.quota.MessagesUsed, m.quota.MessagesLimit
	style := muted
	if limit > 0 && used >= limit {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error))
	} else if limit > 0 && used*10 >= limit*8 {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning))
	}
	return style.Render(fmt.Sprintf("Mensajes: %d/%d", used, limit))
}

func (m *App) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if m.width == 0 || m.height == 0 {
		view.Content = lipgloss.NewLayer("")
		return view
	}

	var content string
	if m.confirmDelete.IsVisible() {
		content = lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center, m.confirmDelete.Render())
	} else {
		t := theme.Current()
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(t.Primary)).
			Render("BotStudio")
		top := lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", m.quotaLine())

		var body string
		if m.chat != nil {
			body = lipgloss.JoinHorizontal(lipgloss.Top,
				m.list.View(), "   ", m.chat.View())
		} else {
			body = m.list.View()
		}

		content = lipgloss.JoinVertical(lipgloss.Left, top, "", body)
		content = lipgloss.NewStyle().Padding(1, 2).Render(content)
	}

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	// Draw the toast last so it sits on top of everything.
	if toastContent := m.toast.View(m.width, m.height); toastContent != "" {
		contentWidth := lipgloss.Width(toastContent)
		contentHeight := lipgloss.Height(toastContent)
		toastX := m.width - contentWidth - 1
		toastY := m.height - 1 - contentHeight
		if toastX < 0 {
			toastX = 0
		}
		if toastY < 0 {
			toastY = 0
		}
		uv.NewStyledString(toastContent).Draw(canvas, uv.Rectangle{
			Min: uv.Position{X: toastX, Y: toastY},
			Max: uv.Position{X: toastX + contentWidth, Y: toastY + contentHeight},
		})
	}

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}
