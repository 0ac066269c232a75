package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumweb/botstudio/internal/botapi"
	"github.com/quantumweb/botstudio/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{Tone: "amigable"}
	client := botapi.New("http://127.0.0.1:1", "tok")
	m := NewApp(cfg, client)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.list.Update(BotsLoadedMsg{Bots: []botapi.Bot{
		{ID: 1, Name: "Taquería", WhatsAppNumber: "+5215512345678"},
		{ID: 2, Name: "Dentista"},
	}})
	return m
}

func drainApp(t *testing.T, m *App, msg tea.Msg) (*App, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(msg)
	app, ok := model.(*App)
	require.True(t, ok, "Update returned unexpected model type %T", model)
	return app, cmd
}

func TestAppOpensChatWithHistoryLoad(t *testing.T) {
	m := newTestApp(t)

	m, cmd := drainApp(t, m, openChatMsg{bot: botapi.Bot{ID: 1, Name: "Taquería"}})
	require.NotNil(t, m.chat)
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.chat.BotID())
	assert.False(t, m.list.focused, "chat takes focus on open")
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m := newTestApp(t)

	m, cmd := drainApp(t, m, deleteRequestedMsg{bot: botapi.Bot{ID: 2, Name: "Dentista"}})
	assert.Nil(t, cmd, "no request before confirmation")
	assert.True(t, m.confirmDelete.IsVisible())
	require.NotNil(t, m.pendingDelete)

	// Declining clears the pending delete without sending anything.
	m, cmd = drainApp(t, m, tea.KeyPressMsg{Text: "n", Code: 'n'})
	assert.Nil(t, cmd)
	assert.False(t, m.confirmDelete.IsVisible())
	assert.Nil(t, m.pendingDelete)
}

func TestDeleteConfirmationDispatchesRequest(t *testing.T) {
	m := newTestApp(t)

	m, _ = drainApp(t, m, deleteRequestedMsg{bot: botapi.Bot{ID: 2, Name: "Dentista"}})
	m, cmd := drainApp(t, m, tea.KeyPressMsg{Text: "y", Code: 'y'})

	require.NotNil(t, cmd, "confirming must dispatch the delete")
	assert.False(t, m.confirmDelete.IsVisible())
	assert.Nil(t, m.pendingDelete)
}

func TestDeleteOfOpenSessionClosesChat(t *testing.T) {
	m := newTestApp(t)
	m, _ = drainApp(t, m, openChatMsg{bot: botapi.Bot{ID: 1, Name: "Taquería"}})
	require.NotNil(t, m.chat)

	m, cmd := drainApp(t, m, DeleteResultMsg{BotID: 1, Message: "eliminado"})

	assert.Nil(t, m.chat, "deleting the chatted bot must close its session")
	assert.True(t, m.list.focused)
	require.NotNil(t, cmd, "a successful delete refreshes the list")
}

func TestDeleteOfOtherBotKeepsChat(t *testing.T) {
	m := newTestApp(t)
	m, _ = drainApp(t, m, openChatMsg{bot: botapi.Bot{ID: 1, Name: "Taquería"}})

	m, _ = drainApp(t, m, DeleteResultMsg{BotID: 2, Message: "eliminado"})

	require.NotNil(t, m.chat)
	assert.Equal(t, 1, m.chat.BotID())
}

func TestChatReplyRefreshesQuota(t *testing.T) {
	m := newTestApp(t)
	m, _ = drainApp(t, m, openChatMsg{bot: botapi.Bot{ID: 1, Name: "Taquería"}})

	_, cmd := drainApp(t, m, ChatReplyMsg{Gen: m.chat.Gen(), Reply: "hola"})

	require.NotNil(t, cmd, "every reply triggers a quota refresh")
}

func TestEscClosesChatBeforeQuitting(t *testing.T) {
	m := newTestApp(t)
	m, _ = drainApp(t, m, openChatMsg{bot: botapi.Bot{ID: 1, Name: "Taquería"}})

	m, cmd := drainApp(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, m.chat)
	assert.Nil(t, cmd, "first esc only closes the chat")

	_, cmd = drainApp(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd, "esc on the dashboard quits")
}

func TestStaleChatMessagesAfterCloseAreDropped(t *testing.T) {
	m := newTestApp(t)
	m, _ = drainApp(t, m, openChatMsg{bot: botapi.Bot{ID: 1, Name: "Taquería"}})
	oldGen := m.chat.Gen()
	m.closeChat()

	m, _ = drainApp(t, m, openChatMsg{bot: botapi.Bot{ID: 2, Name: "Dentista"}})
	m, _ = drainApp(t, m, HistoryLoadedMsg{Gen: oldGen, History: []botapi.HistoryEntry{
		{Role: "user", Message: "viejo"},
	}})

	assert.Empty(t, m.chat.lines, "history for a closed session must be ignored")
}

func TestEditRequestQuitsWithBot(t *testing.T) {
	m := newTestApp(t)

	m, cmd := drainApp(t, m, EditRequestMsg{Bot: botapi.Bot{ID: 2, Name: "Dentista"}})

	require.NotNil(t, m.editBot)
	assert.Equal(t, 2, m.editBot.ID)
	require.NotNil(t, cmd)
}

func TestLoginRequiredQuotaQuits(t *testing.T) {
	m := newTestApp(t)

	m, cmd := drainApp(t, m, QuotaLoadedMsg{Err: botapi.ErrLoginRequired})

	assert.ErrorIs(t, m.loginErr, botapi.ErrLoginRequired)
	require.NotNil(t, cmd)
}

func TestConnectWithoutNumberShowsToast(t *testing.T) {
	m := newTestApp(t)

	m, cmd := drainApp(t, m, connectRequestMsg{bot: botapi.Bot{ID: 2, Name: "Dentista"}})

	require.NotNil(t, cmd)
	assert.True(t, m.toast.IsVisible())
	assert.Contains(t, m.toast.Message(), "WhatsApp")
}
