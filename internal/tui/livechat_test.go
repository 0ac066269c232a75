package tui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumweb/botstudio/internal/botapi"
)

func newTestChat() *LiveChat {
	c := NewLiveChat(botapi.Bot{ID: 7, Name: "Taquería"}, 1)
	c.SetSize(60, 20)
	return c
}

func TestLiveChatEmptyHistoryGreets(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 1, History: nil})

	require.Len(t, c.lines, 1)
	assert.Equal(t, "bot", c.lines[0].role)
	assert.Contains(t, c.lines[0].text, "Taquería")
}

func TestLiveChatHistoryReplayed(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 1, History: []botapi.HistoryEntry{
		{Role: "user", Message: "hola"},
		{Role: "assistant", Message: "¡Hola! ¿Qué se te antoja?"},
	}})

	require.Len(t, c.lines, 2)
	assert.Equal(t, "user", c.lines[0].role)
	assert.Equal(t, "bot", c.lines[1].role)
	assert.False(t, c.loading)
}

func TestLiveChatStaleHistoryDropped(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 99, History: []botapi.HistoryEntry{
		{Role: "user", Message: "viejo"},
	}})

	assert.Empty(t, c.lines)
	assert.True(t, c.loading, "stale load must not clear the loading state")
}

func TestLiveChatSendDispatchesAndGuards(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 1, History: nil})

	c.input.SetValue("quiero dos tacos")
	cmd := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, c.busy)
	assert.Equal(t, "user", c.lines[len(c.lines)-1].role)
	assert.Empty(t, c.input.Value())

	// Busy: a second enter is ignored.
	c.input.SetValue("otro mensaje")
	assert.Nil(t, c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}))
}

func TestLiveChatBlankSendIgnored(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 1, History: nil})

	c.input.SetValue("   ")
	assert.Nil(t, c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}))
	assert.False(t, c.busy)
}

func TestLiveChatReplyAppends(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 1, History: nil})
	c.busy = true

	c.Update(ChatReplyMsg{Gen: 1, Reply: "¡Claro! Son $50."})

	assert.False(t, c.busy)
	last := c.lines[len(c.lines)-1]
	assert.Equal(t, "bot", last.role)
	assert.Equal(t, "¡Claro! Son $50.", last.text)
}

func TestLiveChatStaleReplyDropped(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 1, History: nil})
	c.busy = true
	before := len(c.lines)

	c.Update(ChatReplyMsg{Gen: 42, Reply: "tarde"})

	assert.Len(t, c.lines, before)
	assert.True(t, c.busy, "stale reply must not clear the in-flight guard")
}

func TestLiveChatQuotaExceededGetsUpsellLink(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 1, History: nil})
	c.busy = true

	c.Update(ChatReplyMsg{Gen: 1, Err: &botapi.QuotaExceededError{}})

	last := c.lines[len(c.lines)-1]
	assert.Equal(t, "bot", last.role)
	assert.NotEmpty(t, last.linkURL)
	assert.Contains(t, last.text, "límite")
}

func TestLiveChatAPIErrorLinkRendered(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 1, History: nil})
	c.busy = true

	c.Update(ChatReplyMsg{Gen: 1, Err: &botapi.APIError{
		Status:    402,
		Message:   "Necesitas el plan Pro.",
		LinkURL:   "https://quantumweb.mx/planes",
		LinkLabel: "Ver planes",
	}})

	last := c.lines[len(c.lines)-1]
	assert.Equal(t, "Necesitas el plan Pro.", last.text)
	assert.Equal(t, "Ver planes", last.linkLabel)
}

func TestLiveChatTransportErrorLocalized(t *testing.T) {
	c := newTestChat()
	c.Update(HistoryLoadedMsg{Gen: 1, History: nil})
	c.busy = true

	c.Update(ChatReplyMsg{Gen: 1, Err: &botapi.TransportError{Op: "POST /chat/7"}})

	last := c.lines[len(c.lines)-1]
	assert.NotContains(t, last.text, "POST /chat", "transport detail must not leak")
	assert.Contains(t, last.text, "servidor")
}
