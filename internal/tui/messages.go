package tui

import (
	"github.com/quantumweb/botstudio/internal/botapi"
)

// BotsLoadedMsg carries the refreshed bot list.
type BotsLoadedMsg struct {
	Bots []botapi.Bot
}

// BotsErrorMsg is sent when the bot list fetch fails.
type BotsErrorMsg struct {
	Err error
}

// QuotaLoadedMsg carries the refreshed message quota.
type QuotaLoadedMsg struct {
	Quota *botapi.Quota
	Err   error
}

// DeleteResultMsg carries the outcome of a delete-bot request.
type DeleteResultMsg struct {
	BotID   int
	Message string
	Err     error
}

// HistoryLoadedMsg carries the stored transcript for a newly opened session.
// Gen ties it to the session that requested it.
type HistoryLoadedMsg struct {
	Gen     int
	History []botapi.HistoryEntry
	Err     error
}

// ChatReplyMsg carries the bot's reply to a live-chat send.
type ChatReplyMsg struct {
	Gen   int
	Reply string
	Err   error
}

// ConnectResultMsg carries the outcome of a connect-whatsapp request.
type ConnectResultMsg struct {
	BotID   int
	Message string
	Err     error
}

// EditRequestMsg asks the app to quit and relaunch the wizard for a bot.
type EditRequestMsg struct {
	Bot botapi.Bot
}
