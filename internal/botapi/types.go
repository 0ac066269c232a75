// Package botapi is the HTTP client for the chatbot backend. It owns the wire
// types and the error taxonomy; everything above it works with these shapes.
package botapi

// ActionType enumerates the side effects a flow entry can trigger.
type ActionType string

const (
	ActionNone         ActionType = "none"
	ActionPaymentLink  ActionType = "payment_link"
	ActionScheduleLink ActionType = "schedule_link"
)

// Action is an optional side-effect descriptor attached to a flow entry.
type Action struct {
	Type  ActionType `json:"type"`
	Value string     `json:"value,omitempty"`
}

// FlowEntry is one conversational rule: a user trigger matched
// case-insensitively server-side and the reply it produces.
type FlowEntry struct {
	UserMessage string  `json:"userMessage"`
	BotResponse string  `json:"botResponse"`
	Condition   string  `json:"condition,omitempty"` // opaque to the client
	Action      *Action `json:"action,omitempty"`
}

// Bot is a persisted chatbot as returned by the backend.
type Bot struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	Tone           string      `json:"tone"`
	Purpose        string      `json:"purpose"`
	WhatsAppNumber string      `json:"whatsapp_number,omitempty"`
	BusinessInfo   string      `json:"business_info,omitempty"`
	PDFURL         string      `json:"pdf_url,omitempty"`
	ImageURL       string      `json:"image_url,omitempty"`
	MenuJSON       string      `json:"menu_json,omitempty"`
	InitialMessage string      `json:"initial_message,omitempty"`
	Flows          []FlowEntry `json:"flows,omitempty"`
	Ephemeral      bool        `json:"is_ephemeral,omitempty"`
}

// Template is a server-defined starter configuration, immutable client-side.
type Template struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Tone        string      `json:"tone"`
	Purpose     string      `json:"purpose"`
	Flows       []FlowEntry `json:"flows"`
}

// Quota is the server-tracked message budget. Advisory only; the backend
// enforces it.
type Quota struct {
	MessagesUsed  int `json:"messages_used"`
	MessagesLimit int `json:"messages_limit"`
}

// HistoryEntry is one prior transcript line for a bot.
type HistoryEntry struct {
	Role    string `json:"role"` // "user" or "assistant"
	Message string `json:"message"`
}

// BotPayload is the create/update request body. Field names follow the
// backend's snake_case contract; flows keep their camelCase entry shape.
type BotPayload struct {
	Name           string      `json:"name"`
	Tone           string      `json:"tone"`
	Purpose        string      `json:"purpose"`
	WhatsAppNumber string      `json:"whatsapp_number,omitempty"`
	BusinessInfo   string      `json:"business_info,omitempty"`
	PDFURL         string      `json:"pdf_url,omitempty"`
	ImageURL       string      `json:"image_url,omitempty"`
	MenuJSON       string      `json:"menu_json,omitempty"`
	Flows          []FlowEntry `json:"flows"`
	TemplateID     *int        `json:"template_id,omitempty"`
	Ephemeral      bool        `json:"is_ephemeral,omitempty"`
}

// CreateResult is the backend's answer to a successful create.
type CreateResult struct {
	Message   string `json:"message"`
	ChatbotID int    `json:"chatbot_id,omitempty"`
}

type listBotsResponse struct {
	Chatbots []Bot `json:"chatbots"`
}

type templatesResponse struct {
	Templates []Template `json:"templates"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type historyResponse struct {
	History []HistoryEntry `json:"history"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type uploadResponse struct {
	FileURL string `json:"file_url"`
}
