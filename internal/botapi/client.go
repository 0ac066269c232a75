package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/quantumweb/botstudio/internal/logger"
)

// Client talks to the chatbot backend. All calls carry the session cookie and
// take a context; none of them retry.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the backend at baseURL authenticating with the
// given session token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// ListBots fetches the user's persisted bots.
func (c *Client) ListBots(ctx context.Context) ([]Bot, error) {
	var out listBotsResponse
	if err := c.do(ctx, http.MethodGet, "/list-bots", nil, &out); err != nil {
		return nil, err
	}
	return out.Chatbots, nil
}

// ListTemplates fetches the available starter templates.
func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var out templatesResponse
	if err := c.do(ctx, http.MethodGet, "/api/templates", nil, &out); err != nil {
		return nil, err
	}
	return out.Templates, nil
}

// Quota fetches the current message usage for the session's plan.
func (c *Client) Quota(ctx context.Context) (*Quota, error) {
	var out Quota
	if err := c.do(ctx, http.MethodGet, "/api/quota", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBot creates a bot from the given payload.
func (c *Client) CreateBot(ctx context.Context, payload BotPayload) (*CreateResult, error) {
	var out CreateResult
	if err := c.do(ctx, http.MethodPost, "/create-bot", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBot updates an existing bot.
func (c *Client) UpdateBot(ctx context.Context, id int, payload BotPayload) (string, error) {
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/update-bot/%d", id), payload, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// DeleteBot deletes a bot by id.
func (c *Client) DeleteBot(ctx context.Context, id int) (string, error) {
	body := map[string]int{"chatbot_id": id}
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/delete-bot", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Chat sends one message to a bot and returns its reply. 403 and 429 map to
// the quota-exceeded path.
func (c *Client) Chat(ctx context.Context, botID int, userID, message string) (string, error) {
	body := map[string]string{"message": message, "user_id": userID}
	var out chatResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/chat/%d", botID), body, &out)
	if err != nil {
		var ae *APIError
		if errors.As(err, &ae) && (ae.Status == http.StatusForbidden || ae.Status == http.StatusTooManyRequests) {
			return "", &QuotaExceededError{Message: ae.Message}
		}
		return "", err
	}
	return out.Response, nil
}

// History fetches the prior transcript for a bot and user.
func (c *Client) History(ctx context.Context, botID int, userID string) ([]HistoryEntry, error) {
	body := map[string]interface{}{"chatbot_id": botID, "user_id": userID}
	var out historyResponse
	if err := c.do(ctx, http.MethodPost, "/conversation-history", body, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// ConnectWhatsApp binds a channel number to a bot.
func (c *Client) ConnectWhatsApp(ctx context.Context, botID int, number string) (string, error) {
	body := map[string]interface{}{"chatbot_id": botID, "whatsapp_number": number}
	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/connect-whatsapp", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// do runs one JSON round trip and maps the response onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: "encoding request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: "building request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: c.token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("request %s %s failed: %v", method, path, err)
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrLoginRequired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error("decoding %s %s response: %v", method, path, err)
		return &TransportError{Op: "decoding response", Err: err}
	}
	return nil
}

// decodeAPIError builds an APIError from a non-2xx response body. The backend
// sends {message} plus optional structured link fields for rich failures such
// as upgrade prompts.
func decodeAPIError(resp *http.Response) error {
	var body struct {
		Message   string `json:"message"`
		Error     string `json:"error"`
		LinkURL   string `json:"link_url"`
		LinkLabel string `json:"link_label"`
	}
	// A body that fails to parse still yields a usable status-only error.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)

	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	return &APIError{
		Status:    resp.StatusCode,
		Message:   msg,
		LinkURL:   body.LinkURL,
		LinkLabel: body.LinkLabel,
	}
}
