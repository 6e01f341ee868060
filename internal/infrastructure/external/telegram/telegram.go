// Package telegram delivers operator-facing pipeline alerts over the
// Telegram Bot API. There is no accompanying inbound bot here: the
// reference pipeline's interactive query/status commands are served by
// the HTTP API instead, so this client only ever calls sendMessage.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// apiBase is a var rather than a const so tests can point the client at a
// local httptest.Server instead of the real Telegram API.
var apiBase = "https://api.telegram.org"

// Client sends messages to a fixed Telegram chat using a bot token.
type Client struct {
	token  string
	chatID string
	client *http.Client
}

// NewClient creates a Telegram bot client. token and chatID are typically
// sourced from Config.BotToken / Config.AdminChat.
func NewClient(token, chatID string) *Client {
	return &Client{
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether the client has enough configuration to send.
func (c *Client) Enabled() bool {
	return c.token != "" && c.chatID != ""
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage posts text to the configured chat.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if !c.Enabled() {
		return fmt.Errorf("telegram client not configured")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", apiBase, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("telegram sendMessage failed: %s", out.Description)
	}
	return nil
}
