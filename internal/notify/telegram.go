package notify

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSender sends messages via Telegram Bot API.
type TelegramSender struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ Sender = (*TelegramSender)(nil)

// NewTelegramSender creates a new Telegram sender.
func NewTelegramSender(botToken, chatID string) *TelegramSender {
	return &TelegramSender{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  telegramAPIBase,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithAPIBase points the sender at another Bot API endpoint.
func (t *TelegramSender) WithAPIBase(base string) *TelegramSender {
	t.apiBase = base
	return t
}

type telegramSendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Send delivers a notification as a bold title followed by its body.
func (t *TelegramSender) Send(ctx context.Context, n Notification) error {
	text := "<b>" + html.EscapeString(n.Title) + "</b>"
	if n.Body != "" {
		text += "\n" + html.EscapeString(n.Body)
	}
	return t.SendMessage(ctx, text)
}

// SendMessage sends an HTML-formatted message to the configured chat.
func (t *TelegramSender) SendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)

	payload := telegramSendRequest{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(respBody, &tgResp); err != nil {
		return fmt.Errorf("failed to parse telegram response: %w", err)
	}

	if !tgResp.OK {
		return fmt.Errorf("telegram API error: %s", tgResp.Description)
	}

	return nil
}
