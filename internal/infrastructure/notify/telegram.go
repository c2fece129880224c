package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const telegramAPI = "https://api.telegram.org"

var errTelegramConfig = errors.New("telegram token or chat_id missing")

// TelegramOption 調整 TelegramClient。
type TelegramOption func(*TelegramClient)

// WithTelegramBaseURL 改用其他 Bot API 位址（測試用）。
func WithTelegramBaseURL(u string) TelegramOption {
	return func(c *TelegramClient) { c.baseURL = u }
}

// WithTelegramHTTPClient 替換底層 http.Client。
func WithTelegramHTTPClient(hc *http.Client) TelegramOption {
	return func(c *TelegramClient) { c.httpClient = hc }
}

// WithPrefix 每則訊息前加上 [prefix]。
func WithPrefix(prefix string) TelegramOption {
	return func(c *TelegramClient) { c.prefix = prefix }
}

// WithSilent 送出時不觸發手機通知聲。
func WithSilent() TelegramOption {
	return func(c *TelegramClient) { c.silent = true }
}

// TelegramClient 透過 Bot API sendMessage 推送行程狀態。
type TelegramClient struct {
	token      string
	chatID     int64
	prefix     string
	silent     bool
	baseURL    string
	httpClient *http.Client
}

func NewTelegramClient(token string, chatID int64, opts ...TelegramOption) *TelegramClient {
	c := &TelegramClient{
		token:      token,
		chatID:     chatID,
		baseURL:    telegramAPI,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendMessageRequest struct {
	ChatID              int64  `json:"chat_id"`
	Text                string `json:"text"`
	DisableNotification bool   `json:"disable_notification,omitempty"`
}

// Bot API 一律回傳 {"ok":..., "description":...}。
type botResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendMessage 將文字訊息推送到設定的 chat。
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	if c == nil {
		return errors.New("telegram client is nil")
	}
	if c.token == "" || c.chatID == 0 {
		return errTelegramConfig
	}
	if c.prefix != "" {
		text = "[" + c.prefix + "] " + text
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text, DisableNotification: c.silent})
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}
	endpoint := c.baseURL + "/bot" + c.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	var out botResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode >= 300 || (decodeErr == nil && !out.OK) {
		if out.Description == "" {
			out.Description = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("telegram send failed status=%d: %s", resp.StatusCode, out.Description)
	}
	return nil
}
