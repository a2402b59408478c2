// Package telegram publishes reports through the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lrchart/chartai/internal/httpclient"
	"github.com/lrchart/chartai/internal/notifier"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// MaxMessageLength is the Bot API limit for one message, in characters.
const MaxMessageLength = 4096

// Telegram implements the Notifier interface for Telegram Bot API
type Telegram struct {
	botToken string
	chatID   string
	baseURL  string
	client   httpclient.HTTPClient
}

// New creates a new Telegram notifier
func New(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  DefaultBaseURL,
		client:   httpclient.New(DefaultBaseURL, 30*time.Second, ""),
	}
}

// WithBaseURL points the notifier at another Bot API server.
func (t *Telegram) WithBaseURL(baseURL string) *Telegram {
	t.baseURL = baseURL
	t.client = httpclient.New(baseURL, 30*time.Second, "")
	return t
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Init(cfg notifier.Config) error {
	if token, ok := cfg.Params["bot_token"].(string); ok {
		t.botToken = token
	}
	if chatID, ok := cfg.Params["chat_id"].(string); ok {
		t.chatID = chatID
	}

	if t.botToken == "" {
		return fmt.Errorf("telegram: bot_token is required")
	}
	if t.chatID == "" {
		return fmt.Errorf("telegram: chat_id is required")
	}
	if t.client == nil {
		if t.baseURL == "" {
			t.baseURL = DefaultBaseURL
		}
		t.client = httpclient.New(t.baseURL, 30*time.Second, "")
	}

	return nil
}

// Publish sends the report text, split into several messages when it is
// longer than the Bot API allows.
func (t *Telegram) Publish(ctx context.Context, msg notifier.Message) error {
	if msg.Text == "" {
		return nil
	}
	for _, part := range split(msg.Text, MaxMessageLength) {
		if err := t.sendMessage(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	// Plain text: pair names contain characters Markdown would eat.
	payload := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}

	resp, err := t.client.Post(ctx, "/bot"+t.botToken+"/sendMessage", payload, nil, nil)
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}

	var result apiResponse
	_ = json.Unmarshal(resp.Body, &result)
	if !resp.IsSuccess() || !result.OK {
		return fmt.Errorf("telegram: API error (status %d): %s", resp.StatusCode, result.Description)
	}

	return nil
}

// split breaks text into chunks of at most limit runes, preferring line
// boundaries.
func split(text string, limit int) []string {
	var parts []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		for len(r) > limit {
			flush()
			parts = append(parts, string(r[:limit]))
			r = r[limit:]
		}
		if curLen+len(r) > limit {
			flush()
		}
		cur.WriteString(string(r))
		curLen += len(r)
	}
	flush()

	for i := range parts {
		parts[i] = strings.TrimRight(parts[i], "\n")
	}
	return parts
}
