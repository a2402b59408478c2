// Package webhook implements an HTTP webhook notifier
package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/lrchart/chartai/internal/httpclient"
	"github.com/lrchart/chartai/internal/notifier"
)

// Webhook implements the Notifier interface for HTTP webhooks
type Webhook struct {
	url     string
	headers map[string]string
	client  httpclient.HTTPClient
}

// New creates a new Webhook notifier
func New(url string, headers map[string]string) *Webhook {
	return &Webhook{
		url:     url,
		headers: headers,
		client:  httpclient.New("", 30*time.Second, ""),
	}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Init(cfg notifier.Config) error {
	if url, ok := cfg.Params["url"].(string); ok {
		w.url = url
	}
	if headers, ok := cfg.Params["headers"].(map[string]string); ok {
		w.headers = headers
	}

	if w.url == "" {
		return fmt.Errorf("webhook: url is required")
	}

	if w.client == nil {
		w.client = httpclient.New("", 30*time.Second, "")
	}

	return nil
}

type payload struct {
	Type string `json:"type"`
	notifier.Message
	Count int    `json:"count"`
	Sent  string `json:"sent_at"`
}

// Publish posts the message as JSON.
func (w *Webhook) Publish(ctx context.Context, msg notifier.Message) error {
	body := payload{
		Type:    string(msg.Kind),
		Message: msg,
		Count:   len(msg.Signals),
		Sent:    time.Now().UTC().Format(time.RFC3339),
	}

	resp, err := w.client.Post(ctx, w.url, body, w.headers, nil)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: server returned %d", resp.StatusCode)
	}

	return nil
}
