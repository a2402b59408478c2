// Package notifier publishes signal reports to external channels.
package notifier

import (
	"context"
	"time"

	"github.com/lrchart/chartai/internal/core"
)

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// Message is one published report. Text is the clipboard rendering; the
// structured fields are there for channels that want them.
type Message struct {
	Title     string              `json:"title"`
	Text      string              `json:"text"`
	BatchID   string              `json:"batch_id,omitempty"`
	Kind      core.BatchKind      `json:"kind"`
	Pair      string              `json:"pair,omitempty"`
	Signals   []core.FutureSignal `json:"signals"`
	CreatedAt time.Time           `json:"created_at"`
}

// Notifier defines the interface for report publishing
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Publish delivers one message
	Publish(ctx context.Context, msg Message) error
}

// FromBatch builds the message for a stored batch and its rendered report.
func FromBatch(b core.Batch, title, text string) Message {
	return Message{
		Title:     title,
		Text:      text,
		BatchID:   b.ID,
		Kind:      b.Kind,
		Pair:      b.Pair,
		Signals:   b.Signals,
		CreatedAt: b.CreatedAt,
	}
}
