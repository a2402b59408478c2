// Package analysis asks a multimodal model for a trading direction from a
// chart screenshot, and validates the structured reply.
package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/llm"
)

// Analysis kinds, used for metrics, jobs and cache keys.
const (
	KindChart    = "chart"
	KindForecast = "forecast"
)

// Analyzer is the boundary every caller and test double goes through.
type Analyzer interface {
	// AnalyzeChart returns a single direction for the next 1-minute expiry.
	AnalyzeChart(ctx context.Context, image []byte, mimeType string) (*core.AnalysisResult, error)

	// AnalyzeForFutureSignals predicts signals for pair over the next 30
	// minutes. An empty list is a valid answer.
	AnalyzeForFutureSignals(ctx context.Context, image []byte, mimeType, pair string) (*core.AIFutureSignalResult, error)
}

// Config holds model settings for each kind of analysis.
type Config struct {
	ChartModel          string
	ForecastModel       string
	ChartTemperature    float64
	ForecastTemperature float64
	MaxTokens           int
}

// DefaultConfig matches the hosted Gemini models the prompts were tuned for.
func DefaultConfig() Config {
	return Config{
		ChartModel:          "gemini-2.5-flash",
		ForecastModel:       "gemini-2.5-pro",
		ChartTemperature:    0.1,
		ForecastTemperature: 0.4,
		MaxTokens:           2048,
	}
}

// Client implements Analyzer on top of an LLM provider.
type Client struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

// New creates a Client.
func New(provider llm.Provider, cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{provider: provider, cfg: cfg, log: log}
}

func (c *Client) AnalyzeChart(ctx context.Context, image []byte, mimeType string) (*core.AnalysisResult, error) {
	if err := CheckImage(image, mimeType); err != nil {
		return nil, err
	}

	text, err := c.ask(ctx, KindChart, llm.ChatRequest{
		Model:        c.cfg.ChartModel,
		SystemPrompt: SystemInstruction,
		Messages:     []llm.Message{imageMessage(chartPrompt, image, mimeType)},
		MaxTokens:    c.cfg.MaxTokens,
		Temperature:  c.cfg.ChartTemperature,
		Schema:       chartSchema,
	})
	if err != nil {
		return nil, err
	}

	result, err := parseChart(text)
	if err != nil {
		c.log.Warn("invalid chart analysis response", zap.Error(err), zap.String("response", truncate(text, 512)))
		return nil, core.WrapError(core.ErrAnalysisFailed, err)
	}
	return result, nil
}

func (c *Client) AnalyzeForFutureSignals(ctx context.Context, image []byte, mimeType, pair string) (*core.AIFutureSignalResult, error) {
	if err := CheckImage(image, mimeType); err != nil {
		return nil, err
	}
	if pair == "" {
		return nil, core.ErrPairRequired
	}

	text, err := c.ask(ctx, KindForecast, llm.ChatRequest{
		Model:        c.cfg.ForecastModel,
		SystemPrompt: SystemInstruction,
		Messages:     []llm.Message{imageMessage(forecastPrompt(pair), image, mimeType)},
		MaxTokens:    c.cfg.MaxTokens,
		Temperature:  c.cfg.ForecastTemperature,
		Schema:       forecastSchema,
	})
	if err != nil {
		return nil, err
	}

	result, err := parseForecast(text)
	if err != nil {
		c.log.Warn("invalid forecast response", zap.Error(err), zap.String("pair", pair), zap.String("response", truncate(text, 512)))
		return nil, core.WrapError(core.ErrAnalysisFailed, err)
	}
	return result, nil
}

func (c *Client) ask(ctx context.Context, kind string, req llm.ChatRequest) (string, error) {
	start := time.Now()
	resp, err := c.provider.Chat(ctx, req)
	if err != nil {
		c.log.Warn("model request failed",
			zap.String("kind", kind),
			zap.String("provider", c.provider.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", core.WrapError(core.ErrAnalysisFailed, core.WrapError(core.ErrLLMFailed, err))
	}

	c.log.Debug("model responded",
		zap.String("kind", kind),
		zap.String("provider", c.provider.Name()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.String("finish_reason", resp.FinishReason))
	return resp.Content, nil
}

func imageMessage(prompt string, image []byte, mimeType string) llm.Message {
	return llm.Message{
		Role:    "user",
		Content: prompt,
		Images:  []llm.Image{{MIMEType: mimeType, Data: image}},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
