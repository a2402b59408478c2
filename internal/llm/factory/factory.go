// Package factory builds the configured LLM provider.
package factory

import (
	"context"
	"fmt"

	"github.com/lrchart/chartai/internal/config"
	"github.com/lrchart/chartai/internal/llm"
	"github.com/lrchart/chartai/internal/llm/claude"
	"github.com/lrchart/chartai/internal/llm/gemini"
	"github.com/lrchart/chartai/internal/llm/ollama"
	"github.com/lrchart/chartai/internal/llm/openai"
)

// New creates an LLM provider based on configuration.
func New(ctx context.Context, cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
