// internal/llm/claude/claude_test.go
package claude

import (
	"strings"
	"testing"

	"github.com/lrchart/chartai/internal/llm"
)

func TestProvider_ImplementsInterface(t *testing.T) {
	var _ llm.Provider = (*Provider)(nil)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", "model")
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestMessages_ImageBlocks(t *testing.T) {
	msgs := messages([]llm.Message{{
		Role:    "user",
		Content: "analyze",
		Images:  []llm.Image{{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}},
	}})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if len(msgs[0].Content) != 2 {
		t.Fatalf("expected image and text blocks, got %d", len(msgs[0].Content))
	}
	if msgs[0].Content[0].OfImage == nil {
		t.Error("expected first block to be the image")
	}
	if msgs[0].Content[1].OfText == nil || msgs[0].Content[1].OfText.Text != "analyze" {
		t.Error("expected second block to be the prompt text")
	}
}

func TestSystemPrompt_Schema(t *testing.T) {
	got := systemPrompt(llm.ChatRequest{
		SystemPrompt: "base",
		Schema:       &llm.Schema{Type: llm.TypeObject, Required: []string{"signal"}},
	})
	if !strings.HasPrefix(got, "base") {
		t.Errorf("system prompt should keep the caller's text: %q", got)
	}
	if !strings.Contains(got, `"required":["signal"]`) {
		t.Errorf("system prompt should embed the schema: %q", got)
	}

	if systemPrompt(llm.ChatRequest{SystemPrompt: "plain"}) != "plain" {
		t.Error("plain requests should pass through unchanged")
	}
}
