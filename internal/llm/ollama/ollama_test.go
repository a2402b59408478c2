// internal/llm/ollama/ollama_test.go
package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lrchart/chartai/internal/llm"
)

func TestProvider_ImplementsInterface(t *testing.T) {
	var _ llm.Provider = (*Provider)(nil)
}

func TestNew_DefaultEndpoint(t *testing.T) {
	p, err := New("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.endpoint != "http://localhost:11434" {
		t.Errorf("expected default endpoint http://localhost:11434, got %s", p.endpoint)
	}
}

func TestNew_DefaultModel(t *testing.T) {
	p, err := New("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.model != "llava:13b" {
		t.Errorf("expected default model llava:13b, got %s", p.model)
	}
}

func TestNew_CustomValues(t *testing.T) {
	p, err := New("http://custom:8080", "llama3.2-vision")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.endpoint != "http://custom:8080" {
		t.Errorf("expected custom endpoint, got %s", p.endpoint)
	}
	if p.model != "llama3.2-vision" {
		t.Errorf("expected custom model, got %s", p.model)
	}
}

func TestChat_SendsImagesAndSchema(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system + user messages, got %+v", req.Messages)
		}
		if len(req.Messages[1].Images) != 1 || req.Messages[1].Images[0] != "cG5n" {
			t.Errorf("expected base64 image, got %v", req.Messages[1].Images)
		}
		var format map[string]any
		if err := json.Unmarshal(req.Format, &format); err != nil || format["type"] != "object" {
			t.Errorf("expected schema format, got %s", req.Format)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ollamaResponse{
			Message:         ollamaMessage{Role: "assistant", Content: `{"signal":"CALL","reason":"x"}`},
			Done:            true,
			DoneReason:      "stop",
			PromptEvalCount: 10,
			EvalCount:       5,
		})
	}))
	defer srv.Close()

	p, _ := New(srv.URL, "")
	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		SystemPrompt: "sys",
		Messages: []llm.Message{{
			Role:    "user",
			Content: "analyze",
			Images:  []llm.Image{{MIMEType: "image/png", Data: []byte("png")}},
		}},
		Schema: &llm.Schema{Type: llm.TypeObject},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != `{"signal":"CALL","reason":"x"}` {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 5 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
}

func TestChat_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _ := New(srv.URL, "")
	if _, err := p.Chat(context.Background(), llm.ChatRequest{}); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestRequest_JSONModeFormat(t *testing.T) {
	p, _ := New("", "")
	req := p.request(llm.ChatRequest{JSONMode: true})
	if string(req.Format) != `"json"` {
		t.Errorf("expected json format, got %s", req.Format)
	}
}
