package llm

import (
	"context"
	"encoding/json"
)

// Provider defines the interface for LLM providers
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest holds the request parameters
type ChatRequest struct {
	// Model overrides the provider's default model when set.
	Model        string
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float64
	JSONMode     bool
	// Schema constrains the reply to JSON of this shape. Implies JSONMode.
	Schema *Schema
}

// Message represents a chat message
type Message struct {
	Role    string // "user" or "assistant"
	Content string
	Images  []Image
}

// Image is an inline image attached to a message.
type Image struct {
	MIMEType string
	Data     []byte
}

// ChatResponse holds the response from the LLM
type ChatResponse struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage tracks token consumption
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Schema types.
const (
	TypeObject = "object"
	TypeArray  = "array"
	TypeString = "string"
)

// Schema is the subset of JSON Schema the providers understand. It marshals
// to a plain JSON Schema document.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// JSON returns s as a JSON Schema document.
func (s *Schema) JSON() json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		// Schema holds only strings, maps and slices.
		panic(err)
	}
	return b
}

// WantsJSON reports whether the reply must be JSON.
func (r ChatRequest) WantsJSON() bool {
	return r.JSONMode || r.Schema != nil
}
