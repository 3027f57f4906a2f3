package provider

import (
	"context"
	"encoding/json"

	"github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
)

// LanguageModel defines the interface that all LLM providers must implement
type LanguageModel interface {
	// Generate produces a complete response (blocking)
	Generate(ctx context.Context, req GenerateRequest) (*types.GenerateResponse, error)

	// Stream produces a streaming response via channel. The event channel is
	// closed when the stream ends; at most one error is sent on the error
	// channel before both are closed.
	Stream(ctx context.Context, req GenerateRequest) (<-chan types.StreamEvent, <-chan error)

	// GenerateObject produces a response constrained to the given JSON
	// schema and returns the raw JSON payload.
	GenerateObject(ctx context.Context, req ObjectRequest) (json.RawMessage, error)

	// ID returns the unique identifier for this model
	ID() string
}

// GenerateRequest contains all parameters for generating text
type GenerateRequest struct {
	// Messages is the conversation history
	Messages []types.Message `json:"messages"`

	// System is an optional system prompt
	System string `json:"system,omitempty"`

	// Tools is a list of tools available to the model
	Tools []types.Tool `json:"tools,omitempty"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float32 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate
	MaxTokens int `json:"max_tokens,omitempty"`
}

// ObjectRequest asks the model for output matching a JSON schema.
type ObjectRequest struct {
	Messages []types.Message `json:"messages"`
	System   string          `json:"system,omitempty"`

	// SchemaName labels the schema for providers that require a name.
	SchemaName string `json:"schema_name"`

	// Schema is a JSON-schema object describing the expected output.
	Schema map[string]any `json:"schema"`
}
