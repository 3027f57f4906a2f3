package types

import "time"

// Message represents a single turn in a generation request.
type Message struct {
	Role        MessageRole  `json:"role" bson:"role"`
	Content     string       `json:"content" bson:"content"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty" bson:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty" bson:"tool_results,omitempty"`
	Timestamp   time.Time    `json:"timestamp" bson:"timestamp"`
}

// MessageRole defines the role of a message sender
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
	RoleTool      MessageRole = "tool"
)

// ToolCall represents a tool call request from the LLM
type ToolCall struct {
	ID        string         `json:"id" bson:"id"`
	Name      string         `json:"name" bson:"name"`
	Arguments map[string]any `json:"arguments" bson:"arguments"`
}

// ToolResult represents the result of a tool call
type ToolResult struct {
	ToolCallID string `json:"tool_call_id" bson:"tool_call_id"`
	Content    string `json:"content" bson:"content"`
	IsError    bool   `json:"is_error,omitempty" bson:"is_error,omitempty"`
}

// Tool describes a function the model may call.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
