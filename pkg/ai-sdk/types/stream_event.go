package types

import "time"

// StreamEvent is the base interface for all streaming events
type StreamEvent interface {
	GetType() StreamEventType
	GetTimestamp() time.Time
}

// StreamEventType identifies the type of streaming event
type StreamEventType string

const (
	// Lifecycle events
	EventTypeStreamStart StreamEventType = "stream-start"
	EventTypeStreamEnd   StreamEventType = "stream-end"
	EventTypeStreamError StreamEventType = "stream-error"

	// Content events
	EventTypeTextDelta    StreamEventType = "text-delta"
	EventTypeTextComplete StreamEventType = "text-complete"

	// Tool events
	EventTypeToolCallComplete      StreamEventType = "tool-call-complete"
	EventTypeToolExecutionStart    StreamEventType = "tool-execution-start"
	EventTypeToolExecutionComplete StreamEventType = "tool-execution-complete"

	// Metadata events
	EventTypeUsage        StreamEventType = "usage"
	EventTypeFinishReason StreamEventType = "finish-reason"

	// Agent-specific events
	EventTypeAgentStepStart    StreamEventType = "agent-step-start"
	EventTypeAgentStepComplete StreamEventType = "agent-step-complete"
	EventTypeAgentEnded        StreamEventType = "agent-ended"
)

type baseEvent struct {
	eventType StreamEventType
	timestamp time.Time
}

func (e *baseEvent) GetType() StreamEventType {
	return e.eventType
}

func (e *baseEvent) GetTimestamp() time.Time {
	return e.timestamp
}

func newBaseEvent(eventType StreamEventType) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// StreamStartEvent signals the beginning of a provider stream
type StreamStartEvent struct {
	baseEvent
	Model     string `json:"model"`
	RequestID string `json:"request_id,omitempty"`
}

// StreamEndEvent signals the end of a provider stream with final metadata
type StreamEndEvent struct {
	baseEvent
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

// StreamErrorEvent represents an error during streaming
type StreamErrorEvent struct {
	baseEvent
	Err     error  `json:"-"`
	Message string `json:"message"`
}

// TextDeltaEvent contains an incremental text chunk
type TextDeltaEvent struct {
	baseEvent
	Delta string `json:"delta"`
}

// TextCompleteEvent signals that text generation is complete
type TextCompleteEvent struct {
	baseEvent
	FullText string `json:"full_text"`
}

// ToolCallCompleteEvent signals a tool call is complete with full arguments
type ToolCallCompleteEvent struct {
	baseEvent
	ToolCall ToolCall `json:"tool_call"`
}

// ToolExecutionStartEvent signals the start of local tool execution
type ToolExecutionStartEvent struct {
	baseEvent
	ToolCall ToolCall `json:"tool_call"`
}

// ToolExecutionCompleteEvent signals completion of local tool execution
type ToolExecutionCompleteEvent struct {
	baseEvent
	ToolCall   ToolCall   `json:"tool_call"`
	ToolResult ToolResult `json:"tool_result"`
}

// UsageEvent contains token usage information
type UsageEvent struct {
	baseEvent
	Usage Usage `json:"usage"`
}

// FinishReasonEvent indicates why generation stopped
type FinishReasonEvent struct {
	baseEvent
	Reason string `json:"reason"`
}

// AgentStepStartEvent signals the start of an agent iteration
type AgentStepStartEvent struct {
	baseEvent
	StepNumber int `json:"step_number"`
}

// AgentStepCompleteEvent signals completion of an agent iteration
type AgentStepCompleteEvent struct {
	baseEvent
	StepNumber   int          `json:"step_number"`
	Content      string       `json:"content"`
	ToolCalls    []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults  []ToolResult `json:"tool_results,omitempty"`
	FinishReason string       `json:"finish_reason"`
}

// AgentEndedEvent is the final event of an agent run
type AgentEndedEvent struct {
	baseEvent
	Usage        Usage  `json:"usage"`
	FinishReason string `json:"finish_reason"`
}

func NewStreamStartEvent(model, requestID string) *StreamStartEvent {
	return &StreamStartEvent{
		baseEvent: newBaseEvent(EventTypeStreamStart),
		Model:     model,
		RequestID: requestID,
	}
}

func NewStreamEndEvent(finishReason string, usage Usage) *StreamEndEvent {
	return &StreamEndEvent{
		baseEvent:    newBaseEvent(EventTypeStreamEnd),
		FinishReason: finishReason,
		Usage:        usage,
	}
}

func NewStreamErrorEvent(err error) *StreamErrorEvent {
	return &StreamErrorEvent{
		baseEvent: newBaseEvent(EventTypeStreamError),
		Err:       err,
		Message:   err.Error(),
	}
}

func NewTextDeltaEvent(delta string) *TextDeltaEvent {
	return &TextDeltaEvent{
		baseEvent: newBaseEvent(EventTypeTextDelta),
		Delta:     delta,
	}
}

func NewTextCompleteEvent(fullText string) *TextCompleteEvent {
	return &TextCompleteEvent{
		baseEvent: newBaseEvent(EventTypeTextComplete),
		FullText:  fullText,
	}
}

func NewToolCallCompleteEvent(toolCall ToolCall) *ToolCallCompleteEvent {
	return &ToolCallCompleteEvent{
		baseEvent: newBaseEvent(EventTypeToolCallComplete),
		ToolCall:  toolCall,
	}
}

func NewToolExecutionStartEvent(toolCall ToolCall) *ToolExecutionStartEvent {
	return &ToolExecutionStartEvent{
		baseEvent: newBaseEvent(EventTypeToolExecutionStart),
		ToolCall:  toolCall,
	}
}

func NewToolExecutionCompleteEvent(toolCall ToolCall, toolResult ToolResult) *ToolExecutionCompleteEvent {
	return &ToolExecutionCompleteEvent{
		baseEvent:  newBaseEvent(EventTypeToolExecutionComplete),
		ToolCall:   toolCall,
		ToolResult: toolResult,
	}
}

func NewUsageEvent(usage Usage) *UsageEvent {
	return &UsageEvent{
		baseEvent: newBaseEvent(EventTypeUsage),
		Usage:     usage,
	}
}

func NewFinishReasonEvent(reason string) *FinishReasonEvent {
	return &FinishReasonEvent{
		baseEvent: newBaseEvent(EventTypeFinishReason),
		Reason:    reason,
	}
}

func NewAgentStepStartEvent(stepNumber int) *AgentStepStartEvent {
	return &AgentStepStartEvent{
		baseEvent:  newBaseEvent(EventTypeAgentStepStart),
		StepNumber: stepNumber,
	}
}

func NewAgentStepCompleteEvent(stepNumber int, content string, toolCalls []ToolCall, toolResults []ToolResult, finishReason string) *AgentStepCompleteEvent {
	return &AgentStepCompleteEvent{
		baseEvent:    newBaseEvent(EventTypeAgentStepComplete),
		StepNumber:   stepNumber,
		Content:      content,
		ToolCalls:    toolCalls,
		ToolResults:  toolResults,
		FinishReason: finishReason,
	}
}

func NewAgentEndedEvent(usage Usage, finishReason string) *AgentEndedEvent {
	return &AgentEndedEvent{
		baseEvent:    newBaseEvent(EventTypeAgentEnded),
		Usage:        usage,
		FinishReason: finishReason,
	}
}
