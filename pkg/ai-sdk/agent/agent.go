package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/tool"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
)

// Agent runs a tool-calling generation loop against a language model.
// Each Run walks up to MaxSteps provider calls, executing tool calls between
// steps and feeding results back, and emits every stream event it sees.
type Agent struct {
	MaxSteps     int
	Tools        []tool.Tool
	SystemPrompt string
	Model        provider.LanguageModel

	messages          []types.Message
	steps             []*Step
	currentStepNumber int

	TotalUsage   types.Usage
	FinishReason string

	eventChan chan types.StreamEvent
	doneChan  chan struct{}

	mu  sync.RWMutex
	err error
}

// Step records one provider round trip within a run.
type Step struct {
	StepNumber   int                `json:"step_number"`
	Content      string             `json:"content"`
	ToolCalls    []types.ToolCall   `json:"tool_calls"`
	ToolResults  []types.ToolResult `json:"tool_results"`
	Usage        types.Usage        `json:"usage"`
	FinishReason string             `json:"finish_reason"`
}

func New(opts ...Option) (*Agent, error) {
	agent := &Agent{
		eventChan: make(chan types.StreamEvent),
		doneChan:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(agent)
	}

	if agent.Model == nil {
		return nil, errors.New("model is required")
	}

	if agent.MaxSteps <= 0 {
		agent.MaxSteps = 10
	}

	return agent, nil
}

// Stream is a lazy sequence of events from a running agent. Events is closed
// when the run finishes; Err reports the terminal error, if any.
type Stream struct {
	Events <-chan types.StreamEvent
	done   <-chan struct{}

	errFn func() error
}

func (s Stream) Err() error {
	return s.errFn()
}

func (s Stream) Wait() error {
	<-s.done
	return s.Err()
}

// Run starts the generation loop over the given conversation. The returned
// Stream yields events as they arrive; cancelling ctx stops the underlying
// provider call and terminates the run.
func (a *Agent) Run(ctx context.Context, messages []types.Message) (Stream, error) {
	a.messages = append([]types.Message{}, messages...)

	go func() {
		defer a.cleanup()

		defer func() {
			finishReason := a.FinishReason
			if finishReason == "" {
				finishReason = types.FinishReasonStop
			}
			a.emit(ctx, types.NewAgentEndedEvent(a.TotalUsage, finishReason))
		}()

		for a.currentStepNumber < a.MaxSteps {
			if ctx.Err() != nil {
				a.onError(ctx, ctx.Err())
				return
			}

			a.currentStepNumber++
			step := a.createStep(a.currentStepNumber)

			a.emit(ctx, types.NewAgentStepStartEvent(a.currentStepNumber))

			tools := make([]types.Tool, 0, len(a.Tools))
			for _, t := range a.Tools {
				tools = append(tools, tool.ToTypesTool(t))
			}

			genReq := provider.GenerateRequest{
				Messages: a.messages,
				System:   a.SystemPrompt,
				Tools:    tools,
			}

			eventChan, errChan := a.Model.Stream(ctx, genReq)

			for event := range eventChan {
				a.onEvent(ctx, step, event)
			}

			if err := <-errChan; err != nil {
				a.onError(ctx, err)
				return
			}

			a.messages = append(a.messages, types.Message{
				Role:      types.RoleAssistant,
				Content:   step.Content,
				ToolCalls: step.ToolCalls,
				Timestamp: time.Now(),
			})

			if len(step.ToolCalls) == 0 {
				break
			}

			if err := a.handleToolCalls(ctx, step); err != nil {
				a.onError(ctx, err)
				return
			}

			a.emit(ctx, types.NewAgentStepCompleteEvent(
				step.StepNumber,
				step.Content,
				step.ToolCalls,
				step.ToolResults,
				step.FinishReason,
			))
		}

		a.FinishReason = types.FinishReasonStop
	}()

	return Stream{
		Events: a.eventChan,
		done:   a.doneChan,
		errFn:  a.getError,
	}, nil
}

func (a *Agent) onEvent(ctx context.Context, step *Step, event types.StreamEvent) {
	a.emit(ctx, event)

	switch e := event.(type) {
	case *types.TextDeltaEvent:
		step.Content += e.Delta
	case *types.ToolCallCompleteEvent:
		step.ToolCalls = append(step.ToolCalls, e.ToolCall)
	case *types.UsageEvent:
		step.Usage = e.Usage
		a.TotalUsage = a.TotalUsage.Add(e.Usage)
	case *types.FinishReasonEvent:
		step.FinishReason = e.Reason
	}
}

func (a *Agent) handleToolCalls(ctx context.Context, step *Step) error {
	toolResults := make([]types.ToolResult, 0, len(step.ToolCalls))

	for _, toolCall := range step.ToolCalls {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		result, err := a.executeToolCall(ctx, toolCall)
		if err != nil {
			return err
		}

		toolResults = append(toolResults, result)
	}

	step.ToolResults = toolResults

	a.messages = append(a.messages, types.Message{
		Role:        types.RoleTool,
		ToolResults: toolResults,
		Timestamp:   time.Now(),
	})

	return nil
}

func (a *Agent) executeToolCall(ctx context.Context, toolCall types.ToolCall) (types.ToolResult, error) {
	a.emit(ctx, types.NewToolExecutionStartEvent(toolCall))

	t, exists := a.getTool(toolCall.Name)
	if !exists {
		return types.ToolResult{}, fmt.Errorf("%w: %s", types.ErrToolNotFound, toolCall.Name)
	}

	argsJSON, err := marshalArguments(toolCall.Arguments)
	if err != nil {
		return types.ToolResult{}, fmt.Errorf("failed to marshal tool call arguments: %w", err)
	}

	content, err := t.Execute(ctx, argsJSON)

	result := types.ToolResult{
		ToolCallID: toolCall.ID,
		Content:    content,
		IsError:    err != nil,
	}

	// Tool failures are reported back to the model rather than aborting the
	// run; the model decides how to proceed.
	if err != nil {
		result.Content = fmt.Sprintf("Error: %v", err)
	}

	a.emit(ctx, types.NewToolExecutionCompleteEvent(toolCall, result))

	return result, nil
}

func (a *Agent) getTool(name string) (tool.Tool, bool) {
	for _, t := range a.Tools {
		if t.Name() == name {
			return t, true
		}
	}

	return nil, false
}

func (a *Agent) createStep(stepNumber int) *Step {
	step := &Step{
		StepNumber:  stepNumber,
		ToolCalls:   []types.ToolCall{},
		ToolResults: []types.ToolResult{},
	}

	a.steps = append(a.steps, step)

	return step
}

func (a *Agent) GetSteps() []*Step {
	return a.steps
}

// emit delivers an event unless the consumer is gone.
func (a *Agent) emit(ctx context.Context, event types.StreamEvent) {
	select {
	case a.eventChan <- event:
	case <-ctx.Done():
	}
}

func (a *Agent) onError(ctx context.Context, err error) {
	a.setError(err)
	a.FinishReason = types.FinishReasonError
	a.emit(ctx, types.NewStreamErrorEvent(err))
}

func (a *Agent) setError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

func (a *Agent) getError() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

func (a *Agent) cleanup() {
	close(a.eventChan)
	close(a.doneChan)
}
