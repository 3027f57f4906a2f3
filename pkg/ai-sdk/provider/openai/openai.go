package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
	"github.com/sashabaranov/go-openai"
)

// Provider implements the LanguageModel interface for OpenAI and
// OpenAI-compatible endpoints (Groq, local gateways) via a base URL override.
type Provider struct {
	client *openai.Client

	RequestSettings RequestSettings
}

type RequestSettings struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Config holds provider construction options.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// New creates a new OpenAI provider
func New(apiKey, model string) *Provider {
	return NewWithConfig(Config{APIKey: apiKey, Model: model})
}

// NewWithConfig creates a provider with a custom configuration.
func NewWithConfig(config Config) *Provider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		RequestSettings: RequestSettings{
			Model: config.Model,
		},
	}
}

// ID returns the model identifier
func (p *Provider) ID() string {
	return fmt.Sprintf("openai:%s", p.RequestSettings.Model)
}

// Generate implements the Generate method of the LanguageModel interface
func (p *Provider) Generate(ctx context.Context, req provider.GenerateRequest) (*types.GenerateResponse, error) {
	chatReq := p.buildRequest(req)

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, types.ErrEmptyResponse
	}

	choice := resp.Choices[0]
	response := &types.GenerateResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Model:        resp.Model,
		Usage: types.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		response.ToolCalls = append(response.ToolCalls, types.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return response, nil
}

// GenerateObject implements schema-constrained generation via the
// json_schema response format.
func (p *Provider) GenerateObject(ctx context.Context, req provider.ObjectRequest) (json.RawMessage, error) {
	chatReq := p.buildRequest(provider.GenerateRequest{
		Messages: req.Messages,
		System:   req.System,
	})

	chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   req.SchemaName,
			Schema: rawSchema(req.Schema),
			Strict: true,
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, types.ErrEmptyResponse
	}

	return json.RawMessage(resp.Choices[0].Message.Content), nil
}

// Stream implements the Stream method of the LanguageModel interface
func (p *Provider) Stream(ctx context.Context, req provider.GenerateRequest) (<-chan types.StreamEvent, <-chan error) {
	eventChan := make(chan types.StreamEvent, 100)
	errChan := make(chan error, 1)

	go func() {
		defer close(eventChan)
		defer close(errChan)

		chatReq := p.buildRequest(req)
		chatReq.Stream = true
		chatReq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

		stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
		if err != nil {
			errChan <- fmt.Errorf("openai stream error: %w", err)
			return
		}
		defer stream.Close()

		toolCallsMap := make(map[int]*toolCallBuilder)
		var totalUsage types.Usage
		var fullText string
		streamStarted := false

		for {
			response, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				errChan <- fmt.Errorf("stream recv error: %w", err)
				return
			}

			if !streamStarted {
				eventChan <- types.NewStreamStartEvent(response.Model, response.ID)
				streamStarted = true
			}

			// Usage arrives in a trailing chunk with an empty choices array.
			if response.Usage != nil {
				totalUsage = types.Usage{
					PromptTokens:     response.Usage.PromptTokens,
					CompletionTokens: response.Usage.CompletionTokens,
					TotalTokens:      response.Usage.TotalTokens,
				}
				eventChan <- types.NewUsageEvent(totalUsage)
			}

			if len(response.Choices) == 0 {
				continue
			}

			choice := response.Choices[0]
			delta := choice.Delta

			if delta.Content != "" {
				fullText += delta.Content
				eventChan <- types.NewTextDeltaEvent(delta.Content)
			}

			for _, tc := range delta.ToolCalls {
				if tc.Index == nil {
					continue
				}
				index := *tc.Index
				if _, exists := toolCallsMap[index]; !exists {
					toolCallsMap[index] = &toolCallBuilder{
						id:   tc.ID,
						name: tc.Function.Name,
					}
				}
				if tc.Function.Arguments != "" {
					toolCallsMap[index].arguments += tc.Function.Arguments
				}
			}

			if choice.FinishReason != "" {
				eventChan <- types.NewFinishReasonEvent(string(choice.FinishReason))
			}
		}

		if fullText != "" {
			eventChan <- types.NewTextCompleteEvent(fullText)
		}

		for index := 0; index < len(toolCallsMap); index++ {
			builder, exists := toolCallsMap[index]
			if !exists {
				continue
			}
			var args map[string]any
			if builder.arguments != "" {
				json.Unmarshal([]byte(builder.arguments), &args)
			}
			eventChan <- types.NewToolCallCompleteEvent(types.ToolCall{
				ID:        builder.id,
				Name:      builder.name,
				Arguments: args,
			})
		}

		eventChan <- types.NewStreamEndEvent(types.FinishReasonStop, totalUsage)
	}()

	return eventChan, errChan
}

type toolCallBuilder struct {
	id        string
	name      string
	arguments string
}

// rawSchema adapts a schema map to the json.Marshaler the client expects.
type rawSchema map[string]any

func (s rawSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(s))
}

func (p *Provider) buildRequest(req provider.GenerateRequest) openai.ChatCompletionRequest {
	chatReq := openai.ChatCompletionRequest{
		Model:       p.RequestSettings.Model,
		Messages:    p.convertMessages(req.Messages, req.System),
		Tools:       p.convertTools(req.Tools),
		Temperature: p.RequestSettings.Temperature,
	}

	if req.Temperature > 0 {
		chatReq.Temperature = req.Temperature
	}

	maxTokens := p.RequestSettings.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		chatReq.MaxTokens = maxTokens
	}

	return chatReq
}

func (p *Provider) convertMessages(messages []types.Message, system string) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages)+1)

	if system != "" {
		result = append(result, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	for _, msg := range messages {
		switch msg.Role {
		case types.RoleTool:
			for _, tr := range msg.ToolResults {
				result = append(result, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    tr.Content,
					ToolCallID: tr.ToolCallID,
				})
			}
		case types.RoleAssistant:
			oaiMsg := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			for _, tc := range msg.ToolCalls {
				argsJSON, _ := json.Marshal(tc.Arguments)
				oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(argsJSON),
					},
				})
			}
			result = append(result, oaiMsg)
		default:
			result = append(result, openai.ChatCompletionMessage{
				Role:    string(msg.Role),
				Content: msg.Content,
			})
		}
	}

	return result
}

func (p *Provider) convertTools(tools []types.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}

	result := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	return result
}
