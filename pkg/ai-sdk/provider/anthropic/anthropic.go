package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
)

const defaultMaxTokens = 4096

// Provider implements the LanguageModel interface for Anthropic Claude
type Provider struct {
	client anthropic.Client
	config Config
}

// Config holds Anthropic-specific configuration
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// New creates a new Anthropic provider
func New(apiKey, model string) *Provider {
	return NewWithConfig(Config{APIKey: apiKey, Model: model})
}

// NewWithConfig creates a new Anthropic provider with custom configuration
func NewWithConfig(config Config) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &Provider{
		client: anthropic.NewClient(opts...),
		config: config,
	}
}

// ID returns the model identifier
func (p *Provider) ID() string {
	return fmt.Sprintf("anthropic:%s", p.config.Model)
}

// Generate implements the Generate method of the LanguageModel interface
func (p *Provider) Generate(ctx context.Context, req provider.GenerateRequest) (*types.GenerateResponse, error) {
	msgReq := p.buildRequest(req)

	resp, err := p.client.Messages.New(ctx, msgReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	response := &types.GenerateResponse{
		Model:        string(resp.Model),
		FinishReason: string(resp.StopReason),
		Usage: types.Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}

	var textContent strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textContent.WriteString(block.Text)
		case "tool_use":
			args := make(map[string]any)
			if len(block.Input) > 0 {
				json.Unmarshal(block.Input, &args)
			}
			response.ToolCalls = append(response.ToolCalls, types.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}
	response.Content = textContent.String()

	return response, nil
}

// GenerateObject implements schema-constrained generation. Anthropic has no
// response_format, so the schema is presented as a forced tool and the tool
// input is returned as the object payload.
func (p *Provider) GenerateObject(ctx context.Context, req provider.ObjectRequest) (json.RawMessage, error) {
	msgReq := p.buildRequest(provider.GenerateRequest{
		Messages: req.Messages,
		System:   req.System,
	})

	inputSchema := anthropic.ToolInputSchemaParam{Type: "object"}
	if properties, ok := req.Schema["properties"]; ok {
		inputSchema.Properties = properties
	}
	if required, ok := req.Schema["required"].([]string); ok {
		inputSchema.Required = required
	}

	msgReq.Tools = []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        req.SchemaName,
				Description: anthropic.String("Record the structured result"),
				InputSchema: inputSchema,
			},
		},
	}
	msgReq.ToolChoice = anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: req.SchemaName},
	}

	resp, err := p.client.Messages.New(ctx, msgReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == req.SchemaName {
			return json.RawMessage(block.Input), nil
		}
	}

	return nil, types.ErrEmptyResponse
}

// Stream implements the Stream method of the LanguageModel interface
func (p *Provider) Stream(ctx context.Context, req provider.GenerateRequest) (<-chan types.StreamEvent, <-chan error) {
	eventChan := make(chan types.StreamEvent, 100)
	errChan := make(chan error, 1)

	go func() {
		defer close(eventChan)
		defer close(errChan)

		msgReq := p.buildRequest(req)
		stream := p.client.Messages.NewStreaming(ctx, msgReq)

		toolCallBuilders := make(map[int]*toolCallBuilder)
		var fullText string
		var totalUsage types.Usage
		streamStarted := false

		for stream.Next() {
			event := stream.Current()

			switch event.Type {
			case "message_start":
				if !streamStarted {
					eventChan <- types.NewStreamStartEvent(string(event.Message.Model), event.Message.ID)
					streamStarted = true
				}
				totalUsage.PromptTokens = int(event.Message.Usage.InputTokens)

			case "content_block_start":
				block := event.ContentBlock
				if block.Type == "tool_use" {
					toolCallBuilders[int(event.Index)] = &toolCallBuilder{
						id:   block.ID,
						name: block.Name,
					}
				}

			case "content_block_delta":
				switch event.Delta.Type {
				case "text_delta":
					fullText += event.Delta.Text
					eventChan <- types.NewTextDeltaEvent(event.Delta.Text)
				case "input_json_delta":
					if builder, exists := toolCallBuilders[int(event.Index)]; exists {
						builder.arguments += event.Delta.PartialJSON
					}
				}

			case "content_block_stop":
				if builder, exists := toolCallBuilders[int(event.Index)]; exists {
					args := make(map[string]any)
					if builder.arguments != "" {
						json.Unmarshal([]byte(builder.arguments), &args)
					}
					eventChan <- types.NewToolCallCompleteEvent(types.ToolCall{
						ID:        builder.id,
						Name:      builder.name,
						Arguments: args,
					})
				}

			case "message_delta":
				totalUsage.CompletionTokens = int(event.Usage.OutputTokens)
				totalUsage.TotalTokens = totalUsage.PromptTokens + totalUsage.CompletionTokens
				eventChan <- types.NewUsageEvent(totalUsage)

				if event.Delta.StopReason != "" {
					eventChan <- types.NewFinishReasonEvent(string(event.Delta.StopReason))
				}

			case "message_stop":
				if fullText != "" {
					eventChan <- types.NewTextCompleteEvent(fullText)
				}
				eventChan <- types.NewStreamEndEvent(types.FinishReasonStop, totalUsage)
			}
		}

		if err := stream.Err(); err != nil {
			errChan <- fmt.Errorf("anthropic stream error: %w", err)
		}
	}()

	return eventChan, errChan
}

type toolCallBuilder struct {
	id        string
	name      string
	arguments string
}

func (p *Provider) buildRequest(req provider.GenerateRequest) anthropic.MessageNewParams {
	messages, system := p.convertMessages(req.Messages, req.System)

	msgReq := anthropic.MessageNewParams{
		Model:    anthropic.Model(p.config.Model),
		Messages: messages,
	}

	if len(system) > 0 {
		msgReq.System = system
	}

	maxTokens := p.config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	msgReq.MaxTokens = int64(maxTokens)

	if req.Temperature > 0 {
		msgReq.Temperature = anthropic.Float(float64(req.Temperature))
	}

	if len(req.Tools) > 0 {
		msgReq.Tools = p.convertTools(req.Tools)
	}

	return msgReq
}

// convertMessages converts SDK messages to Anthropic format. System-role
// messages are folded into the system prompt since Anthropic has no system
// message role.
func (p *Provider) convertMessages(messages []types.Message, systemPrompt string) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	result := make([]anthropic.MessageParam, 0, len(messages))

	var systemTexts []string
	if systemPrompt != "" {
		systemTexts = append(systemTexts, systemPrompt)
	}

	for _, msg := range messages {
		if msg.Role == types.RoleSystem {
			systemTexts = append(systemTexts, msg.Content)
			continue
		}

		var contentBlocks []anthropic.ContentBlockParamUnion

		if msg.Content != "" {
			contentBlocks = append(contentBlocks, anthropic.NewTextBlock(msg.Content))
		}

		if msg.Role == types.RoleAssistant {
			for _, tc := range msg.ToolCalls {
				input := tc.Arguments
				if input == nil {
					input = make(map[string]any)
				}
				contentBlocks = append(contentBlocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
		}

		for _, tr := range msg.ToolResults {
			contentBlocks = append(contentBlocks, anthropic.NewToolResultBlock(tr.ToolCallID, tr.Content, tr.IsError))
		}

		role := anthropic.MessageParamRole(msg.Role)
		if msg.Role == types.RoleTool {
			role = anthropic.MessageParamRoleUser
		}

		if len(contentBlocks) > 0 {
			result = append(result, anthropic.MessageParam{
				Role:    role,
				Content: contentBlocks,
			})
		}
	}

	var system []anthropic.TextBlockParam
	if len(systemTexts) > 0 {
		system = []anthropic.TextBlockParam{
			{Text: strings.Join(systemTexts, "\n\n"), Type: "text"},
		}
	}

	return result, system
}

func (p *Provider) convertTools(tools []types.Tool) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{Type: "object"}

		if properties, ok := tool.Parameters["properties"]; ok {
			inputSchema.Properties = properties
		}
		if required, ok := tool.Parameters["required"].([]string); ok {
			inputSchema.Required = required
		}

		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: inputSchema,
			},
		}
	}

	return result
}
