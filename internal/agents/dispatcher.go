package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/agentdesk/agentdesk/internal/domain"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/agent"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/tool"
	aitypes "github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
)

// handlerContextWindow is how many trailing compacted-history entries a
// specialized agent sees.
const handlerContextWindow = 10

// Step budgets reflect expected interaction depth: support rarely chains
// tools, order and billing may look up several records per turn.
const (
	supportMaxSteps = 3
	orderMaxSteps   = 5
	billingMaxSteps = 5
)

// Dispatcher maps a routed agent type to its prompt/tool pairing and starts
// the generation run. It returns the token stream unmodified; stream
// consumption and persistence belong to the caller.
type Dispatcher struct {
	model provider.LanguageModel

	supportTools []tool.Tool
	orderTools   []tool.Tool
	billingTools []tool.Tool
}

type DispatcherDependencies struct {
	Model        provider.LanguageModel
	SupportTools []tool.Tool
	OrderTools   []tool.Tool
	BillingTools []tool.Tool
}

func NewDispatcher(deps DispatcherDependencies) *Dispatcher {
	return &Dispatcher{
		model:        deps.Model,
		supportTools: deps.SupportTools,
		orderTools:   deps.OrderTools,
		billingTools: deps.BillingTools,
	}
}

// handlerSpec is one variant of the closed dispatch table.
type handlerSpec struct {
	prompt       string
	tools        []tool.Tool
	maxSteps     int
	injectUserID bool
}

func (d *Dispatcher) handlerFor(agentType domain.AgentType) (handlerSpec, error) {
	switch agentType {
	case domain.AgentTypeSupport:
		return handlerSpec{
			prompt:   supportSystemPrompt,
			tools:    d.supportTools,
			maxSteps: supportMaxSteps,
		}, nil
	case domain.AgentTypeOrder:
		return handlerSpec{
			prompt:       orderSystemPrompt,
			tools:        d.orderTools,
			maxSteps:     orderMaxSteps,
			injectUserID: true,
		}, nil
	case domain.AgentTypeBilling:
		return handlerSpec{
			prompt:       billingSystemPrompt,
			tools:        d.billingTools,
			maxSteps:     billingMaxSteps,
			injectUserID: true,
		}, nil
	default:
		return handlerSpec{}, domain.Errorf(domain.KindGeneration, "agent type %q is not dispatchable", agentType)
	}
}

// Dispatch starts the agent run for the chosen type over the compacted
// history and returns its event stream. For order and billing agents the
// caller's user id is injected into the message so tool calls can scope
// lookups without the model inventing an id.
func (d *Dispatcher) Dispatch(ctx context.Context, agentType domain.AgentType, message string, compactedHistory []domain.Message, userID string) (agent.Stream, error) {
	spec, err := d.handlerFor(agentType)
	if err != nil {
		return agent.Stream{}, err
	}

	prompt := message
	if spec.injectUserID {
		prompt = fmt.Sprintf("User ID: %s\n\nUser message: %s", userID, message)
	}

	messages := handlerContext(compactedHistory)
	messages = append(messages, aitypes.Message{
		Role:      aitypes.RoleUser,
		Content:   prompt,
		Timestamp: time.Now(),
	})

	runner, err := agent.New(
		agent.WithModel(d.model),
		agent.WithSystemPrompt(spec.prompt),
		agent.WithTools(spec.tools...),
		agent.WithMaxSteps(spec.maxSteps),
	)
	if err != nil {
		return agent.Stream{}, domain.E(domain.KindGeneration, err)
	}

	stream, err := runner.Run(ctx, messages)
	if err != nil {
		return agent.Stream{}, domain.E(domain.KindGeneration, err)
	}

	return stream, nil
}

// handlerContext converts the trailing window of compacted history into
// provider messages. The synthetic summary keeps its system role so the
// model receives it as context rather than dialogue.
func handlerContext(history []domain.Message) []aitypes.Message {
	start := len(history) - handlerContextWindow
	if start < 0 {
		start = 0
	}

	window := history[start:]
	messages := make([]aitypes.Message, 0, len(window)+1)

	for _, msg := range window {
		messages = append(messages, aitypes.Message{
			Role:      aitypes.MessageRole(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
		})
	}

	return messages
}
