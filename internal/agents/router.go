package agents

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/agentdesk/agentdesk/internal/domain"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	aitypes "github.com/agentdesk/agentdesk/pkg/ai-sdk/types"
)

// routingContextWindow is how many trailing history entries the router sees.
const routingContextWindow = 5

var routingSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"agent": map[string]any{
			"type":        "string",
			"enum":        []string{"support", "order", "billing"},
			"description": "The agent type to route to",
		},
		"reasoning": map[string]any{
			"type":        "string",
			"description": "Brief explanation of why this agent was chosen",
		},
	},
	"required":             []string{"agent", "reasoning"},
	"additionalProperties": false,
}

// Router classifies an inbound message into exactly one dispatchable agent
// type. Classification is delegated entirely to the model; there is no
// retry and no local fallback, so a provider failure surfaces as a
// routing failure for the caller to handle.
type Router struct {
	model provider.LanguageModel
}

func NewRouter(model provider.LanguageModel) *Router {
	return &Router{model: model}
}

// Route returns the chosen agent and the model's reasoning for the given
// message in the context of the most recent history.
func (r *Router) Route(ctx context.Context, message string, history []domain.Message) (domain.RoutingDecision, error) {
	messages := routingContext(history)
	messages = append(messages, aitypes.Message{
		Role:    aitypes.RoleUser,
		Content: message,
	})

	raw, err := r.model.GenerateObject(ctx, provider.ObjectRequest{
		Messages:   messages,
		System:     routerSystemPrompt,
		SchemaName: "routing_decision",
		Schema:     routingSchema,
	})
	if err != nil {
		return domain.RoutingDecision{}, domain.E(domain.KindRouting, err)
	}

	var decision domain.RoutingDecision
	if err := json.Unmarshal(raw, &decision); err != nil {
		return domain.RoutingDecision{}, domain.Errorf(domain.KindRouting, "malformed routing output: %w", err)
	}

	if !decision.Agent.Dispatchable() {
		return domain.RoutingDecision{}, domain.Errorf(domain.KindRouting, "router selected unknown agent %q", decision.Agent)
	}

	log.Debug().
		Str("agent", string(decision.Agent)).
		Str("reasoning", decision.Reasoning).
		Msg("Message routed")

	return decision, nil
}

// routingContext reduces history to the trailing window of plain
// user/assistant turns. System entries (including compaction summaries) are
// dropped for the classification call.
func routingContext(history []domain.Message) []aitypes.Message {
	start := len(history) - routingContextWindow
	if start < 0 {
		start = 0
	}

	window := history[start:]
	messages := make([]aitypes.Message, 0, len(window)+1)

	for _, msg := range window {
		if msg.Role == domain.RoleSystem {
			continue
		}

		role := aitypes.RoleUser
		if msg.Role == domain.RoleAssistant {
			role = aitypes.RoleAssistant
		}

		messages = append(messages, aitypes.Message{
			Role:    role,
			Content: msg.Content,
		})
	}

	return messages
}
