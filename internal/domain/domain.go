package domain

import "time"

// AgentType identifies one of the specialized agents. RouterAgent is a
// classification label only, never a dispatch target.
type AgentType string

const (
	AgentTypeRouter  AgentType = "router"
	AgentTypeSupport AgentType = "support"
	AgentTypeOrder   AgentType = "order"
	AgentTypeBilling AgentType = "billing"
)

// Dispatchable reports whether messages can be routed to this agent type.
func (t AgentType) Dispatchable() bool {
	switch t {
	case AgentTypeSupport, AgentTypeOrder, AgentTypeBilling:
		return true
	}
	return false
}

// MessageRole is the author role of a stored conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is one immutable turn of a conversation.
type Message struct {
	ID             string      `json:"id" bson:"id"`
	ConversationID string      `json:"conversationId" bson:"conversation_id"`
	Role           MessageRole `json:"role" bson:"role"`
	Content        string      `json:"content" bson:"content"`
	AgentType      AgentType   `json:"agentType,omitempty" bson:"agent_type,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" bson:"created_at"`
}

// Conversation owns its messages; messages are chronological and never
// mutated after creation.
type Conversation struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"userId" bson:"user_id"`
	Messages  []Message `json:"messages" bson:"messages"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// RoutingDecision is the router's per-request classification. It is never
// persisted beyond the response headers of the request that produced it.
type RoutingDecision struct {
	Agent     AgentType `json:"agent"`
	Reasoning string    `json:"reasoning"`
}
