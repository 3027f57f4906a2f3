package storage

import (
	"context"

	"github.com/agentdesk/agentdesk/internal/domain"
)

// listConversationsLimit bounds ListConversations results.
const listConversationsLimit = 20

// ConversationStore persists conversations and their messages. Message
// timestamps are assigned by the store at write time; they are the only
// ordering signal across concurrent writers.
type ConversationStore interface {
	// GetOrCreateConversation returns the conversation with the given id,
	// or creates a fresh one for the user when id is empty or unknown.
	GetOrCreateConversation(ctx context.Context, id, userID string) (*domain.Conversation, error)

	// GetConversation returns a conversation by id, or a not-found error.
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// CreateMessage appends an immutable message to a conversation.
	CreateMessage(ctx context.Context, conversationID string, role domain.MessageRole, content string, agentType domain.AgentType) (domain.Message, error)

	// ListConversations returns the user's conversations, most recently
	// updated first, bounded to a fixed count.
	ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error)

	// DeleteConversation removes a conversation and all of its messages.
	DeleteConversation(ctx context.Context, id string) error

	// Ping reports backend reachability for health checks.
	Ping(ctx context.Context) error
}
