package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/agentdesk/agentdesk/internal/domain"
)

// InMemoryConversationStore is the default backend for development and
// tests. Safe for concurrent use.
type InMemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
}

func NewInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		conversations: make(map[string]*domain.Conversation),
	}
}

func (s *InMemoryConversationStore) GetOrCreateConversation(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if conv, ok := s.conversations[id]; ok {
			return copyConversation(conv), nil
		}
	}

	now := time.Now()
	conv := &domain.Conversation{
		ID:        xid.New().String(),
		UserID:    userID,
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[conv.ID] = conv

	return copyConversation(conv), nil
}

func (s *InMemoryConversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound))
	}

	return copyConversation(conv), nil
}

func (s *InMemoryConversationStore) CreateMessage(ctx context.Context, conversationID string, role domain.MessageRole, content string, agentType domain.AgentType) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return domain.Message{}, domain.E(domain.KindNotFound, fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound))
	}

	now := time.Now()
	msg := domain.Message{
		ID:             xid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		AgentType:      agentType,
		CreatedAt:      now,
	}

	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = now

	return msg, nil
}

func (s *InMemoryConversationStore) ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Conversation
	for _, conv := range s.conversations {
		if conv.UserID == userID {
			result = append(result, copyConversation(conv))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	if len(result) > listConversationsLimit {
		result = result[:listConversationsLimit]
	}

	return result, nil
}

func (s *InMemoryConversationStore) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return domain.E(domain.KindNotFound, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound))
	}

	delete(s.conversations, id)

	return nil
}

func (s *InMemoryConversationStore) Ping(ctx context.Context) error {
	return nil
}

func copyConversation(conv *domain.Conversation) *domain.Conversation {
	dup := *conv
	dup.Messages = append([]domain.Message{}, conv.Messages...)
	return &dup
}
