package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentdesk/agentdesk/internal/domain"
)

// InMemoryStore keeps workflow state in process memory. Entries stay until
// deleted or the process exits; suitable for single-node deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]State)}
}

func (s *InMemoryStore) Get(ctx context.Context, id string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[id]
	if !ok {
		return State{}, domain.E(domain.KindNotFound, fmt.Errorf("workflow %s: %w", id, domain.ErrNotFound))
	}

	return state, nil
}

func (s *InMemoryStore) Set(ctx context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ID] = state
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
	return nil
}

func (s *InMemoryStore) ListActive(ctx context.Context) ([]State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []State
	for _, state := range s.states {
		if state.Status.Active() {
			active = append(active, state)
		}
	}

	return active, nil
}
