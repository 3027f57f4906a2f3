package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentdesk/agentdesk/internal/domain"
)

const (
	redisKeyPrefix = "workflow:"
	redisEntryTTL  = time.Hour
	redisScanCount = 100
)

// RedisStore keeps workflow state in Redis so status queries work across
// instances. Entries expire after an hour; finished workflows are not worth
// keeping longer.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, id string) (State, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, domain.E(domain.KindNotFound, fmt.Errorf("workflow %s: %w", id, domain.ErrNotFound))
	}
	if err != nil {
		return State{}, domain.E(domain.KindPersistence, fmt.Errorf("failed to load workflow state: %w", err))
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, domain.E(domain.KindPersistence, fmt.Errorf("failed to decode workflow state: %w", err))
	}

	return state, nil
}

func (s *RedisStore) Set(ctx context.Context, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return domain.E(domain.KindPersistence, fmt.Errorf("failed to encode workflow state: %w", err))
	}

	if err := s.client.Set(ctx, redisKeyPrefix+state.ID, data, redisEntryTTL).Err(); err != nil {
		return domain.E(domain.KindPersistence, fmt.Errorf("failed to store workflow state: %w", err))
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return domain.E(domain.KindPersistence, fmt.Errorf("failed to delete workflow state: %w", err))
	}

	return nil
}

func (s *RedisStore) ListActive(ctx context.Context) ([]State, error) {
	var active []State

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, domain.E(domain.KindPersistence, fmt.Errorf("failed to load workflow state: %w", err))
		}

		var state State
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, domain.E(domain.KindPersistence, fmt.Errorf("failed to decode workflow state: %w", err))
		}

		if state.Status.Active() {
			active = append(active, state)
		}
	}

	if err := iter.Err(); err != nil {
		return nil, domain.E(domain.KindPersistence, fmt.Errorf("failed to scan workflow states: %w", err))
	}

	return active, nil
}
