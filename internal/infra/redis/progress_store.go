package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"exam-session-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ProgressStore persists attempt state as JSON under exam:progress:{sessionID}.
// The TTL bounds how long an abandoned tab can be resumed.
type ProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressStore(client *redis.Client, ttl time.Duration) *ProgressStore {
	return &ProgressStore{client: client, ttl: ttl}
}

func (s *ProgressStore) Save(ctx context.Context, state *domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(state.SessionID), data, s.ttl).Err()
}

func (s *ProgressStore) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *ProgressStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *ProgressStore) key(sessionID string) string {
	return "exam:progress:" + sessionID
}
