package memory

import (
	"context"
	"encoding/json"
	"sync"

	"exam-session-service/internal/domain"
)

// ProgressStore keeps serialized attempt state in memory. States are stored
// encoded so callers never share maps with the live attempt.
type ProgressStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{states: make(map[string][]byte)}
}

func (s *ProgressStore) Save(_ context.Context, state *domain.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.states[state.SessionID] = data
	s.mu.Unlock()
	return nil
}

func (s *ProgressStore) Load(_ context.Context, sessionID string) (*domain.SessionState, error) {
	s.mu.RLock()
	data, ok := s.states[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *ProgressStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.states, sessionID)
	s.mu.Unlock()
	return nil
}
