package redis

import (
	"context"
	"sync"
	"time"

	"exam-session-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Sessions own timers and locks, so they stay in a local map;
// Redis only carries a liveness marker per session so other instances can see
// which node holds an attempt.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	node   string

	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration, node string) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		node:     node,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), s.node, s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// Owner returns the node holding a live session, if any.
func (s *SessionStore) Owner(ctx context.Context, sessionID string) (string, bool) {
	node, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		return "", false
	}
	return node, true
}

func (s *SessionStore) key(sessionID string) string {
	return "exam:session:" + sessionID
}
