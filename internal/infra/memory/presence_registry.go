package memory

import (
	"context"
	"sync"
	"time"

	"exam-session-service/internal/app"
	"exam-session-service/internal/domain"
)

// PresenceRegistry is an in-process presence registry. One mutex guards
// both heartbeat writes and the evict-filter-dedup read.
type PresenceRegistry struct {
	ttl   domain.PresenceTTL
	clock func() time.Time

	mu      sync.Mutex
	records map[string]domain.PresenceRecord
}

func NewPresenceRegistry(ttl domain.PresenceTTL) *PresenceRegistry {
	return NewPresenceRegistryWithClock(ttl, time.Now)
}

// NewPresenceRegistryWithClock allows deterministic ages in tests.
func NewPresenceRegistryWithClock(ttl domain.PresenceTTL, now func() time.Time) *PresenceRegistry {
	return &PresenceRegistry{
		ttl:     ttl,
		clock:   now,
		records: make(map[string]domain.PresenceRecord),
	}
}

func (r *PresenceRegistry) Upsert(_ context.Context, hb domain.Heartbeat) (domain.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := app.ApplyHeartbeat(hb, r.clock())
	if err != nil {
		return domain.PresenceRecord{}, err
	}
	r.records[rec.Key] = rec
	return rec, nil
}

func (r *PresenceRegistry) Query(_ context.Context, testID string) ([]domain.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	live := make([]domain.PresenceRecord, 0, len(r.records))
	for key, rec := range r.records {
		if app.Expired(rec, r.ttl, now) {
			delete(r.records, key)
			continue
		}
		live = append(live, rec)
	}
	return app.SelectLive(live, testID), nil
}

func (r *PresenceRegistry) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.records, key)
	r.mu.Unlock()
	return nil
}

func (r *PresenceRegistry) DeleteAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, rec := range r.records {
		if rec.UserID == userID {
			delete(r.records, key)
		}
	}
	return nil
}
