package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"exam-session-service/internal/app"
	"exam-session-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const presenceKey = "presence:records"

// PresenceRegistry keeps presence records in one Redis hash (key -> JSON).
// Expiry depends on each record's status, so it is enforced on read rather
// than with key TTLs.
type PresenceRegistry struct {
	client *redis.Client
	ttl    domain.PresenceTTL
	clock  func() time.Time

	// mu serializes this instance's read-modify-write passes.
	mu sync.Mutex
}

func NewPresenceRegistry(client *redis.Client, ttl domain.PresenceTTL) *PresenceRegistry {
	return NewPresenceRegistryWithClock(client, ttl, time.Now)
}

func NewPresenceRegistryWithClock(client *redis.Client, ttl domain.PresenceTTL, now func() time.Time) *PresenceRegistry {
	return &PresenceRegistry{client: client, ttl: ttl, clock: now}
}

func (r *PresenceRegistry) Upsert(ctx context.Context, hb domain.Heartbeat) (domain.PresenceRecord, error) {
	rec, err := app.ApplyHeartbeat(hb, r.clock())
	if err != nil {
		return domain.PresenceRecord{}, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.PresenceRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.client.HSet(ctx, presenceKey, rec.Key, data).Err(); err != nil {
		return domain.PresenceRecord{}, err
	}
	return rec, nil
}

func (r *PresenceRegistry) Query(ctx context.Context, testID string) ([]domain.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, stale, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	now := r.clock()
	live := records[:0]
	for _, rec := range records {
		if app.Expired(rec, r.ttl, now) {
			stale = append(stale, rec.Key)
			continue
		}
		live = append(live, rec)
	}
	if len(stale) > 0 {
		if err := r.client.HDel(ctx, presenceKey, stale...).Err(); err != nil {
			log.Printf("evict presence records: %v", err)
		}
	}
	return app.SelectLive(live, testID), nil
}

func (r *PresenceRegistry) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.HDel(ctx, presenceKey, key).Err()
}

func (r *PresenceRegistry) DeleteAllForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, _, err := r.scan(ctx)
	if err != nil {
		return err
	}
	var keys []string
	for _, rec := range records {
		if rec.UserID == userID {
			keys = append(keys, rec.Key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.HDel(ctx, presenceKey, keys...).Err()
}

// scan decodes every stored record; undecodable entries are returned as stale keys.
func (r *PresenceRegistry) scan(ctx context.Context) ([]domain.PresenceRecord, []string, error) {
	raw, err := r.client.HGetAll(ctx, presenceKey).Result()
	if err != nil {
		return nil, nil, err
	}
	records := make([]domain.PresenceRecord, 0, len(raw))
	var stale []string
	for key, value := range raw {
		var rec domain.PresenceRecord
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			stale = append(stale, key)
			continue
		}
		if rec.Key == "" {
			rec.Key = key
		}
		records = append(records, rec)
	}
	return records, stale, nil
}
