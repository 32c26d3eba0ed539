package memory

import (
	"context"
	"sort"
	"sync"

	"exam-session-service/internal/domain"
)

// UnlockRepository keeps league unlocks in memory.
type UnlockRepository struct {
	mu      sync.RWMutex
	unlocks map[string]map[domain.LeagueTier]struct{}
}

func NewUnlockRepository() *UnlockRepository {
	return &UnlockRepository{unlocks: make(map[string]map[domain.LeagueTier]struct{})}
}

func (r *UnlockRepository) Unlocked(_ context.Context, userID string) ([]domain.LeagueTier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tiers := make([]domain.LeagueTier, 0, len(r.unlocks[userID]))
	for t := range r.unlocks[userID] {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers, nil
}

func (r *UnlockRepository) Unlock(_ context.Context, userID string, tier domain.LeagueTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.unlocks[userID] == nil {
		r.unlocks[userID] = make(map[domain.LeagueTier]struct{})
	}
	r.unlocks[userID][tier] = struct{}{}
	return nil
}
