package memory

import (
	"context"
	"sync"

	"exam-session-service/internal/domain"
)

// ResultRepository collects submissions in memory (useful for tests/demos).
type ResultRepository struct {
	mu      sync.RWMutex
	results []domain.ResultSubmission
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{}
}

func (r *ResultRepository) SaveResult(_ context.Context, result domain.ResultSubmission) error {
	r.mu.Lock()
	r.results = append(r.results, result)
	r.mu.Unlock()
	return nil
}

// Results returns the stored submissions in arrival order.
func (r *ResultRepository) Results() []domain.ResultSubmission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ResultSubmission, len(r.results))
	copy(out, r.results)
	return out
}
