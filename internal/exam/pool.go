package exam

import (
	"fmt"
	"math/rand"
	"sort"

	"exam-session-service/internal/domain"
)

// Prepare turns a raw bank into the question sequence for one attempt: the
// bank is shuffled, capped per difficulty, and every retained entry gets its
// own option order. Each call produces a fresh permutation.
func Prepare(bank []domain.QuestionBankEntry, diff domain.Difficulty, rnd *rand.Rand) ([]domain.PreparedQuestion, error) {
	if len(bank) == 0 {
		return nil, domain.ErrEmptyBank
	}
	for _, entry := range bank {
		if err := entry.Validate(); err != nil {
			return nil, err
		}
	}

	shuffled := make([]domain.QuestionBankEntry, len(bank))
	copy(shuffled, bank)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if diff.PoolCap > 0 && len(shuffled) > diff.PoolCap {
		shuffled = shuffled[:diff.PoolCap]
	}

	prepared := make([]domain.PreparedQuestion, 0, len(shuffled))
	for _, entry := range shuffled {
		prepared = append(prepared, prepareQuestion(entry, rnd))
	}
	return prepared, nil
}

func prepareQuestion(entry domain.QuestionBankEntry, rnd *rand.Rand) domain.PreparedQuestion {
	// Map iteration order is random but not uniform; sort before shuffling.
	ids := make([]string, 0, len(entry.Options))
	for id := range entry.Options {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	order := make([]domain.Option, 0, len(ids))
	for _, id := range ids {
		order = append(order, domain.Option{ID: id, Text: entry.Options[id]})
	}

	q := domain.PreparedQuestion{QuestionBankEntry: entry, Order: order}
	if entry.Kind() == domain.KindMatching {
		q.PickPool = pickPool(order, rnd)
	}
	return q
}

func pickPool(order []domain.Option, rnd *rand.Rand) []string {
	pool := make([]string, 0, len(order))
	for _, opt := range order {
		if _, right, ok := domain.SplitPair(opt.Text); ok {
			pool = append(pool, right)
		}
	}
	rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool
}

func questionAt(state *domain.SessionState, index int) (*domain.PreparedQuestion, error) {
	if index < 0 || index >= len(state.Questions) {
		return nil, fmt.Errorf("%w: index %d", domain.ErrQuestionNotFound, index)
	}
	return &state.Questions[index], nil
}
