package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"exam-session-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches a question bank from a backing store (e.g., Postgres, files).
type BankLoader interface {
	LoadBank(ctx context.Context, quizID string) (domain.QuestionBank, error)
}

// BankRepository serves question banks for new attempts. Banks are checked
// once when they are loaded: a bank the engine cannot run is reported to the
// caller and never cached, so fixing the source is picked up on the next
// Start. Valid banks are kept for the TTL (plus up to 10% jitter).
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	banks map[string]loadedBank
}

type loadedBank struct {
	bank      domain.QuestionBank
	expiresAt time.Time
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return NewBankRepositoryWithClock(loader, ttl, time.Now)
}

// NewBankRepositoryWithClock is NewBankRepository with an injected clock.
func NewBankRepositoryWithClock(loader BankLoader, ttl time.Duration, now func() time.Time) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		banks:  make(map[string]loadedBank),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	if bank, ok := r.lookup(quizID); ok {
		return bank, nil
	}

	v, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		if bank, ok := r.lookup(quizID); ok {
			return bank, nil
		}
		bank, err := r.loader.LoadBank(ctx, quizID)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		if bank.QuizID == "" {
			bank.QuizID = quizID
		}
		if bank.Name == "" {
			bank.Name = quizID
		}
		if err := bank.Validate(); err != nil {
			return domain.QuestionBank{}, fmt.Errorf("bank %s: %w", quizID, err)
		}

		r.mu.Lock()
		r.banks[quizID] = loadedBank{bank: bank, expiresAt: r.clock().Add(r.ttlWithJitter())}
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return v.(domain.QuestionBank), nil
}

// Invalidate drops a bank so the next read goes to the loader, e.g. after a
// bank import.
func (r *BankRepository) Invalidate(quizID string) {
	r.mu.Lock()
	delete(r.banks, quizID)
	r.mu.Unlock()
}

func (r *BankRepository) lookup(quizID string) (domain.QuestionBank, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loaded, ok := r.banks[quizID]
	if !ok || !loaded.expiresAt.After(r.clock()) {
		return domain.QuestionBank{}, false
	}
	return loaded.bank, true
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticBankLoader serves banks from a fixed map (demo content and tests).
type StaticBankLoader struct {
	banks map[string]domain.QuestionBank
}

func NewStaticBankLoader(banks map[string]domain.QuestionBank) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, quizID string) (domain.QuestionBank, error) {
	bank, ok := l.banks[quizID]
	if !ok {
		return domain.QuestionBank{}, domain.ErrQuizNotFound
	}
	return bank, nil
}
