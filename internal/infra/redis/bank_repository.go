package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"exam-session-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches question banks from a backing store (e.g., Postgres).
type BankLoader interface {
	LoadBank(ctx context.Context, quizID string) (domain.QuestionBank, error)
}

// BankRepository caches whole question banks in Redis and falls back to a
// loader on cache miss. Banks are stored as JSON: SET quiz:{quizID}:bank.
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, quizID string) (domain.QuestionBank, error) {
	if bank, ok := r.cached(ctx, quizID); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cached(ctx, quizID); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadBank(ctx, quizID)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		if err := bank.Validate(); err != nil {
			return domain.QuestionBank{}, fmt.Errorf("bank %s: %w", quizID, err)
		}

		data, err := json.Marshal(bank)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		if err := r.client.Set(ctx, r.key(quizID), data, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache bank %s: %v", quizID, err)
		}
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

// Invalidate drops the cached copy, e.g. after a bank import.
func (r *BankRepository) Invalidate(ctx context.Context, quizID string) error {
	return r.client.Del(ctx, r.key(quizID)).Err()
}

func (r *BankRepository) cached(ctx context.Context, quizID string) (domain.QuestionBank, bool) {
	data, err := r.client.Get(ctx, r.key(quizID)).Bytes()
	if err != nil {
		return domain.QuestionBank{}, false
	}
	var bank domain.QuestionBank
	if err := json.Unmarshal(data, &bank); err != nil || bank.Validate() != nil {
		return domain.QuestionBank{}, false
	}
	return bank, true
}

func (r *BankRepository) key(quizID string) string {
	return "quiz:" + quizID + ":bank"
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
