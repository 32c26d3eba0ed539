package exam_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"exam-session-service/internal/domain"
	"exam-session-service/internal/exam"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)

func singleBank(n int) []domain.QuestionBankEntry {
	entries := make([]domain.QuestionBankEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, domain.QuestionBankEntry{
			ID:            fmt.Sprintf("q%d", i+1),
			Question:      fmt.Sprintf("Question %d", i+1),
			Options:       map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"},
			CorrectAnswer: "b",
		})
	}
	return entries
}

func multiEntry() domain.QuestionBankEntry {
	return domain.QuestionBankEntry{
		ID:            "multi",
		Question:      "Pick the primes",
		Options:       map[string]string{"a": "2", "b": "4", "c": "3", "d": "5", "e": "9"},
		CorrectAnswer: "a,c,d",
	}
}

func matchingEntry() domain.QuestionBankEntry {
	return domain.QuestionBankEntry{
		ID:       "match",
		Question: "Match capitals",
		Options: map[string]string{
			"fr": "France → Paris",
			"de": "Germany → Berlin",
			"it": "Italy → Rome",
			"xx": "Atlantis → Poseidonia",
		},
		CorrectAnswer: "de,fr,it",
	}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func startAttempt(t *testing.T, bank []domain.QuestionBankEntry, diff domain.DifficultyID, cfg exam.Config) (*exam.Attempt, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: t0}
	a, err := exam.NewAttemptWithSource(
		exam.Identity{SessionID: "s1", UserID: "u1", Name: "Alice", QuizID: "quiz-1", QuizName: "Capitals"},
		bank,
		domain.MustDifficulty(diff),
		cfg,
		rand.New(rand.NewSource(7)),
		clock.Now,
	)
	require.NoError(t, err)
	return a, clock
}
