package exam_test

import (
	"math/rand"
	"sort"
	"testing"

	"exam-session-service/internal/domain"
	"exam-session-service/internal/exam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareCapsEasyPoolAtTwenty(t *testing.T) {
	bank := singleBank(25)
	prepared, err := exam.Prepare(bank, domain.MustDifficulty(domain.DifficultyEasy), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, prepared, 20)

	known := make(map[string]bool, len(bank))
	for _, e := range bank {
		known[e.ID] = true
	}
	seen := make(map[string]bool)
	for _, q := range prepared {
		assert.True(t, known[q.ID], "unexpected question %s", q.ID)
		assert.False(t, seen[q.ID], "duplicate question %s", q.ID)
		seen[q.ID] = true
	}
}

func TestPrepareKeepsWholeBankAboveEasy(t *testing.T) {
	for _, diff := range []domain.DifficultyID{domain.DifficultyMiddle, domain.DifficultyHard, domain.DifficultyInsane, domain.DifficultyImpossible} {
		prepared, err := exam.Prepare(singleBank(25), domain.MustDifficulty(diff), rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		assert.Len(t, prepared, 25, diff)
	}
}

func TestPreparePermutesOptions(t *testing.T) {
	prepared, err := exam.Prepare([]domain.QuestionBankEntry{matchingEntry()}, domain.MustDifficulty(domain.DifficultyMiddle), rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	q := prepared[0]

	ids := make([]string, 0, len(q.Order))
	for _, opt := range q.Order {
		assert.Equal(t, q.Options[opt.ID], opt.Text)
		ids = append(ids, opt.ID)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"de", "fr", "it", "xx"}, ids)

	pool := append([]string(nil), q.PickPool...)
	sort.Strings(pool)
	assert.Equal(t, []string{"Berlin", "Paris", "Poseidonia", "Rome"}, pool)
}

func TestPrepareRejectsMalformedEntries(t *testing.T) {
	diff := domain.MustDifficulty(domain.DifficultyEasy)
	rnd := rand.New(rand.NewSource(1))

	_, err := exam.Prepare(nil, diff, rnd)
	assert.ErrorIs(t, err, domain.ErrEmptyBank)

	_, err = exam.Prepare([]domain.QuestionBankEntry{{ID: "q1", Options: map[string]string{"a": "A"}}}, diff, rnd)
	assert.ErrorIs(t, err, domain.ErrMalformedEntry)

	_, err = exam.Prepare([]domain.QuestionBankEntry{{ID: "q1", CorrectAnswer: "a"}}, diff, rnd)
	assert.ErrorIs(t, err, domain.ErrMalformedEntry)

	_, err = exam.Prepare([]domain.QuestionBankEntry{{ID: "q1", Options: map[string]string{"a": "A"}, CorrectAnswer: "z"}}, diff, rnd)
	assert.ErrorIs(t, err, domain.ErrMalformedEntry)
}
