package exam_test

import (
	"math/rand"
	"testing"

	"exam-session-service/internal/domain"
	"exam-session-service/internal/exam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreRejectsIndexOutsideQuestions(t *testing.T) {
	for _, idx := range []int{-1, 3, 42} {
		a, clock := startAttempt(t, singleBank(3), domain.DifficultyEasy, exam.Config{})
		state := *a.State()
		state.CurrentQuestionIndex = idx

		_, err := exam.RestoreWithSource(&state, rand.New(rand.NewSource(7)), clock.Now)
		assert.ErrorIs(t, err, domain.ErrQuestionNotFound, "index %d", idx)
	}
}

func TestRestoreKeepsProgressAndFillsMissingMaps(t *testing.T) {
	a, clock := startAttempt(t, singleBank(3), domain.DifficultyEasy, exam.Config{})
	require.NoError(t, a.Answer(0, "b"))
	_, err := a.Next()
	require.NoError(t, err)

	state := *a.State()
	state.Placements = nil
	state.RevealedHints = nil

	restored, err := exam.RestoreWithSource(&state, rand.New(rand.NewSource(7)), clock.Now)
	require.NoError(t, err)
	snap := restored.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, 1, snap.Answered)
	assert.Empty(t, snap.Revealed)

	_, _, err = restored.UseHint(restored.Current())
	require.NoError(t, err)
	assert.Len(t, restored.Snapshot().Revealed, 1)
}

func TestRestoreRejectsBadState(t *testing.T) {
	a, clock := startAttempt(t, singleBank(2), domain.DifficultyEasy, exam.Config{})

	state := *a.State()
	state.Difficulty = "nightmare"
	_, err := exam.RestoreWithSource(&state, rand.New(rand.NewSource(7)), clock.Now)
	assert.ErrorIs(t, err, domain.ErrUnknownDifficulty)

	state = *a.State()
	state.Questions = nil
	_, err = exam.RestoreWithSource(&state, rand.New(rand.NewSource(7)), clock.Now)
	assert.ErrorIs(t, err, domain.ErrEmptyBank)
}
