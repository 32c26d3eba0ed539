package exam_test

import (
	"math/rand"
	"testing"
	"time"

	"exam-session-service/internal/domain"
	"exam-session-service/internal/exam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepared(t *testing.T, entry domain.QuestionBankEntry) domain.PreparedQuestion {
	t.Helper()
	qs, err := exam.Prepare([]domain.QuestionBankEntry{entry}, domain.MustDifficulty(domain.DifficultyMiddle), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return qs[0]
}

func TestCreditPartialMultiAnswer(t *testing.T) {
	q := prepared(t, multiEntry())

	assert.InDelta(t, 2.0/3.0, exam.Credit(q, "a,c", nil), 1e-9)
	assert.Equal(t, 1.0, exam.Credit(q, "d,c,a", nil))
	assert.Equal(t, 0.0, exam.Credit(q, "", nil))
	assert.Equal(t, 0.0, exam.Credit(q, "b,e", nil))
	// Over-selection is never penalised.
	assert.InDelta(t, 2.0/3.0, exam.Credit(q, "a,b,c,e", nil), 1e-9)
}

func TestCreditSingleAnswerIsAllOrNothing(t *testing.T) {
	q := prepared(t, singleBank(1)[0])
	assert.Equal(t, 1.0, exam.Credit(q, "b", nil))
	assert.Equal(t, 0.0, exam.Credit(q, "a", nil))
	assert.Equal(t, 0.0, exam.Credit(q, "a,b", nil))
}

func TestAnswerTogglesMultiSelection(t *testing.T) {
	a, _ := startAttempt(t, []domain.QuestionBankEntry{multiEntry()}, domain.DifficultyMiddle, exam.Config{})

	require.NoError(t, a.Answer(0, "d"))
	require.NoError(t, a.Answer(0, "a"))
	assert.Equal(t, "a,d", a.State().Answers[0])

	require.NoError(t, a.Answer(0, "d"))
	assert.Equal(t, "a", a.State().Answers[0])

	require.NoError(t, a.Answer(0, "c"))
	out := a.Finish()
	assert.InDelta(t, 2.0/3.0, out.Result.Score, 1e-9)
}

func TestAnswerOverwritesSingleSelection(t *testing.T) {
	a, _ := startAttempt(t, singleBank(1), domain.DifficultyMiddle, exam.Config{})
	require.NoError(t, a.Answer(0, "a"))
	require.NoError(t, a.Answer(0, "b"))
	assert.Equal(t, "b", a.State().Answers[0])

	assert.ErrorIs(t, a.Answer(0, "zz"), domain.ErrOptionNotFound)
	assert.ErrorIs(t, a.Answer(3, "a"), domain.ErrQuestionNotFound)
}

func TestMatchingPlacementsRecordOnlyCorrectRows(t *testing.T) {
	a, _ := startAttempt(t, []domain.QuestionBankEntry{matchingEntry()}, domain.DifficultyMiddle, exam.Config{})

	assert.ErrorIs(t, a.Answer(0, "fr"), domain.ErrPlacementRequired)
	assert.ErrorIs(t, a.PlaceMatch(0, "xx", "Poseidonia"), domain.ErrSlotNotFound)
	assert.ErrorIs(t, a.PlaceMatch(0, "fr", "Madrid"), domain.ErrOptionNotFound)

	require.NoError(t, a.PlaceMatch(0, "fr", "Paris"))
	require.NoError(t, a.PlaceMatch(0, "de", "Rome"))
	assert.Equal(t, "fr", a.State().Answers[0])

	require.NoError(t, a.PlaceMatch(0, "de", "Berlin"))
	require.NoError(t, a.PlaceMatch(0, "it", "Rome"))
	assert.Equal(t, "de,fr,it", a.State().Answers[0])

	out := a.Finish()
	assert.Equal(t, 1.0, out.Result.Score)
}

func TestMatchingPartialCreditFromPlacements(t *testing.T) {
	a, _ := startAttempt(t, []domain.QuestionBankEntry{matchingEntry()}, domain.DifficultyMiddle, exam.Config{})
	require.NoError(t, a.PlaceMatch(0, "fr", "Paris"))
	require.NoError(t, a.PlaceMatch(0, "de", "Poseidonia"))
	require.NoError(t, a.PlaceMatch(0, "it", "Rome"))
	require.NoError(t, a.PlaceMatch(0, "it", ""))

	out := a.Finish()
	assert.InDelta(t, 1.0/3.0, out.Result.Score, 1e-9)
}

func TestPlaceMatchRejectsPlainQuestions(t *testing.T) {
	a, _ := startAttempt(t, singleBank(1), domain.DifficultyMiddle, exam.Config{})
	assert.ErrorIs(t, a.PlaceMatch(0, "b", "B"), domain.ErrNotMatching)
}

func TestScoreSumsCreditsWithinBounds(t *testing.T) {
	bank := append(singleBank(4), multiEntry(), matchingEntry())
	a, _ := startAttempt(t, bank, domain.DifficultyMiddle, exam.Config{})

	for i, q := range a.State().Questions {
		switch q.Kind() {
		case domain.KindMatching:
			require.NoError(t, a.PlaceMatch(i, "fr", "Paris"))
		case domain.KindMulti:
			require.NoError(t, a.Answer(i, "a"))
			require.NoError(t, a.Answer(i, "b"))
		default:
			if i%2 == 0 {
				require.NoError(t, a.Answer(i, "b"))
			}
		}
	}

	out := a.Finish()
	sum := 0.0
	for _, c := range out.Result.Credits {
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
		sum += c
	}
	assert.InDelta(t, sum, out.Result.Score, 1e-9)
	assert.GreaterOrEqual(t, out.Result.Score, 0.0)
	assert.LessOrEqual(t, out.Result.Score, float64(out.Result.Total))
	assert.Equal(t, len(bank), out.Result.Total)
}

func TestFinishIsRepeatable(t *testing.T) {
	a, clock := startAttempt(t, singleBank(2), domain.DifficultyMiddle, exam.Config{})
	require.NoError(t, a.Answer(0, "b"))
	clock.Advance(90 * time.Second)

	first := a.Finish()
	clock.Advance(time.Minute)
	second := a.Finish()

	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, first.Result.Score)
	assert.Equal(t, 90*time.Second, first.Result.Duration)
	assert.ErrorIs(t, a.Answer(1, "b"), domain.ErrSessionFinished)
	_, err := a.Next()
	assert.ErrorIs(t, err, domain.ErrSessionFinished)
}
