package exam

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"exam-session-service/internal/domain"
)

// Identity names who is taking which quiz.
type Identity struct {
	SessionID string
	UserID    string
	Name      string
	QuizID    string
	QuizName  string
}

// Config is resolved once per attempt from the player's capabilities.
type Config struct {
	UnlimitedHints  bool
	ExtraHints      int
	UnlockedLeagues []domain.LeagueTier
}

// Attempt drives one exam attempt. It is not safe for concurrent use; the
// owner serializes every call, including timer ticks.
type Attempt struct {
	state *domain.SessionState
	diff  domain.Difficulty
	rnd   *rand.Rand
	now   func() time.Time
}

// NewAttemptWithSource prepares the question pool and enters the first
// question, using the given randomness and clock.
func NewAttemptWithSource(id Identity, bank []domain.QuestionBankEntry, diff domain.Difficulty, cfg Config, rnd *rand.Rand, now func() time.Time) (*Attempt, error) {
	questions, err := Prepare(bank, diff, rnd)
	if err != nil {
		return nil, err
	}
	extra := cfg.ExtraHints
	if extra < 0 {
		extra = 0
	}
	state := &domain.SessionState{
		SessionID:       id.SessionID,
		UserID:          id.UserID,
		Name:            id.Name,
		QuizID:          id.QuizID,
		QuizName:        id.QuizName,
		Difficulty:      diff.ID,
		Questions:       questions,
		Answers:         make(map[int]string),
		Placements:      make(map[int]map[string]string),
		HintsLeft:       HintBudget(diff.ID, domain.HighestLeague(cfg.UnlockedLeagues)),
		ExtraHints:      extra,
		UnlimitedHints:  cfg.UnlimitedHints,
		RevealedHints:   make(map[int][]string),
		UnlockedLeagues: cfg.UnlockedLeagues,
		StartTime:       now(),
	}
	a := &Attempt{state: state, diff: diff, rnd: rnd, now: now}
	a.enterQuestion()
	return a, nil
}

// RestoreWithSource rebuilds an attempt from persisted state. The countdown
// resumes from the persisted timeLeft rather than being re-armed from the limit.
func RestoreWithSource(state *domain.SessionState, rnd *rand.Rand, now func() time.Time) (*Attempt, error) {
	diff, err := domain.LookupDifficulty(string(state.Difficulty))
	if err != nil {
		return nil, err
	}
	if len(state.Questions) == 0 {
		return nil, domain.ErrEmptyBank
	}
	if idx := state.CurrentQuestionIndex; idx < 0 || idx >= len(state.Questions) {
		return nil, fmt.Errorf("%w: index %d of %d", domain.ErrQuestionNotFound, idx, len(state.Questions))
	}
	if state.Answers == nil {
		state.Answers = make(map[int]string)
	}
	if state.Placements == nil {
		state.Placements = make(map[int]map[string]string)
	}
	if state.RevealedHints == nil {
		state.RevealedHints = make(map[int][]string)
	}
	return &Attempt{state: state, diff: diff, rnd: rnd, now: now}, nil
}

// State exposes the underlying state for persistence. Callers must not
// mutate it.
func (a *Attempt) State() *domain.SessionState {
	return a.state
}

func (a *Attempt) Difficulty() domain.Difficulty {
	return a.diff
}

// Current is the index of the question being shown.
func (a *Attempt) Current() int {
	return a.state.CurrentQuestionIndex
}

func (a *Attempt) Finished() bool {
	return a.state.IsFinished
}

// Next leaves the current question voluntarily. Leaving the last question
// finishes the attempt.
func (a *Attempt) Next() (bool, error) {
	if a.state.IsFinished {
		return true, domain.ErrSessionFinished
	}
	return a.advance(), nil
}

func (a *Attempt) advance() bool {
	a.leaveQuestion()
	if a.state.CurrentQuestionIndex >= len(a.state.Questions)-1 {
		a.finish()
		return true
	}
	a.state.CurrentQuestionIndex++
	a.enterQuestion()
	return false
}

func (a *Attempt) finish() {
	if a.state.IsFinished {
		return
	}
	a.state.IsFinished = true
	a.state.FinishedAt = a.now()
	a.state.TimeLeftSeconds = 0
	a.state.BankedTimeSeconds = 0
}

// Finish ends the attempt (if still running) and computes its outcome.
// Calling it again returns the same outcome, so a failed submission can be
// retried.
func (a *Attempt) Finish() domain.Outcome {
	a.finish()

	score, credits := Score(a.state.Questions, a.state.Answers, a.state.Placements)
	result := domain.ScoredResult{
		Score:    score,
		Total:    len(a.state.Questions),
		Duration: a.state.FinishedAt.Sub(a.state.StartTime),
		Credits:  credits,
	}
	league := Classify(ClassifyInput{
		Score:      result.Score,
		Total:      result.Total,
		Difficulty: a.diff.ID,
		Duration:   result.Duration,
		Log:        BuildLog(a.state.Questions, a.state.Answers),
	})
	out := domain.Outcome{Result: result, League: league}
	if tier, ok := FirstUnlock(league, a.state.UnlockedLeagues); ok {
		out.Unlocked = &tier
	}
	return out
}

// Submission builds the persistence payload for a finished attempt.
func (a *Attempt) Submission(out domain.Outcome) domain.ResultSubmission {
	answers := make(map[int]string, len(a.state.Answers))
	for k, v := range a.state.Answers {
		answers[k] = v
	}
	return domain.ResultSubmission{
		SessionID:  a.state.SessionID,
		UserID:     a.state.UserID,
		Name:       a.state.Name,
		QuizID:     a.state.QuizID,
		QuizName:   a.state.QuizName,
		Score:      out.Result.Score,
		Total:      out.Result.Total,
		Duration:   out.Result.Duration,
		Timestamp:  a.state.FinishedAt,
		Questions:  a.state.Questions,
		Answers:    answers,
		Difficulty: a.diff.ID,
		League:     out.League,
	}
}

// Snapshot is the client view of the attempt.
func (a *Attempt) Snapshot() domain.ExamSnapshot {
	s := a.state
	snap := domain.ExamSnapshot{
		SessionID:  s.SessionID,
		QuizID:     s.QuizID,
		Difficulty: s.Difficulty,
		Index:      s.CurrentQuestionIndex,
		Total:      len(s.Questions),
		HintsLeft:  s.HintsLeft,
		ExtraHints: s.ExtraHints,
		Unlimited:  s.UnlimitedHints,
		Timed:      a.diff.Timed(),
		TimeLeft:   s.TimeLeftSeconds,
		Answered:   s.Answered(),
		Finished:   s.IsFinished,
	}
	if s.IsFinished {
		return snap
	}
	idx := s.CurrentQuestionIndex
	q := s.Questions[idx]
	snap.Question = &domain.QuestionView{
		ID:       q.ID,
		Question: q.Question,
		Kind:     q.Kind(),
		Options:  q.Order,
		Slots:    q.Slots(),
		PickPool: q.PickPool,
	}
	snap.Answer = s.Answers[idx]
	if placed := s.Placements[idx]; len(placed) > 0 {
		snap.Placements = make(map[string]string, len(placed))
		for k, v := range placed {
			snap.Placements[k] = v
		}
	}
	if revealed := s.RevealedHints[idx]; len(revealed) > 0 {
		snap.Revealed = append([]string(nil), revealed...)
		sort.Strings(snap.Revealed)
	}
	return snap
}
