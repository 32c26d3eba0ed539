package domain

import "time"

// SessionState is the full mutable state of one exam attempt. It is
// persisted as-is for resume after reload.
type SessionState struct {
	SessionID  string       `json:"sessionId"`
	UserID     string       `json:"userId"`
	Name       string       `json:"name"`
	QuizID     string       `json:"quizId"`
	QuizName   string       `json:"quizName"`
	Difficulty DifficultyID `json:"difficulty"`

	Questions            []PreparedQuestion `json:"questions"`
	CurrentQuestionIndex int                `json:"currentQuestionIndex"`
	// Answers maps question index to the recorded (canonical) answer.
	Answers map[int]string `json:"answers"`
	// Placements maps question index to slot id -> picked right-hand text.
	Placements map[int]map[string]string `json:"placements,omitempty"`

	HintsLeft      int  `json:"hintsLeft"`
	ExtraHints     int  `json:"extraHints"`
	HintsUsed      int  `json:"hintsUsed"`
	UnlimitedHints bool `json:"unlimitedHints"`
	// RevealedHints maps question index to the eliminated option ids.
	RevealedHints   map[int][]string `json:"revealedHints"`
	UnlockedLeagues []LeagueTier     `json:"unlockedLeagues,omitempty"`

	BankedTimeSeconds int `json:"bankedTimeSeconds"`
	TimeLeftSeconds   int `json:"timeLeftSeconds"`

	StartTime  time.Time `json:"startTime"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
	IsFinished bool      `json:"isFinished"`
}

// Answered counts questions with a non-empty recorded answer.
func (s *SessionState) Answered() int {
	n := 0
	for _, a := range s.Answers {
		if a != "" {
			n++
		}
	}
	return n
}

// ScoredResult is the outcome of finalizing an attempt.
type ScoredResult struct {
	Score    float64       `json:"score"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"duration"`
	// Credits holds per-question credit in question order.
	Credits []float64 `json:"credits"`
}

// Outcome is what finishing an attempt hands back to the caller.
type Outcome struct {
	Result ScoredResult `json:"result"`
	League LeagueTier   `json:"league"`
	// Unlocked is set on first-time Legendary or Mythic qualification.
	Unlocked  *LeagueTier `json:"unlocked,omitempty"`
	Submitted bool        `json:"submitted"`
}

// ResultSubmission is the payload handed to the persistence collaborator.
type ResultSubmission struct {
	SessionID  string             `json:"sessionId"`
	UserID     string             `json:"userId"`
	Name       string             `json:"name"`
	QuizID     string             `json:"quizId"`
	QuizName   string             `json:"quizName"`
	Score      float64            `json:"score"`
	Total      int                `json:"total"`
	Duration   time.Duration      `json:"duration"`
	Timestamp  time.Time          `json:"timestamp"`
	Questions  []PreparedQuestion `json:"questions"`
	Answers    map[int]string     `json:"answers"`
	Difficulty DifficultyID       `json:"difficulty"`
	League     LeagueTier         `json:"league"`
}

// QuestionView is a question as shown to the taker; it never carries the
// correct answer.
type QuestionView struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Kind     QuestionKind `json:"kind"`
	Options  []Option     `json:"options"`
	Slots    []MatchSlot  `json:"slots,omitempty"`
	PickPool []string     `json:"pickPool,omitempty"`
}

// ExamSnapshot is the client-facing state of an attempt.
type ExamSnapshot struct {
	SessionID  string            `json:"sessionId"`
	QuizID     string            `json:"quizId"`
	Difficulty DifficultyID      `json:"difficulty"`
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Question   *QuestionView     `json:"question,omitempty"`
	Answer     string            `json:"answer"`
	Placements map[string]string `json:"placements,omitempty"`
	Revealed   []string          `json:"revealed,omitempty"`
	HintsLeft  int               `json:"hintsLeft"`
	ExtraHints int               `json:"extraHints"`
	Unlimited  bool              `json:"unlimitedHints"`
	Timed      bool              `json:"timed"`
	TimeLeft   int               `json:"timeLeft"`
	Answered   int               `json:"answered"`
	Finished   bool              `json:"finished"`
	Outcome    *Outcome          `json:"outcome,omitempty"`
}
