package domain

import (
	"fmt"
	"strings"
)

// DifficultyID names one of the fixed difficulty tiers.
type DifficultyID string

const (
	DifficultyEasy       DifficultyID = "easy"
	DifficultyMiddle     DifficultyID = "middle"
	DifficultyHard       DifficultyID = "hard"
	DifficultyInsane     DifficultyID = "insane"
	DifficultyImpossible DifficultyID = "impossible"
)

// Difficulty carries the per-tier rules applied to an attempt.
type Difficulty struct {
	ID        DifficultyID
	BaseHints int
	// TimeLimitSeconds is the per-question countdown; zero means untimed.
	TimeLimitSeconds int
	TimeBanking      bool
	// PoolCap truncates the shuffled bank; zero keeps every entry.
	PoolCap int
}

var difficulties = map[DifficultyID]Difficulty{
	DifficultyEasy:       {ID: DifficultyEasy, BaseHints: 3, PoolCap: 20},
	DifficultyMiddle:     {ID: DifficultyMiddle, BaseHints: 2},
	DifficultyHard:       {ID: DifficultyHard, BaseHints: 1, TimeLimitSeconds: 20},
	DifficultyInsane:     {ID: DifficultyInsane, BaseHints: 0, TimeLimitSeconds: 12},
	DifficultyImpossible: {ID: DifficultyImpossible, BaseHints: 0, TimeLimitSeconds: 8, TimeBanking: true},
}

// LookupDifficulty resolves a difficulty id (case-insensitive).
func LookupDifficulty(id string) (Difficulty, error) {
	d, ok := difficulties[DifficultyID(strings.ToLower(strings.TrimSpace(id)))]
	if !ok {
		return Difficulty{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, id)
	}
	return d, nil
}

// MustDifficulty is LookupDifficulty for ids known at compile time.
func MustDifficulty(id DifficultyID) Difficulty {
	d, err := LookupDifficulty(string(id))
	if err != nil {
		panic(err)
	}
	return d
}

// Timed reports whether questions run against a countdown.
func (d Difficulty) Timed() bool {
	return d.TimeLimitSeconds > 0
}
