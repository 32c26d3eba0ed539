package exam

import (
	"time"

	"exam-session-service/internal/domain"
)

const (
	mythicStreak         = 30
	legendaryStrictBelow = 50
	mythicStrictBelow    = 30
)

// LoggedAnswer is one entry of the answer log in original question order.
type LoggedAnswer struct {
	Answer        string
	CorrectAnswer string
}

// ClassifyInput is everything the league classifier looks at. A nil Log
// means the detailed answer log is unavailable.
type ClassifyInput struct {
	Score      float64
	Total      int
	Difficulty domain.DifficultyID
	Duration   time.Duration
	Log        []LoggedAnswer
}

// Classify maps a finished attempt to its league. Rules are checked from the
// strictest tier down and the first match wins. It has no side effects.
func Classify(in ClassifyInput) domain.LeagueTier {
	pct := percentage(in.Score, in.Total)
	perfect := in.Total > 0 && in.Score >= float64(in.Total)

	if in.Difficulty == domain.DifficultyImpossible && qualifiesMythic(in, perfect) {
		return domain.LeagueMythic
	}
	if in.Difficulty == domain.DifficultyInsane {
		if in.Total < legendaryStrictBelow && perfect {
			return domain.LeagueLegendary
		}
		if in.Total >= legendaryStrictBelow && pct >= 95 {
			return domain.LeagueLegendary
		}
	}

	switch {
	case pct >= 85:
		return domain.LeagueEpic
	case pct >= 70:
		return domain.LeagueDiamond
	case pct >= 55:
		return domain.LeagueRuby
	case pct >= 40:
		return domain.LeagueIron
	default:
		return domain.LeagueCopper
	}
}

func qualifiesMythic(in ClassifyInput, perfect bool) bool {
	if in.Total < mythicStrictBelow {
		return perfect
	}
	if in.Log == nil {
		return perfect
	}
	return LongestStreak(in.Log) >= mythicStreak
}

// LongestStreak is the longest run of consecutive fully correct answers;
// any incorrect or missing answer resets the run.
func LongestStreak(log []LoggedAnswer) int {
	best, run := 0, 0
	for _, entry := range log {
		if entry.Answer != "" && domain.NormalizeAnswer(entry.Answer) == domain.NormalizeAnswer(entry.CorrectAnswer) {
			run++
			if run > best {
				best = run
			}
			continue
		}
		run = 0
	}
	return best
}

// FirstUnlock reports the one-time unlock signal: Legendary and Mythic
// unlock the first time they are reached.
func FirstUnlock(tier domain.LeagueTier, unlocked []domain.LeagueTier) (domain.LeagueTier, bool) {
	if tier != domain.LeagueLegendary && tier != domain.LeagueMythic {
		return tier, false
	}
	for _, u := range unlocked {
		if u == tier {
			return tier, false
		}
	}
	return tier, true
}

// BuildLog lays out the answer log for Classify.
func BuildLog(questions []domain.PreparedQuestion, answers map[int]string) []LoggedAnswer {
	log := make([]LoggedAnswer, len(questions))
	for i, q := range questions {
		log[i] = LoggedAnswer{Answer: answers[i], CorrectAnswer: q.CorrectAnswer}
	}
	return log
}

func percentage(score float64, total int) float64 {
	if total <= 0 {
		return 0
	}
	return score / float64(total) * 100
}
