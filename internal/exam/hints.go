package exam

import (
	"sort"

	"exam-session-service/internal/domain"
)

// hintBudgets is the starting hint count per difficulty for a player whose
// highest unlocked league is none, Legendary, or Mythic (in that order).
// Non-zero bases scale by ~3.33 and 5; zero bases get a flat +1 and +2.
var hintBudgets = map[domain.DifficultyID][3]int{
	domain.DifficultyEasy:       {3, 10, 15},
	domain.DifficultyMiddle:     {2, 7, 10},
	domain.DifficultyHard:       {1, 3, 5},
	domain.DifficultyInsane:     {0, 1, 2},
	domain.DifficultyImpossible: {0, 1, 2},
}

// HintBudget returns the starting hintsLeft for a difficulty given the
// player's highest unlocked league.
func HintBudget(diff domain.DifficultyID, unlocked domain.LeagueTier) int {
	row, ok := hintBudgets[diff]
	if !ok {
		return 0
	}
	switch {
	case unlocked >= domain.LeagueMythic:
		return row[2]
	case unlocked >= domain.LeagueLegendary:
		return row[1]
	default:
		return row[0]
	}
}

// UseHint eliminates one random incorrect, unrevealed option of the question
// at index. It reports the eliminated id and whether anything happened; an
// exhausted budget or a fully revealed question is a no-op.
func (a *Attempt) UseHint(index int) (string, bool, error) {
	if a.state.IsFinished {
		return "", false, domain.ErrSessionFinished
	}
	q, err := questionAt(a.state, index)
	if err != nil {
		return "", false, err
	}
	if !a.state.UnlimitedHints && a.state.HintsLeft+a.state.ExtraHints <= 0 {
		return "", false, nil
	}

	candidates := eliminable(q, a.state.RevealedHints[index])
	if len(candidates) == 0 {
		return "", false, nil
	}

	pick := candidates[a.rnd.Intn(len(candidates))]
	a.state.RevealedHints[index] = append(a.state.RevealedHints[index], pick)
	a.consumeHint()

	if len(eliminable(q, a.state.RevealedHints[index])) == 0 {
		a.revealCorrect(index, q)
	}
	return pick, true, nil
}

func (a *Attempt) consumeHint() {
	switch {
	case a.state.UnlimitedHints:
	case a.state.HintsLeft > 0:
		a.state.HintsLeft--
		a.state.HintsUsed++
	case a.state.ExtraHints > 0:
		a.state.ExtraHints--
		a.state.HintsUsed++
	}
}

// revealCorrect records the full correct set once only correct options remain.
func (a *Attempt) revealCorrect(index int, q *domain.PreparedQuestion) {
	a.state.Answers[index] = domain.NormalizeAnswer(q.CorrectAnswer)
	if q.Kind() != domain.KindMatching {
		return
	}
	placed := make(map[string]string)
	for _, slot := range q.Slots() {
		if right, ok := q.RightFor(slot.ID); ok {
			placed[slot.ID] = right
		}
	}
	a.state.Placements[index] = placed
}

// eliminable lists option ids that are neither correct nor already revealed,
// sorted so the random pick depends only on the rng.
func eliminable(q *domain.PreparedQuestion, revealed []string) []string {
	gone := make(map[string]struct{}, len(revealed))
	for _, id := range revealed {
		gone[id] = struct{}{}
	}
	out := make([]string, 0, len(q.Options))
	for id := range q.Options {
		if q.IsCorrectID(id) {
			continue
		}
		if _, ok := gone[id]; ok {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
