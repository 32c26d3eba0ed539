package exam

import (
	"fmt"
	"sort"
	"strings"

	"exam-session-service/internal/domain"
)

// Answer records optionID for the question at index. Single-answer
// questions overwrite the stored value; multi-answer questions toggle the id
// in a canonical, sorted set.
func (a *Attempt) Answer(index int, optionID string) error {
	if a.state.IsFinished {
		return domain.ErrSessionFinished
	}
	q, err := questionAt(a.state, index)
	if err != nil {
		return err
	}
	if !q.HasOption(optionID) {
		return fmt.Errorf("%w: %q", domain.ErrOptionNotFound, optionID)
	}

	switch q.Kind() {
	case domain.KindMatching:
		return domain.ErrPlacementRequired
	case domain.KindMulti:
		a.state.Answers[index] = toggle(a.state.Answers[index], optionID)
	default:
		a.state.Answers[index] = optionID
	}
	return nil
}

// PlaceMatch puts pick into the matching row slotID. An empty pick clears the
// row. The recorded answer for the question always lists exactly the rows
// placed correctly, while the raw placements are kept for rescoring.
func (a *Attempt) PlaceMatch(index int, slotID, pick string) error {
	if a.state.IsFinished {
		return domain.ErrSessionFinished
	}
	q, err := questionAt(a.state, index)
	if err != nil {
		return err
	}
	if q.Kind() != domain.KindMatching {
		return domain.ErrNotMatching
	}
	if !q.IsCorrectID(slotID) {
		return fmt.Errorf("%w: %q", domain.ErrSlotNotFound, slotID)
	}
	if pick != "" && !inPool(q.PickPool, pick) {
		return fmt.Errorf("%w: %q", domain.ErrOptionNotFound, pick)
	}

	placed := a.state.Placements[index]
	if placed == nil {
		placed = make(map[string]string)
		a.state.Placements[index] = placed
	}
	if pick == "" {
		delete(placed, slotID)
	} else {
		placed[slotID] = pick
	}
	a.state.Answers[index] = MatchedAnswer(*q, placed)
	return nil
}

// MatchedAnswer derives the canonical answer of a matching question from raw
// placements: the ids of rows whose pick equals their right-hand side.
func MatchedAnswer(q domain.PreparedQuestion, placed map[string]string) string {
	ids := make([]string, 0, len(placed))
	for slotID, pick := range placed {
		if !q.IsCorrectID(slotID) {
			continue
		}
		if right, ok := q.RightFor(slotID); ok && right == pick {
			ids = append(ids, slotID)
		}
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

func toggle(current, id string) string {
	ids := domain.SplitAnswer(current)
	out := ids[:0]
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, id)
	}
	return domain.NormalizeAnswer(strings.Join(out, ","))
}

func inPool(pool []string, pick string) bool {
	for _, p := range pool {
		if p == pick {
			return true
		}
	}
	return false
}
