package domain

import (
	"fmt"
	"sort"
	"strings"
)

// QuestionKind tells the recorder and scorer how to treat an answer.
type QuestionKind string

const (
	KindSingle   QuestionKind = "single"
	KindMulti    QuestionKind = "multi"
	KindMatching QuestionKind = "matching"
)

// QuestionBankEntry is one raw question as provided by the content source.
type QuestionBankEntry struct {
	ID       string            `json:"id" yaml:"id"`
	Question string            `json:"question" yaml:"question"`
	Options  map[string]string `json:"options" yaml:"options"`
	// CorrectAnswer is a single option id or a comma-joined id set.
	CorrectAnswer string `json:"correct_answer" yaml:"correct_answer"`
}

// QuestionBank is the ordered set of entries for one quiz.
type QuestionBank struct {
	QuizID  string              `json:"id" yaml:"id"`
	Name    string              `json:"name" yaml:"name"`
	Entries []QuestionBankEntry `json:"questions" yaml:"questions"`
}

// Validate rejects a bank with no entries, a repeated entry id or any entry
// the engine cannot run.
func (b QuestionBank) Validate() error {
	if len(b.Entries) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyBank, b.QuizID)
	}
	seen := make(map[string]struct{}, len(b.Entries))
	for _, e := range b.Entries {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrMalformedEntry, e.ID)
		}
		seen[e.ID] = struct{}{}
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects entries the engine cannot run.
func (e QuestionBankEntry) Validate() error {
	if len(e.Options) == 0 {
		return fmt.Errorf("%w: %s has no options", ErrMalformedEntry, e.ID)
	}
	ids := e.CorrectIDs()
	if len(ids) == 0 {
		return fmt.Errorf("%w: %s has no correct answer", ErrMalformedEntry, e.ID)
	}
	for _, id := range ids {
		if _, ok := e.Options[id]; !ok {
			return fmt.Errorf("%w: %s correct answer %q is not an option", ErrMalformedEntry, e.ID, id)
		}
	}
	return nil
}

// CorrectIDs returns the sorted, de-duplicated correct option ids.
func (e QuestionBankEntry) CorrectIDs() []string {
	return SplitAnswer(e.CorrectAnswer)
}

// IsCorrectID reports whether id belongs to the correct answer set.
func (e QuestionBankEntry) IsCorrectID(id string) bool {
	for _, c := range e.CorrectIDs() {
		if c == id {
			return true
		}
	}
	return false
}

// Kind derives the question kind from the options and the correct answer.
func (e QuestionBankEntry) Kind() QuestionKind {
	for _, text := range e.Options {
		if _, _, ok := SplitPair(text); ok {
			return KindMatching
		}
	}
	if len(e.CorrectIDs()) > 1 {
		return KindMulti
	}
	return KindSingle
}

// Option is one choice in presentation order.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PreparedQuestion is a bank entry with its per-attempt option order.
type PreparedQuestion struct {
	QuestionBankEntry
	Order []Option `json:"order"`
	// PickPool holds the right-hand sides of matching options, shuffled.
	PickPool []string `json:"pickPool,omitempty"`
}

// MatchSlot is a fillable row of a matching question.
type MatchSlot struct {
	ID   string `json:"id"`
	Left string `json:"left"`
}

// Slots returns the fillable rows in presentation order. Distractor rows
// contribute picks to the pool but never become slots.
func (q PreparedQuestion) Slots() []MatchSlot {
	if q.Kind() != KindMatching {
		return nil
	}
	slots := make([]MatchSlot, 0, len(q.Order))
	for _, opt := range q.Order {
		if !q.IsCorrectID(opt.ID) {
			continue
		}
		left, _, _ := SplitPair(opt.Text)
		slots = append(slots, MatchSlot{ID: opt.ID, Left: left})
	}
	return slots
}

// RightFor returns the expected pick for a matching row.
func (q PreparedQuestion) RightFor(optionID string) (string, bool) {
	text, ok := q.Options[optionID]
	if !ok {
		return "", false
	}
	_, right, ok := SplitPair(text)
	return right, ok
}

// HasOption reports whether id is one of the question's option ids.
func (q PreparedQuestion) HasOption(id string) bool {
	_, ok := q.Options[id]
	return ok
}

// SplitPair parses "left → right" (or "left -> right") option text.
func SplitPair(text string) (left, right string, ok bool) {
	for _, sep := range []string{"→", "->"} {
		if i := strings.Index(text, sep); i >= 0 {
			left = strings.TrimSpace(text[:i])
			right = strings.TrimSpace(text[i+len(sep):])
			return left, right, left != "" && right != ""
		}
	}
	return "", "", false
}

// SplitAnswer turns a comma-joined answer into sorted, unique, trimmed ids.
func SplitAnswer(s string) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, 4)
	for _, part := range strings.Split(s, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NormalizeAnswer is the canonical sorted, comma-joined form of an answer.
func NormalizeAnswer(s string) string {
	return strings.Join(SplitAnswer(s), ",")
}
