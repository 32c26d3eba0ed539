package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an exam session is neither live nor persisted.
	ErrSessionNotFound = errors.New("exam session not found")
	// ErrSessionFinished is returned when a mutating operation targets a finished attempt.
	ErrSessionFinished = errors.New("exam session already finished")
	// ErrQuizNotFound indicates the question bank could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question index is out of range.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option ID (or match pick) is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrUnknownDifficulty is returned for difficulty ids outside the known tiers.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	// ErrEmptyBank is returned when a quiz has no questions to prepare.
	ErrEmptyBank = errors.New("question bank is empty")
	// ErrMalformedEntry marks a bank entry missing options or a correct answer.
	ErrMalformedEntry = errors.New("malformed question bank entry")
	// ErrNotMatching is returned when a placement targets a non-matching question.
	ErrNotMatching = errors.New("question is not a matching question")
	// ErrPlacementRequired is returned when a plain answer targets a matching question.
	ErrPlacementRequired = errors.New("matching questions take placements, not answers")
	// ErrSlotNotFound indicates a placement for a row that is not a fillable slot.
	ErrSlotNotFound = errors.New("matching slot not found")
	// ErrPresenceKeyMissing is returned for heartbeats without a session or user id.
	ErrPresenceKeyMissing = errors.New("presence heartbeat needs a session or user id")
)
