package app

import (
	"context"

	"exam-session-service/internal/domain"
)

// SessionRepository keeps the live, in-process exam sessions (timers
// included).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, quizID string) (domain.QuestionBank, error)
}

// ProgressStore persists attempt state so a session survives a reload.
type ProgressStore interface {
	Save(ctx context.Context, state *domain.SessionState) error
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)
	Delete(ctx context.Context, sessionID string) error
}

// ResultRepository is the persistence collaborator for finished attempts.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.ResultSubmission) error
}

// UnlockRepository records one-time league unlocks per user.
type UnlockRepository interface {
	Unlocked(ctx context.Context, userID string) ([]domain.LeagueTier, error)
	Unlock(ctx context.Context, userID string, tier domain.LeagueTier) error
}

// PresenceRegistry tracks who is active on which quiz.
type PresenceRegistry interface {
	Upsert(ctx context.Context, hb domain.Heartbeat) (domain.PresenceRecord, error)
	Query(ctx context.Context, testID string) ([]domain.PresenceRecord, error)
	Delete(ctx context.Context, key string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
