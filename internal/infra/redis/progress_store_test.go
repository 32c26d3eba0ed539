package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-session-service/internal/domain"
)

func TestProgressStoreRoundTrip(t *testing.T) {
	mr, client := newServer(t)
	store := NewProgressStore(client, time.Hour)
	ctx := context.Background()

	state := &domain.SessionState{
		SessionID:         "s1",
		QuizID:            "quiz-1",
		Difficulty:        domain.DifficultyImpossible,
		Questions:         []domain.PreparedQuestion{{QuestionBankEntry: sampleBank().Entries[0]}},
		Answers:           map[int]string{0: "o1"},
		BankedTimeSeconds: 5,
		TimeLeftSeconds:   13,
	}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("exam:progress:s1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.TimeLeftSeconds != 13 || loaded.BankedTimeSeconds != 5 || loaded.Answers[0] != "o1" {
		t.Fatalf("unexpected state %+v", loaded)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}
