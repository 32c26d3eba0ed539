package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-session-service/internal/domain"
)

func TestProgressStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewProgressStore()

	state := &domain.SessionState{
		SessionID:            "s1",
		Difficulty:           domain.DifficultyImpossible,
		Questions:            []domain.PreparedQuestion{{QuestionBankEntry: sampleBank().Entries[0]}},
		CurrentQuestionIndex: 0,
		Answers:              map[int]string{0: "o2"},
		RevealedHints:        map[int][]string{0: {"o1"}},
		UnlockedLeagues:      []domain.LeagueTier{domain.LeagueLegendary},
		TimeLeftSeconds:      6,
		StartTime:            time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	state.Answers[0] = "mutated"

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Answers[0] != "o2" {
		t.Fatalf("expected stored copy to be isolated, got %q", loaded.Answers[0])
	}
	if loaded.TimeLeftSeconds != 6 || loaded.RevealedHints[0][0] != "o1" {
		t.Fatalf("unexpected state %+v", loaded)
	}
	if len(loaded.UnlockedLeagues) != 1 || loaded.UnlockedLeagues[0] != domain.LeagueLegendary {
		t.Fatalf("unexpected unlocks %v", loaded.UnlockedLeagues)
	}
	if loaded.Questions[0].Options["o2"] != "4" {
		t.Fatalf("expected prepared questions to survive, got %+v", loaded.Questions)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
