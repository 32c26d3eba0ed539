package redis

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"exam-session-service/internal/app"
	"exam-session-service/internal/domain"
	"exam-session-service/internal/exam"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, client := newServer(t)
	store := NewSessionStore(client, time.Minute, "node-a")

	attempt, err := exam.NewAttemptWithSource(
		exam.Identity{SessionID: "s1", QuizID: "quiz-1"},
		sampleBank().Entries,
		domain.MustDifficulty(domain.DifficultyMiddle),
		exam.Config{},
		rand.New(rand.NewSource(1)),
		time.Now,
	)
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}
	store.Put(app.NewSession(attempt, exam.NewTicker(time.Second)))

	if !mr.Exists("exam:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if node, ok := store.Owner(context.Background(), "s1"); !ok || node != "node-a" {
		t.Fatalf("expected node-a to own s1, got %q", node)
	}
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected local session")
	}

	store.Delete("s1")
	if mr.Exists("exam:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Owner(context.Background(), "s1"); ok {
		t.Fatalf("expected no owner after delete")
	}
}
