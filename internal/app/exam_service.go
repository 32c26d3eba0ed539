package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"exam-session-service/internal/domain"
	"exam-session-service/internal/exam"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Dependencies are the collaborators an ExamService needs.
type Dependencies struct {
	Sessions SessionRepository
	Banks    BankRepository
	Progress ProgressStore
	Results  ResultRepository
	Unlocks  UnlockRepository
	Presence PresenceRegistry
}

// Option tunes an ExamService.
type Option func(*ExamService)

// WithTickInterval sets the countdown granularity (one second in production).
func WithTickInterval(d time.Duration) Option {
	return func(s *ExamService) { s.tick = d }
}

// WithHeartbeatInterval sets how often a live attempt refreshes its in-test
// presence record while the user is idle.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(s *ExamService) { s.heartbeat = d }
}

// WithClock injects the clock used for attempt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ExamService) { s.now = now }
}

// WithRandSource injects the randomness used for shuffles and hints.
func WithRandSource(src func() *rand.Rand) Option {
	return func(s *ExamService) { s.rnd = src }
}

// ExamService contains the exam attempt use cases.
type ExamService struct {
	sessions SessionRepository
	banks    BankRepository
	progress ProgressStore
	results  ResultRepository
	unlocks  UnlockRepository
	presence PresenceRegistry

	tick      time.Duration
	heartbeat time.Duration
	now       func() time.Time
	rnd       func() *rand.Rand
	sf        singleflight.Group
	hub       *subscriberHub
}

func NewExamService(deps Dependencies, opts ...Option) *ExamService {
	s := &ExamService{
		sessions: deps.Sessions,
		banks:    deps.Banks,
		progress: deps.Progress,
		results:  deps.Results,
		unlocks:  deps.Unlocks,
		presence: deps.Presence,
		tick:      time.Second,
		heartbeat: time.Minute,
		now:       time.Now,
		hub:       newSubscriberHub(),
		rnd: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRequest describes a new attempt.
type StartRequest struct {
	SessionID      string
	UserID         string
	Name           string
	QuizID         string
	Difficulty     string
	ExtraHints     int
	UnlimitedHints bool
}

// Start prepares a fresh attempt. Starting with the id of a live session is
// a retake: the old attempt is closed and replaced, and its subscribers
// follow the new one.
func (s *ExamService) Start(ctx context.Context, req StartRequest) (domain.ExamSnapshot, error) {
	diff, err := domain.LookupDifficulty(req.Difficulty)
	if err != nil {
		return domain.ExamSnapshot{}, err
	}
	bank, err := s.banks.GetBank(ctx, req.QuizID)
	if err != nil {
		return domain.ExamSnapshot{}, err
	}

	var unlocked []domain.LeagueTier
	if s.unlocks != nil && req.UserID != "" {
		unlocked, err = s.unlocks.Unlocked(ctx, req.UserID)
		if err != nil {
			log.Printf("load unlocks for %s: %v", req.UserID, err)
		}
	}

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	quizName := bank.Name
	if quizName == "" {
		quizName = req.QuizID
	}
	attempt, err := exam.NewAttemptWithSource(
		exam.Identity{SessionID: req.SessionID, UserID: req.UserID, Name: req.Name, QuizID: req.QuizID, QuizName: quizName},
		bank.Entries,
		diff,
		exam.Config{UnlimitedHints: req.UnlimitedHints, ExtraHints: req.ExtraHints, UnlockedLeagues: unlocked},
		s.rnd(),
		s.now,
	)
	if err != nil {
		return domain.ExamSnapshot{}, err
	}

	session := s.newSession(attempt)
	session.mu.Lock()
	defer session.mu.Unlock()
	old, retake := s.sessions.Get(req.SessionID)
	s.sessions.Put(session)
	if retake {
		old.mu.Lock()
		old.closeLocked()
		old.mu.Unlock()
	}
	s.armLocked(session)
	return s.afterMutationLocked(ctx, session), nil
}

// Resume returns the live session, rebuilding it from persisted progress
// after a reload or restart.
func (s *ExamService) Resume(ctx context.Context, sessionID string) (domain.ExamSnapshot, error) {
	session, err := s.live(ctx, sessionID)
	if err != nil {
		return domain.ExamSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Answer records an option for the current question.
func (s *ExamService) Answer(ctx context.Context, sessionID, optionID string) (domain.ExamSnapshot, error) {
	return s.mutate(ctx, sessionID, func(a *exam.Attempt) error {
		return a.Answer(a.Current(), optionID)
	})
}

// PlaceMatch places a pick into a matching row of the current question.
func (s *ExamService) PlaceMatch(ctx context.Context, sessionID, slotID, pick string) (domain.ExamSnapshot, error) {
	return s.mutate(ctx, sessionID, func(a *exam.Attempt) error {
		return a.PlaceMatch(a.Current(), slotID, pick)
	})
}

// UseHint eliminates one wrong option of the current question, if the
// budget allows. A hint that cannot be spent leaves the state untouched.
func (s *ExamService) UseHint(ctx context.Context, sessionID string) (domain.ExamSnapshot, error) {
	return s.mutate(ctx, sessionID, func(a *exam.Attempt) error {
		_, _, err := a.UseHint(a.Current())
		return err
	})
}

// Next leaves the current question; leaving the last one finishes the attempt.
func (s *ExamService) Next(ctx context.Context, sessionID string) (domain.ExamSnapshot, error) {
	return s.mutate(ctx, sessionID, func(a *exam.Attempt) error {
		_, err := a.Next()
		return err
	})
}

// Finish ends the attempt and submits its result. When submission fails the
// attempt stays persisted and Finish can be called again.
func (s *ExamService) Finish(ctx context.Context, sessionID string) (domain.Outcome, error) {
	session, err := s.acquire(ctx, sessionID)
	if err != nil {
		return domain.Outcome{}, err
	}
	defer session.mu.Unlock()
	return s.completeLocked(ctx, session)
}

// Abandon drops the attempt without scoring it and clears its progress and
// presence. Subscribers are closed. The live session is closed before
// anything is deleted so an in-flight tick cannot write it back.
func (s *ExamService) Abandon(ctx context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	for ok {
		session.mu.Lock()
		if !session.closed {
			break
		}
		session.mu.Unlock()
		cur, found := s.sessions.Get(sessionID)
		if !found || cur == session {
			ok = false
			break
		}
		session = cur
	}
	if ok {
		defer session.mu.Unlock()
		session.closeLocked()
	}

	s.hub.closeAll(sessionID)
	if err := s.presence.Delete(ctx, sessionID); err != nil {
		log.Printf("remove presence for %s: %v", sessionID, err)
	}
	err := s.progress.Delete(ctx, sessionID)
	if ok {
		s.forget(session)
	}
	return err
}

// Subscribe returns a channel of snapshots for a session, pushed after every
// mutation and timer tick. The subscription outlives retakes of the same id
// and is closed when the attempt is abandoned. The caller must invoke cancel
// to avoid leaks.
func (s *ExamService) Subscribe(ctx context.Context, sessionID string) (<-chan domain.ExamSnapshot, func(), error) {
	session, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	defer session.mu.Unlock()
	ch, cancel := s.hub.add(sessionID, session.snapshotLocked())
	return ch, cancel, nil
}

func (s *ExamService) mutate(ctx context.Context, sessionID string, fn func(*exam.Attempt) error) (domain.ExamSnapshot, error) {
	session, err := s.acquire(ctx, sessionID)
	if err != nil {
		return domain.ExamSnapshot{}, err
	}
	defer session.mu.Unlock()

	before := session.attempt.Current()
	if err := fn(session.attempt); err != nil {
		return session.snapshotLocked(), err
	}
	if session.attempt.Finished() {
		_, err := s.completeLocked(ctx, session)
		return session.snapshotLocked(), err
	}
	if session.attempt.Current() != before {
		s.armLocked(session)
	}
	return s.afterMutationLocked(ctx, session), nil
}

// live finds the in-process session or restores it from progress. Concurrent
// restores of the same id collapse into one.
func (s *ExamService) live(ctx context.Context, sessionID string) (*Session, error) {
	if session, ok := s.sessions.Get(sessionID); ok {
		return session, nil
	}
	v, err, _ := s.sf.Do(sessionID, func() (interface{}, error) {
		if session, ok := s.sessions.Get(sessionID); ok {
			return session, nil
		}
		state, err := s.progress.Load(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		attempt, err := exam.RestoreWithSource(state, s.rnd(), s.now)
		if err != nil {
			return nil, fmt.Errorf("restore session %s: %w", sessionID, err)
		}
		session := s.newSession(attempt)
		s.sessions.Put(session)
		session.mu.Lock()
		s.armLocked(session)
		session.mu.Unlock()
		return session, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// acquire returns the live session for id with its lock held. A session
// closed under the caller's feet is looked up again; once nothing replaces
// it the id is gone.
func (s *ExamService) acquire(ctx context.Context, sessionID string) (*Session, error) {
	for {
		session, err := s.live(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		session.mu.Lock()
		if !session.closed {
			return session, nil
		}
		session.mu.Unlock()
		if cur, ok := s.sessions.Get(sessionID); ok && cur == session {
			return nil, domain.ErrSessionNotFound
		}
	}
}

// forget drops session from the live set unless a retake already replaced it.
func (s *ExamService) forget(session *Session) {
	if cur, ok := s.sessions.Get(session.id); ok && cur == session {
		s.sessions.Delete(session.id)
	}
}

func (s *ExamService) newSession(attempt *exam.Attempt) *Session {
	session := NewSession(attempt, exam.NewTicker(s.tick))
	session.beat = exam.NewTicker(s.heartbeat)
	session.hub = s.hub
	return session
}

// armLocked replaces the countdown with a fresh one for the current question
// and keeps the presence heartbeat running while the attempt is open.
func (s *ExamService) armLocked(session *Session) {
	if session.attempt.Finished() {
		session.stopLocked()
		return
	}
	if !session.beat.Live(session.beatGen) {
		session.beatGen = session.beat.Arm(context.Background(), func(gen uint64) {
			s.onBeat(session, gen)
		})
	}
	if !session.attempt.Timed() {
		session.ticker.Stop()
		return
	}
	session.ticker.Arm(context.Background(), func(gen uint64) {
		s.onTick(session, gen)
	})
}

// onBeat refreshes presence only; idle time on an untimed question changes
// nothing else.
func (s *ExamService) onBeat(session *Session, gen uint64) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed || !session.beat.Live(gen) || session.attempt.Finished() {
		return
	}
	s.heartbeatLocked(context.Background(), session)
}

func (s *ExamService) onTick(session *Session, gen uint64) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed || !session.ticker.Live(gen) || session.attempt.Finished() {
		return
	}

	res := session.attempt.Tick()
	if !res.Applied {
		return
	}
	ctx := context.Background()
	if res.Finished {
		if _, err := s.completeLocked(ctx, session); err != nil {
			log.Printf("finish timed-out session %s: %v", session.id, err)
		}
		return
	}
	if res.Advanced {
		s.armLocked(session)
	}
	s.afterMutationLocked(ctx, session)
}

// afterMutationLocked writes progress through, refreshes presence and pushes
// the new snapshot to subscribers.
func (s *ExamService) afterMutationLocked(ctx context.Context, session *Session) domain.ExamSnapshot {
	if session.closed {
		return session.snapshotLocked()
	}
	if err := s.progress.Save(ctx, session.attempt.State()); err != nil {
		log.Printf("save progress for %s: %v", session.id, err)
	}
	s.heartbeatLocked(ctx, session)
	return session.broadcastLocked()
}

func (s *ExamService) heartbeatLocked(ctx context.Context, session *Session) {
	state := session.attempt.State()
	status := domain.StatusInTest
	progress, total := state.Answered(), len(state.Questions)
	if _, err := s.presence.Upsert(ctx, domain.Heartbeat{
		SessionID:     state.SessionID,
		UserID:        state.UserID,
		Name:          state.Name,
		TestID:        state.QuizID,
		Status:        &status,
		Progress:      &progress,
		Total:         &total,
		CurrentAnswer: state.Answers[state.CurrentQuestionIndex],
	}); err != nil && !errors.Is(err, domain.ErrPresenceKeyMissing) {
		log.Printf("presence heartbeat for %s: %v", session.id, err)
	}
}

// completeLocked finishes the attempt and hands the result to the
// persistence collaborator. Local state is only cleared once that succeeds.
func (s *ExamService) completeLocked(ctx context.Context, session *Session) (domain.Outcome, error) {
	session.stopLocked()
	if session.outcome != nil && session.outcome.Submitted {
		return *session.outcome, nil
	}

	out := session.attempt.Finish()
	if err := s.results.SaveResult(ctx, session.attempt.Submission(out)); err != nil {
		session.outcome = &out
		if perr := s.progress.Save(ctx, session.attempt.State()); perr != nil {
			log.Printf("save progress for %s: %v", session.id, perr)
		}
		session.broadcastLocked()
		return out, fmt.Errorf("submit result: %w", err)
	}

	out.Submitted = true
	session.outcome = &out
	state := session.attempt.State()
	if out.Unlocked != nil && s.unlocks != nil && state.UserID != "" {
		if err := s.unlocks.Unlock(ctx, state.UserID, *out.Unlocked); err != nil {
			log.Printf("record unlock %s for %s: %v", out.Unlocked, state.UserID, err)
		}
	}
	if err := s.progress.Delete(ctx, session.id); err != nil {
		log.Printf("clear progress for %s: %v", session.id, err)
	}
	if err := s.presence.Delete(ctx, session.id); err != nil {
		log.Printf("remove presence for %s: %v", session.id, err)
	}
	session.broadcastLocked()
	s.forget(session)
	return out, nil
}
