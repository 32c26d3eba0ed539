package app

import (
	"sync"

	"exam-session-service/internal/domain"
	"exam-session-service/internal/exam"
)

// Session is a live exam attempt: the attempt itself, its countdown and its
// presence heartbeat. Every mutation, timer ticks included, happens under mu.
// A closed session has been abandoned or replaced by a retake and must not
// write anything again.
type Session struct {
	id      string
	mu      sync.Mutex
	attempt *exam.Attempt
	ticker  *exam.Ticker
	beat    *exam.Ticker
	beatGen uint64
	outcome *domain.Outcome
	closed  bool
	hub     *subscriberHub
}

// NewSession wraps an attempt; exported for infrastructure tests that seed sessions.
func NewSession(attempt *exam.Attempt, ticker *exam.Ticker) *Session {
	return &Session{
		id:      attempt.State().SessionID,
		attempt: attempt,
		ticker:  ticker,
	}
}

// ID is the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current client view.
func (s *Session) Snapshot() domain.ExamSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// stopLocked cancels the countdown and the heartbeat; late ticks become no-ops.
func (s *Session) stopLocked() {
	s.ticker.Stop()
	if s.beat != nil {
		s.beat.Stop()
	}
}

// closeLocked retires the session for good. Subscribers are left alone: they
// belong to the session id, not to this attempt.
func (s *Session) closeLocked() {
	s.closed = true
	s.stopLocked()
}

func (s *Session) broadcastLocked() domain.ExamSnapshot {
	snap := s.snapshotLocked()
	if s.hub != nil {
		s.hub.publish(s.id, snap)
	}
	return snap
}

func (s *Session) snapshotLocked() domain.ExamSnapshot {
	snap := s.attempt.Snapshot()
	if s.outcome != nil {
		out := *s.outcome
		snap.Outcome = &out
	}
	return snap
}

// subscriberHub holds snapshot channels per session id, so a retake keeps
// the clients that watched the attempt it replaced. Its lock is only ever
// taken with (or without) a session lock held, never the other way round.
type subscriberHub struct {
	mu   sync.Mutex
	subs map[string]map[chan domain.ExamSnapshot]struct{}
}

func newSubscriberHub() *subscriberHub {
	return &subscriberHub{subs: make(map[string]map[chan domain.ExamSnapshot]struct{})}
}

func (h *subscriberHub) add(id string, initial domain.ExamSnapshot) (<-chan domain.ExamSnapshot, func()) {
	ch := make(chan domain.ExamSnapshot, 8)
	ch <- initial

	h.mu.Lock()
	set, ok := h.subs[id]
	if !ok {
		set = make(map[chan domain.ExamSnapshot]struct{})
		h.subs[id] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		set, ok := h.subs[id]
		if !ok {
			return
		}
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
	return ch, cancel
}

func (h *subscriberHub) publish(id string, snap domain.ExamSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[id] {
		select {
		case ch <- snap:
		default:
			// Slow reader: drop its oldest snapshot rather than block the session.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// closeAll ends every subscription of id.
func (h *subscriberHub) closeAll(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[id] {
		close(ch)
	}
	delete(h.subs, id)
}
