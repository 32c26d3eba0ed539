package domain

import "time"

// PresenceStatus is what a user is currently doing.
type PresenceStatus string

const (
	StatusBrowsing PresenceStatus = "browsing"
	StatusInTest   PresenceStatus = "in-test"
	StatusAFK      PresenceStatus = "afk"
)

// Priority orders statuses when one user has several live records.
func (s PresenceStatus) Priority() int {
	switch s {
	case StatusInTest:
		return 3
	case StatusBrowsing:
		return 2
	case StatusAFK:
		return 1
	default:
		return 0
	}
}

// PresenceRecord is the heartbeat-derived activity of one tab.
type PresenceRecord struct {
	Key           string         `json:"key"`
	UserID        string         `json:"userId"`
	Name          string         `json:"name"`
	TestID        string         `json:"testId,omitempty"`
	Status        PresenceStatus `json:"status"`
	Progress      int            `json:"progress"`
	Total         int            `json:"total"`
	Device        string         `json:"device"`
	Country       string         `json:"country,omitempty"`
	CurrentAnswer string         `json:"currentAnswer,omitempty"`
	Stars         int            `json:"stars"`
	Theme         string         `json:"theme"`
	LastUpdated   time.Time      `json:"lastUpdated"`
}

// Heartbeat is a presence write; nil fields take their defaults.
type Heartbeat struct {
	SessionID     string          `json:"sessionId"`
	UserID        string          `json:"userId"`
	Name          string          `json:"name"`
	TestID        string          `json:"testId,omitempty"`
	Status        *PresenceStatus `json:"status,omitempty"`
	Progress      *int            `json:"progress,omitempty"`
	Total         *int            `json:"total,omitempty"`
	Device        *string         `json:"device,omitempty"`
	Country       string          `json:"country,omitempty"`
	CurrentAnswer string          `json:"currentAnswer,omitempty"`
	Stars         *int            `json:"stars,omitempty"`
	Theme         *string         `json:"theme,omitempty"`
}

// Key is the registry key: the per-tab session id, else the user id.
func (h Heartbeat) Key() string {
	if h.SessionID != "" {
		return h.SessionID
	}
	return h.UserID
}

// PresenceTTL holds the status-dependent record lifetimes.
type PresenceTTL struct {
	AFK      time.Duration
	InTest   time.Duration
	Browsing time.Duration
}

// DefaultPresenceTTL returns afk=120s, in-test=180s, browsing=30s.
func DefaultPresenceTTL() PresenceTTL {
	return PresenceTTL{
		AFK:      120 * time.Second,
		InTest:   180 * time.Second,
		Browsing: 30 * time.Second,
	}
}

// For returns the lifetime of a record in the given status.
func (t PresenceTTL) For(status PresenceStatus) time.Duration {
	switch status {
	case StatusAFK:
		return t.AFK
	case StatusInTest:
		return t.InTest
	default:
		return t.Browsing
	}
}
