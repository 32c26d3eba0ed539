package app

import (
	"sort"
	"time"

	"exam-session-service/internal/domain"
)

// ApplyHeartbeat builds the stored record for a heartbeat. Status is taken
// from the heartbeat when given, otherwise in-test when a quiz id is present
// and browsing when not.
func ApplyHeartbeat(hb domain.Heartbeat, now time.Time) (domain.PresenceRecord, error) {
	key := hb.Key()
	if key == "" {
		return domain.PresenceRecord{}, domain.ErrPresenceKeyMissing
	}
	userID := hb.UserID
	if userID == "" {
		userID = key
	}

	rec := domain.PresenceRecord{
		Key:           key,
		UserID:        userID,
		Name:          hb.Name,
		TestID:        hb.TestID,
		Status:        domain.StatusBrowsing,
		Device:        "desktop",
		Theme:         "light",
		Country:       hb.Country,
		CurrentAnswer: hb.CurrentAnswer,
		LastUpdated:   now,
	}
	if hb.TestID != "" {
		rec.Status = domain.StatusInTest
	}
	if hb.Status != nil && *hb.Status != "" {
		rec.Status = *hb.Status
	}
	if hb.Progress != nil {
		rec.Progress = *hb.Progress
	}
	if hb.Total != nil {
		rec.Total = *hb.Total
	}
	if hb.Device != nil && *hb.Device != "" {
		rec.Device = *hb.Device
	}
	if hb.Stars != nil {
		rec.Stars = *hb.Stars
	}
	if hb.Theme != nil && *hb.Theme != "" {
		rec.Theme = *hb.Theme
	}
	return rec, nil
}

// Expired reports whether a record has outlived its status TTL. Records
// without a timestamp are always expired.
func Expired(rec domain.PresenceRecord, ttl domain.PresenceTTL, now time.Time) bool {
	if rec.LastUpdated.IsZero() {
		return true
	}
	return now.Sub(rec.LastUpdated) > ttl.For(rec.Status)
}

// SelectLive filters live records by quiz id (empty matches all) and keeps
// one record per user: highest status priority, then most recent update.
// The result is ordered by user id.
func SelectLive(records []domain.PresenceRecord, testID string) []domain.PresenceRecord {
	best := make(map[string]domain.PresenceRecord)
	for _, rec := range records {
		if testID != "" && rec.TestID != testID {
			continue
		}
		cur, ok := best[rec.UserID]
		if !ok || outranks(rec, cur) {
			best[rec.UserID] = rec
		}
	}

	out := make([]domain.PresenceRecord, 0, len(best))
	for _, rec := range best {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out
}

func outranks(a, b domain.PresenceRecord) bool {
	if a.Status.Priority() != b.Status.Priority() {
		return a.Status.Priority() > b.Status.Priority()
	}
	return a.LastUpdated.After(b.LastUpdated)
}
