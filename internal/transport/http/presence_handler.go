package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"exam-session-service/internal/app"
	"exam-session-service/internal/domain"
)

// PresenceHandler exposes the presence registry over plain HTTP:
// POST heartbeats, GET the live list, DELETE a tab or a whole user.
type PresenceHandler struct {
	registry app.PresenceRegistry
}

func NewPresenceHandler(registry app.PresenceRegistry) *PresenceHandler {
	return &PresenceHandler{registry: registry}
}

func (h *PresenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.heartbeat(w, r)
	case http.MethodGet:
		h.query(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PresenceHandler) heartbeat(w http.ResponseWriter, r *http.Request) {
	var hb domain.Heartbeat
	if err := json.NewDecoder(r.Body).Decode(&hb); err != nil {
		http.Error(w, "invalid heartbeat", http.StatusBadRequest)
		return
	}
	rec, err := h.registry.Upsert(r.Context(), hb)
	if errors.Is(err, domain.ErrPresenceKeyMissing) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("presence upsert: %v", err)
		http.Error(w, "presence unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rec)
}

func (h *PresenceHandler) query(w http.ResponseWriter, r *http.Request) {
	records, err := h.registry.Query(r.Context(), r.URL.Query().Get("testId"))
	if err != nil {
		log.Printf("presence query: %v", err)
		http.Error(w, "presence unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

func (h *PresenceHandler) remove(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var err error
	switch {
	case q.Get("key") != "":
		err = h.registry.Delete(r.Context(), q.Get("key"))
	case q.Get("userId") != "":
		err = h.registry.DeleteAllForUser(r.Context(), q.Get("userId"))
	default:
		http.Error(w, "missing key or userId", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("presence delete: %v", err)
		http.Error(w, "presence unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
