package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"exam-session-service/internal/app"
	"exam-session-service/internal/domain"
	"github.com/gorilla/websocket"
)

// ExamService is the slice of the exam use cases the websocket channel drives.
type ExamService interface {
	Start(ctx context.Context, req app.StartRequest) (domain.ExamSnapshot, error)
	Resume(ctx context.Context, sessionID string) (domain.ExamSnapshot, error)
	Answer(ctx context.Context, sessionID, optionID string) (domain.ExamSnapshot, error)
	PlaceMatch(ctx context.Context, sessionID, slotID, pick string) (domain.ExamSnapshot, error)
	UseHint(ctx context.Context, sessionID string) (domain.ExamSnapshot, error)
	Next(ctx context.Context, sessionID string) (domain.ExamSnapshot, error)
	Finish(ctx context.Context, sessionID string) (domain.Outcome, error)
	Abandon(ctx context.Context, sessionID string) error
	Subscribe(ctx context.Context, sessionID string) (<-chan domain.ExamSnapshot, func(), error)
}

type WSHandler struct {
	service  ExamService
	upgrader websocket.Upgrader
}

func NewWSHandler(service ExamService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	OptionID string `json:"optionId"`
}

type matchPayload struct {
	SlotID string `json:"slotId"`
	Pick   string `json:"pick"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and runs one exam attempt over
// the connection. A known sessionId resumes; anything else starts fresh.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := app.StartRequest{
		SessionID:  q.Get("sessionId"),
		UserID:     q.Get("userId"),
		Name:       q.Get("name"),
		QuizID:     q.Get("quizId"),
		Difficulty: q.Get("difficulty"),
	}
	if req.Difficulty == "" {
		req.Difficulty = string(domain.DifficultyEasy)
	}
	if req.SessionID == "" && (req.QuizID == "" || req.UserID == "" || req.Name == "") {
		http.Error(w, "missing quizId, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sessionID, err := h.open(ctx, req)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}
	fail := func(err error) {
		push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}

	go func() {
		defer close(updatesDone)
		var lastResult *domain.Outcome
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				if !push(outboundMessage[any]{Type: "state", Payload: snap}) {
					return
				}
				if snap.Outcome != nil && (lastResult == nil || lastResult.Submitted != snap.Outcome.Submitted) {
					lastResult = snap.Outcome
					if !push(outboundMessage[any]{Type: "result", Payload: *snap.Outcome}) {
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

read:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(errors.New("invalid answer payload"))
				continue
			}
			if _, err := h.service.Answer(ctx, sessionID, payload.OptionID); err != nil {
				fail(err)
			}
		case "match":
			var payload matchPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(errors.New("invalid match payload"))
				continue
			}
			if _, err := h.service.PlaceMatch(ctx, sessionID, payload.SlotID, payload.Pick); err != nil {
				fail(err)
			}
		case "hint":
			if _, err := h.service.UseHint(ctx, sessionID); err != nil {
				fail(err)
			}
		case "next":
			if _, err := h.service.Next(ctx, sessionID); err != nil {
				fail(err)
			}
		case "finish":
			if _, err := h.service.Finish(ctx, sessionID); err != nil {
				fail(err)
			}
		case "abandon":
			if err := h.service.Abandon(ctx, sessionID); err != nil {
				fail(err)
			}
			break read
		default:
			fail(errors.New("unsupported message type"))
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// open resumes a persisted attempt or starts a new one and returns its id.
func (h *WSHandler) open(ctx context.Context, req app.StartRequest) (string, error) {
	if req.SessionID != "" {
		snap, err := h.service.Resume(ctx, req.SessionID)
		if err == nil {
			return snap.SessionID, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) || req.QuizID == "" {
			return "", err
		}
	}
	snap, err := h.service.Start(ctx, req)
	if err != nil {
		return "", err
	}
	return snap.SessionID, nil
}
