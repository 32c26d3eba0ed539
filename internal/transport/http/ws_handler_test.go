package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exam-session-service/internal/app"
	"exam-session-service/internal/domain"
	"exam-session-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.ResultRepository, *memory.ProgressStore) {
	t.Helper()
	results := memory.NewResultRepository()
	progress := memory.NewProgressStore()
	service := app.NewExamService(app.Dependencies{
		Sessions: memory.NewSessionStore(),
		Banks:    memory.NewBankRepository(memory.NewStaticBankLoader(sampleBanks()), time.Minute),
		Progress: progress,
		Results:  results,
		Unlocks:  memory.NewUnlockRepository(),
		Presence: memory.NewPresenceRegistry(domain.DefaultPresenceTTL()),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/exam", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, results, progress
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws/exam?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketExamFlow(t *testing.T) {
	server, results, _ := newTestServer(t)
	conn := dial(t, server, "quizId=quiz-1&userId=u1&name=Alice&difficulty=easy")

	msg := readNext(conn, t, "state")
	if msg.Payload["sessionId"] == "" || msg.Payload["total"] != float64(1) {
		t.Fatalf("unexpected initial state %+v", msg.Payload)
	}
	if question, ok := msg.Payload["question"].(map[string]any); !ok || question["id"] != "q1" {
		t.Fatalf("expected q1 to be shown, got %+v", msg.Payload["question"])
	}

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"optionId": "o2"}})
	msg = readNext(conn, t, "state")
	if msg.Payload["answer"] != "o2" {
		t.Fatalf("expected answer recorded, got %+v", msg.Payload)
	}

	send(t, conn, map[string]any{"type": "next"})
	var result map[string]any
	for i := 0; i < 4 && result == nil; i++ {
		m := readNext(conn, t, "")
		if m.Type == "result" {
			result = m.Payload
		}
	}
	if result == nil {
		t.Fatalf("expected a result message")
	}
	if result["submitted"] != true {
		t.Fatalf("expected submitted result, got %+v", result)
	}
	if score := result["result"].(map[string]any)["score"]; score != float64(1) {
		t.Fatalf("expected score 1, got %v", score)
	}
	if len(results.Results()) != 1 {
		t.Fatalf("expected one stored result, got %d", len(results.Results()))
	}
}

func TestWebSocketReportsErrors(t *testing.T) {
	server, _, _ := newTestServer(t)
	conn := dial(t, server, "quizId=quiz-1&userId=u1&name=Alice")
	readNext(conn, t, "state")

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"optionId": "zz"}})
	msg := readNext(conn, t, "error")
	if msg.Payload["message"] != domain.ErrOptionNotFound.Error() {
		t.Fatalf("unexpected error %+v", msg.Payload)
	}

	send(t, conn, map[string]any{"type": "dance"})
	readNext(conn, t, "error")
}

func TestWebSocketResumesBySessionID(t *testing.T) {
	server, _, progress := newTestServer(t)
	first := dial(t, server, "sessionId=tab-1&quizId=quiz-1&userId=u1&name=Alice")
	readNext(first, t, "state")
	send(t, first, map[string]any{"type": "answer", "payload": map[string]any{"optionId": "o3"}})
	readNext(first, t, "state")
	first.Close()

	if _, err := progress.Load(context.Background(), "tab-1"); err != nil {
		t.Fatalf("expected progress persisted: %v", err)
	}

	second := dial(t, server, "sessionId=tab-1")
	msg := readNext(second, t, "state")
	if msg.Payload["sessionId"] != "tab-1" || msg.Payload["answer"] != "o3" {
		t.Fatalf("expected resumed state, got %+v", msg.Payload)
	}

	send(t, second, map[string]any{"type": "abandon"})
	_ = second.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := second.ReadMessage(); err != nil {
			break
		}
	}
	if _, err := progress.Load(context.Background(), "tab-1"); err == nil {
		t.Fatalf("expected progress cleared after abandon")
	}
}

func TestWebSocketRejectsMissingParams(t *testing.T) {
	server, _, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/ws/exam?quizId=quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%+v)", expect, msg.Type, msg.Payload)
	}
	return msg
}

func sampleBanks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		"quiz-1": {
			QuizID: "quiz-1",
			Name:   "Arithmetic",
			Entries: []domain.QuestionBankEntry{
				{
					ID:            "q1",
					Question:      "What is 2 + 2?",
					Options:       map[string]string{"o1": "3", "o2": "4", "o3": "5"},
					CorrectAnswer: "o2",
				},
			},
		},
	}
}
