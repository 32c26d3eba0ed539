package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"exam-session-service/internal/domain"
	"exam-session-service/internal/infra/memory"
)

func TestPresenceHandlerLifecycle(t *testing.T) {
	reg := memory.NewPresenceRegistry(domain.DefaultPresenceTTL())
	server := httptest.NewServer(NewPresenceHandler(reg))
	defer server.Close()

	body := `{"sessionId":"tab-1","userId":"u1","name":"Alice","testId":"quiz-1","progress":3,"total":10}`
	resp, err := http.Post(server.URL, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var rec domain.PresenceRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	resp.Body.Close()
	if rec.Status != domain.StatusInTest || rec.Device != "desktop" || rec.Theme != "light" || rec.Progress != 3 {
		t.Fatalf("unexpected record %+v", rec)
	}

	resp, err = http.Get(server.URL + "?testId=quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var live []domain.PresenceRecord
	if err := json.NewDecoder(resp.Body).Decode(&live); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if len(live) != 1 || live[0].UserID != "u1" {
		t.Fatalf("unexpected live list %+v", live)
	}

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"?userId=u1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if live, _ := reg.Query(context.Background(), ""); len(live) != 0 {
		t.Fatalf("expected empty registry, got %+v", live)
	}
}

func TestPresenceHandlerRejectsKeylessHeartbeat(t *testing.T) {
	server := httptest.NewServer(NewPresenceHandler(memory.NewPresenceRegistry(domain.DefaultPresenceTTL())))
	defer server.Close()

	resp, err := http.Post(server.URL, "application/json", strings.NewReader(`{"name":"ghost"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, server.URL, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
