package httpserver_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "smart_places/internal/adapters/http_server"
)

func TestTimeout_AnswersProblemJSON(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	h := httpserver.Timeout(20 * time.Millisecond)(slow)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/places", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %q", ct)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `"status":503`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestTimeout_LeavesFastResponsesAlone(t *testing.T) {
	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"ready":false}`)
	})
	h := httpserver.Timeout(time.Second)(fast)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusServiceUnavailable || rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("handler response rewritten: %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if rr.Body.String() != `{"ready":false}` {
		t.Fatalf("body = %q", rr.Body.String())
	}
}
