package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWithRequestID_Assigns(t *testing.T) {
	var got string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got == "" {
		t.Fatal("expected a request id in context")
	}
	if echoed := rr.Header().Get("X-Request-ID"); echoed != got {
		t.Fatalf("header %q does not match context id %q", echoed, got)
	}
}

func TestWithRequestID_HonorsInbound(t *testing.T) {
	var got string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "upstream-id-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got != "upstream-id-123" {
		t.Fatalf("expected inbound id to be kept, got %q", got)
	}
}

func TestWithRequestLogging_CapturesStatus(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := WithRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), log)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status not passed through: %d", rr.Code)
	}
}

func TestWithMetrics_Observes(t *testing.T) {
	m := NewMetrics()

	h := WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), m)

	req := httptest.NewRequest(http.MethodGet, "/api/verse-of-the-day", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	mfs, err := m.registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "halalai_http_requests_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("request counter not registered")
	}
}

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()
	// Two instances must not collide on registration.
	_ = NewMetrics()
	m.Observe(http.MethodPost, "/api/chat", http.StatusOK, 120*time.Millisecond)
}
