package authapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"halalai/cmd/internal/auth/token"
)

func newTokenService(t *testing.T, lifetime time.Duration) *token.Service {
	t.Helper()
	svc, err := token.NewService(token.Config{
		Secret:   []byte(strings.Repeat("s", 32)),
		Lifetime: lifetime,
	})
	if err != nil {
		t.Fatalf("token.NewService: %v", err)
	}
	return svc
}

func TestRequireAuth(t *testing.T) {
	tokens := newTokenService(t, time.Hour)

	var gotSubject string
	var gotUserID int64
	protected := RequireAuth(tokens, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = SubjectFromContext(r.Context())
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tok, err := tokens.Issue("alice", 7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotSubject != "alice" || gotUserID != 7 {
		t.Fatalf("context carries %q/%d, want alice/7", gotSubject, gotUserID)
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	tokens := newTokenService(t, time.Hour)
	protected := RequireAuth(tokens, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	expired := newTokenService(t, -time.Minute)
	expiredTok, err := expired.Issue("alice", 7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer garbage"},
		{"expired token", "Bearer " + expiredTok},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}
