package token

import (
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T, lifetime time.Duration, at time.Time) *Service {
	t.Helper()
	s, err := NewService(
		Config{Secret: testSecret, Lifetime: lifetime},
		WithClock(testClock(at)),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func TestService_ValidateAfterIssue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, time.Hour, now)

	tok, err := s.Issue("alice", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if !s.Validate(tok, "alice") {
		t.Fatalf("expected freshly issued token to validate")
	}
	if s.Validate(tok, "bob") {
		t.Fatalf("token must not validate for a different subject")
	}
	if s.IsExpired(tok) {
		t.Fatalf("fresh token must not be expired")
	}

	sub, err := s.Subject(tok)
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject mismatch: %q", sub)
	}

	uid, err := s.UserID(tok)
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if uid != 1 {
		t.Fatalf("user id mismatch: %d", uid)
	}
}

func TestService_NegativeLifetimeExpiresImmediately(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, -time.Second, now)

	tok, err := s.Issue("alice", 7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if !s.IsExpired(tok) {
		t.Fatalf("expected token with negative lifetime to be expired")
	}
	if s.Validate(tok, "alice") {
		t.Fatalf("expired token must not validate")
	}
	if _, err := s.Subject(tok); err == nil {
		t.Fatalf("strict Subject must fail for expired token")
	}

	// The refresh accessors still recover the original claims.
	sub, ok := s.SubjectEvenIfExpired(tok)
	if !ok || sub != "alice" {
		t.Fatalf("SubjectEvenIfExpired: ok=%v sub=%q", ok, sub)
	}
	uid, ok := s.UserIDEvenIfExpired(tok)
	if !ok || uid != 7 {
		t.Fatalf("UserIDEvenIfExpired: ok=%v uid=%d", ok, uid)
	}
}

func TestService_EvenIfExpiredRejectsTampering(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, time.Hour, now)

	tok, err := s.Issue("alice", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	i := strings.LastIndexByte(tok, '.') + 1
	sig := []byte(tok[i:])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := tok[:i] + string(sig)

	if _, ok := s.SubjectEvenIfExpired(tampered); ok {
		t.Fatalf("tampered token must not yield a subject")
	}
	if _, ok := s.UserIDEvenIfExpired(tampered); ok {
		t.Fatalf("tampered token must not yield a user id")
	}
	if s.Validate(tampered, "alice") {
		t.Fatalf("tampered token must not validate")
	}
}

func TestService_GarbageFailsClosed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, time.Hour, now)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if !s.IsExpired(tok) {
			t.Fatalf("IsExpired(%q): unparseable token must report expired", tok)
		}
		if s.Validate(tok, "alice") {
			t.Fatalf("Validate(%q): unparseable token must not validate", tok)
		}
		if _, ok := s.SubjectEvenIfExpired(tok); ok {
			t.Fatalf("SubjectEvenIfExpired(%q): must not recover a subject", tok)
		}
	}
}

func TestService_ExpiryCrossesClockBoundary(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	issuer := newTestService(t, time.Hour, issued)
	tok, err := issuer.Issue("alice", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Same secret, later clock: the token has aged past its lifetime.
	later := newTestService(t, time.Hour, issued.Add(2*time.Hour))
	if !later.IsExpired(tok) {
		t.Fatalf("expected token to be expired two hours later")
	}
	if sub, ok := later.SubjectEvenIfExpired(tok); !ok || sub != "alice" {
		t.Fatalf("expired token should still expose its subject for refresh")
	}
}
