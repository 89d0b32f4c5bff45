package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte(strings.Repeat("s", 32))

func testClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestCodec_RejectsShortSecret(t *testing.T) {
	if _, err := NewCodec([]byte("too-short"), nil); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestCodec_EncodeDecodeRoundtrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, err := NewCodec(testSecret, testClock(now))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	tok, err := c.Encode("alice", 42, now, time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	claims, err := c.Decode(tok)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id mismatch: got %d", claims.UserID)
	}
	if !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("issued-at mismatch: got %v", claims.IssuedAt.Time)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Fatalf("expiry mismatch: got %v", claims.ExpiresAt.Time)
	}
}

func TestCodec_ExpiredStillYieldsClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, err := NewCodec(testSecret, testClock(now))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	tok, err := c.Encode("alice", 42, now, -time.Second)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	claims, err := c.Decode(tok)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if claims.Subject != "alice" || claims.UserID != 42 {
		t.Fatalf("expected recoverable claims, got subject=%q uid=%d", claims.Subject, claims.UserID)
	}
}

func TestCodec_TamperedSignatureYieldsNoClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, err := NewCodec(testSecret, testClock(now))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	tok, err := c.Encode("alice", 42, now, time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Flip a byte inside the signature segment.
	i := strings.LastIndexByte(tok, '.') + 1
	sig := []byte(tok[i:])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := tok[:i] + string(sig)

	claims, err := c.Decode(tampered)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if claims.Subject != "" || claims.UserID != 0 {
		t.Fatalf("tampered token must not yield claims, got %+v", claims)
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c1, _ := NewCodec(testSecret, testClock(now))
	c2, _ := NewCodec([]byte(strings.Repeat("x", 32)), testClock(now))

	tok, err := c1.Encode("alice", 42, now, time.Hour)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if _, err := c2.Decode(tok); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, _ := NewCodec(testSecret, testClock(now))

	for _, tok := range []string{"", "not-a-jwt", "a.b", "a.b.c.d"} {
		if _, err := c.Decode(tok); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Decode(%q): expected ErrMalformed, got %v", tok, err)
		}
	}
}

func TestCodec_RejectsUnsignedAlgorithm(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c, _ := NewCodec(testSecret, testClock(now))

	// {"alg":"none","typ":"JWT"} . {"sub":"alice"} . (empty signature)
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJhbGljZSJ9."
	claims, err := c.Decode(unsigned)
	if err == nil {
		t.Fatalf("expected error for alg=none token")
	}
	if claims.Subject != "" {
		t.Fatalf("alg=none token must not yield claims")
	}
}
