package token

import (
	"errors"
	"time"
)

// Service wraps the codec with token policy. All operations are pure
// functions of the token string plus the current clock; any number of
// requests may issue and validate tokens concurrently without coordination.
type Service struct {
	codec    *Codec
	lifetime time.Duration
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source (used by tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service from immutable configuration.
// The configured lifetime may be non-positive only in tests that simulate
// already-expired tokens; LoadConfigFromEnv rejects such values.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		lifetime: cfg.Lifetime,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	codec, err := NewCodec(cfg.Secret, s.now)
	if err != nil {
		return nil, err
	}
	s.codec = codec
	return s, nil
}

// Issue signs a fresh token for the given username and user id.
func (s *Service) Issue(username string, userID int64) (string, error) {
	return s.codec.Encode(username, userID, s.now(), s.lifetime)
}

// Subject returns the username claim of a currently valid token.
// This is the strict path used to authorize live requests: expiry,
// signature and structural failures all propagate as errors.
func (s *Service) Subject(tokenString string) (string, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// UserID returns the user id claim of a currently valid token (strict path).
func (s *Service) UserID(tokenString string) (int64, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// SubjectEvenIfExpired returns the subject when signature and structure
// are valid, regardless of expiry. It reports false (not an error) when
// the token is tampered or unparseable.
//
// This exists solely to support refresh; it must never be used to
// authorize a current request.
func (s *Service) SubjectEvenIfExpired(tokenString string) (string, bool) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil && !errors.Is(err, ErrExpired) {
		return "", false
	}
	if claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// UserIDEvenIfExpired returns the user id claim under the same contract as
// SubjectEvenIfExpired.
func (s *Service) UserIDEvenIfExpired(tokenString string) (int64, bool) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil && !errors.Is(err, ErrExpired) {
		return 0, false
	}
	if claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}

// IsExpired reports whether the token is past expiry. Fail-closed: any
// other validation failure (bad signature, garbage input) also reports
// true, so an unparseable token is never treated as live.
func (s *Service) IsExpired(tokenString string) bool {
	_, err := s.codec.Decode(tokenString)
	return err != nil
}

// Validate is the single predicate the request-authorization path relies
// on: the token decodes without error, is not expired, and its subject
// exactly equals expectedUsername.
func (s *Service) Validate(tokenString, expectedUsername string) bool {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return false
	}
	return claims.Subject == expectedUsername
}
