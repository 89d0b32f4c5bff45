package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	sectoken "halalai/cmd/security/token"
)

// Claims is the token payload: the standard registered claims (subject,
// issued-at, expiry) plus the owning user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// Codec turns (subject, userID, lifetime) into a signed, tamper-evident
// string and reverses the operation.
//
// Signing is HS256 with a process-wide secret. The algorithm is pinned
// during decode so a token claiming a different method ("none", RS256, ...)
// is rejected as malformed.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec constructs a Codec. Secrets shorter than the HMAC-SHA256
// minimum are rejected with ErrConfig.
func NewCodec(secret []byte, now func() time.Time) (*Codec, error) {
	if len(secret) < sectoken.MinSecretBytes {
		return nil, ErrConfig
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Codec{secret: secret, now: now}, nil
}

// Encode signs a token for subject/userID issued at issuedAt.
// The expiry is issuedAt + lifetime; a non-positive lifetime produces a
// token that is already expired (tests rely on this to simulate expiry).
func (c *Codec) Encode(subject string, userID int64, issuedAt time.Time, lifetime time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
		},
		UserID: userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies and parses a token.
//
// Failure contract:
//   - ErrInvalidSignature: signature mismatch; no claims returned.
//   - ErrMalformed: structure cannot be parsed (or wrong algorithm);
//     no claims returned.
//   - ErrExpired: signature and structure are fine but the token is past
//     expiry; the decoded claims ARE returned alongside the error so the
//     refresh flow can recover subject and user id.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			// Claims were fully parsed and the signature verified before
			// expiry validation ran, so they are trustworthy.
			return claims, ErrExpired
		default:
			return Claims{}, ErrMalformed
		}
	}
	return claims, nil
}
