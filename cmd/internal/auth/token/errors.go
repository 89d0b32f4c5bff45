package token

import "errors"

var (
	// ErrExpired is returned when a token is structurally valid and
	// correctly signed but past its expiry. Decoded claims remain
	// available to the caller in this case (the refresh contract).
	ErrExpired = errors.New("token expired")

	// ErrInvalidSignature is returned when the recomputed signature does
	// not match. No claims are ever recoverable from such a token.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrMalformed is returned when the token cannot be parsed at all.
	ErrMalformed = errors.New("malformed token")

	// ErrConfig is returned for invalid token configuration.
	ErrConfig = errors.New("invalid token config")
)
