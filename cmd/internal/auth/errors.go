package auth

import "errors"

// Terminal errors for the three auth operations. None are retried
// internally; the API boundary maps them to client-visible failures
// without leaking which one occurred where that would enable account
// enumeration.
var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidToken       = errors.New("invalid token")
)
