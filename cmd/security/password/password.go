package password

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks password policy. It does not mutate input.
func (c Config) Validate(password string) error {
	// Minimum is counted in characters (runes) to be user-friendly;
	// the maximum is counted in bytes because that is bcrypt's limit.
	if utf8.RuneCountInString(password) < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if len(password) > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}

// Hash validates the password against policy and returns a bcrypt hash.
func (c Config) Hash(password string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), c.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify checks a password against a bcrypt hash in constant time.
// A structurally invalid hash yields ErrInvalidHash; a clean mismatch
// yields (false, nil).
func (c Config) Verify(encoded, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}
