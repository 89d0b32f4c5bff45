package identity

import (
	"halalai/cmd/security/password"
)

// Hasher hashes and verifies user passwords. It delegates to
// security/password so identity cannot drift from the configured policy.
type Hasher struct {
	cfg password.Config
}

// NewHasher builds a Hasher from environment configuration.
func NewHasher() *Hasher {
	return &Hasher{cfg: password.FromEnv()}
}

// NewHasherWithConfig builds a Hasher with an explicit configuration
// (used by tests to lower the bcrypt cost).
func NewHasherWithConfig(cfg password.Config) *Hasher {
	return &Hasher{cfg: cfg}
}

// Hash returns a one-way hash of the plaintext, enforcing password policy.
func (h *Hasher) Hash(plaintext string) (string, error) {
	return h.cfg.Hash(plaintext)
}

// Verify reports whether plaintext matches the stored hash.
// Structurally invalid hashes verify as false (fail closed).
func (h *Hasher) Verify(plaintext, hash string) bool {
	ok, err := h.cfg.Verify(hash, plaintext)
	if err != nil {
		return false
	}
	return ok
}
