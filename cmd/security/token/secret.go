package token

import (
	"os"
	"strings"
)

const (
	// SecretEnvKey is the env var name for the token signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "HALALAI_TOKEN_SECRET"

	// MinSecretBytes is the minimum secret length for HMAC-SHA256.
	// Measured in bytes (not runes) because the key is used as raw bytes.
	MinSecretBytes = 32
)

// SecretFromEnv returns the configured signing secret (trimmed), enforcing
// a minimum byte length.
// If the env var is missing/blank -> ErrSecretMissing.
// If too short -> ErrSecretTooShort.
func SecretFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(SecretEnvKey))
	if raw == "" {
		return nil, ErrSecretMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSecretTooShort
	}
	return b, nil
}
