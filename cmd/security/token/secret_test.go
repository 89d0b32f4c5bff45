package token

import (
	"errors"
	"strings"
	"testing"
)

func TestSecretFromEnv(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv(SecretEnvKey, "")
		if _, err := SecretFromEnv(MinSecretBytes); !errors.Is(err, ErrSecretMissing) {
			t.Fatalf("expected ErrSecretMissing, got %v", err)
		}
	})

	t.Run("too short", func(t *testing.T) {
		t.Setenv(SecretEnvKey, "short")
		if _, err := SecretFromEnv(MinSecretBytes); !errors.Is(err, ErrSecretTooShort) {
			t.Fatalf("expected ErrSecretTooShort, got %v", err)
		}
	})

	t.Run("ok", func(t *testing.T) {
		t.Setenv(SecretEnvKey, strings.Repeat("k", MinSecretBytes))
		b, err := SecretFromEnv(MinSecretBytes)
		if err != nil {
			t.Fatalf("SecretFromEnv: %v", err)
		}
		if len(b) != MinSecretBytes {
			t.Fatalf("unexpected secret length %d", len(b))
		}
	})
}
