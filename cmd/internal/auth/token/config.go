package token

import (
	"os"
	"time"

	sectoken "halalai/cmd/security/token"
)

const defaultLifetime = 24 * time.Hour

// Config defines runtime configuration for session tokens.
//
// It is an explicit immutable value injected into the Service at
// construction; nothing in this package reads global mutable state after
// startup.
type Config struct {
	// Secret is the HMAC-SHA256 signing key. Must be at least
	// sectoken.MinSecretBytes bytes.
	Secret []byte

	// Lifetime is added to the issue time to produce the expiry.
	Lifetime time.Duration
}

// LoadConfigFromEnv loads token configuration from environment variables.
//
// Required:
//   - HALALAI_TOKEN_SECRET (>= 32 bytes)
//
// Optional:
//   - HALALAI_TOKEN_LIFETIME (Go duration, must be positive; default 24h)
func LoadConfigFromEnv() (Config, error) {
	secret, err := sectoken.SecretFromEnv(sectoken.MinSecretBytes)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Secret:   secret,
		Lifetime: defaultLifetime,
	}

	if v := os.Getenv("HALALAI_TOKEN_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.Lifetime = d
	}

	return cfg, nil
}
