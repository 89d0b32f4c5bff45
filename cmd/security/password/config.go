package password

import (
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Policy controls password validation boundaries.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config is the single configuration surface for this package.
type Config struct {
	// Cost is the bcrypt work factor. Clamped to bcrypt's supported range.
	Cost   int
	Policy Policy
}

// DefaultConfig returns a baseline suitable for interactive logins.
// Values can be overridden via env.
func DefaultConfig() Config {
	return Config{
		Cost: bcrypt.DefaultCost,
		Policy: Policy{
			MinLength: 8,
			// bcrypt ignores input beyond 72 bytes; reject instead of truncate.
			MaxLength: 72,
		},
	}
}

// FromEnv loads config from environment variables.
//
// Env surface:
//   - HALALAI_PASSWORD_MIN_LEN
//   - HALALAI_PASSWORD_MAX_LEN
//   - HALALAI_BCRYPT_COST
//
// Invalid values fall back to defaults; out-of-range values are clamped.
func FromEnv() Config {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("HALALAI_PASSWORD_MIN_LEN"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Policy.MinLength = n
		}
	}
	if v, ok := os.LookupEnv("HALALAI_PASSWORD_MAX_LEN"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 72 {
			cfg.Policy.MaxLength = n
		}
	}
	if v, ok := os.LookupEnv("HALALAI_BCRYPT_COST"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cost = n
		}
	}

	if cfg.Cost < bcrypt.MinCost {
		cfg.Cost = bcrypt.DefaultCost
	}
	if cfg.Cost > bcrypt.MaxCost {
		cfg.Cost = bcrypt.MaxCost
	}
	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		cfg.Policy.MinLength = cfg.Policy.MaxLength
	}

	return cfg
}
