package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogPretty bool

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("HALALAI_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("HALALAI_LOG_LEVEL", "info"),
		LogPretty: EnvBool("HALALAI_LOG_PRETTY", false),

		ReadHeaderTimeout: EnvDuration("HALALAI_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("HALALAI_HTTP_READ_TIMEOUT", 15*time.Second),
		// The LLM round trip happens inside a handler; the write timeout
		// must outlast it.
		WriteTimeout: EnvDuration("HALALAI_HTTP_WRITE_TIMEOUT", 150*time.Second),
		IdleTimeout:  EnvDuration("HALALAI_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("HALALAI_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("HALALAI_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("HALALAI_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("HALALAI_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("HALALAI_READINESS_REQUIRE_DB", false),
	}
}
