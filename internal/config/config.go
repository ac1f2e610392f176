package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// ResetTokenTTL is fixed: reset links are short-lived by design.
const ResetTokenTTL = 30 * time.Minute

type Config struct {
	DatabaseURL string
	HTTPPort    string

	SessionSecret []byte
	SessionTTL    time.Duration
	ResetSecret   []byte

	ThrottleWindow time.Duration
	ThrottleLimit  int

	DisableSeed bool
	UploadDir   string
}

// Load reads configuration from the environment. Missing signing secrets are
// a hard error so the process refuses to start half-configured.
func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		HTTPPort:       envOr("HTTP_PORT", "8080"),
		SessionSecret:  []byte(os.Getenv("JWT_SECRET")),
		SessionTTL:     envDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
		ResetSecret:    []byte(os.Getenv("JWT_RESET_SECRET")),
		ThrottleWindow: time.Duration(envInt("THROTTLE_TTL", 60)) * time.Second,
		ThrottleLimit:  envInt("THROTTLE_LIMIT", 10),
		DisableSeed:    os.Getenv("DISABLE_SEED") == "true",
		UploadDir:      envOr("UPLOAD_DIR", "uploads/kb-sources"),
	}
	if len(c.SessionSecret) == 0 {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if len(c.ResetSecret) == 0 {
		return nil, errors.New("JWT_RESET_SECRET is not set")
	}
	return c, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
