package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevSessionSecret is the built-in signing key for local development. A
// deployment serving https must set AUTHD_SESSION_SECRET to something else.
const DevSessionSecret = "dev-secret-change-in-production"

// Server captures everything the gateway needs at startup. Values come from
// the environment so main stays lean.
type Server struct {
	Addr     string
	LogLevel string

	// BaseURL is the externally reachable origin of this deployment, used
	// when building absolute logout/login links.
	BaseURL string
	// DefaultLandingURL is where users are sent when a request cannot be
	// completed (the "back" target on error pages).
	DefaultLandingURL string
	// LoginURL is the entry point of the login flow; the logout branch
	// redirects here with a callback into /authorize.
	LoginURL string

	// CodeTTL bounds how long an issued authorization code stays redeemable.
	CodeTTL time.Duration
	// SweepInterval controls how often expired codes are purged.
	SweepInterval time.Duration

	SessionSecret string
	SessionTTL    time.Duration

	// PostgresDSN selects the SQL-backed stores when non-empty.
	PostgresDSN string

	Redis RedisConfig
}

// RedisConfig holds connection settings for the optional Redis code store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:              envOr("AUTHD_ADDR", ":8080"),
		LogLevel:          envOr("AUTHD_LOG_LEVEL", "info"),
		BaseURL:           envOr("AUTHD_BASE_URL", "http://localhost:8080"),
		DefaultLandingURL: envOr("AUTHD_DEFAULT_LANDING_URL", "/"),
		LoginURL:          envOr("AUTHD_LOGIN_URL", "/login"),
		CodeTTL:           envDurationOr("AUTHD_CODE_TTL", 10*time.Minute),
		SweepInterval:     envDurationOr("AUTHD_SWEEP_INTERVAL", 5*time.Minute),
		SessionSecret:     envOr("AUTHD_SESSION_SECRET", DevSessionSecret),
		SessionTTL:        envDurationOr("AUTHD_SESSION_TTL", 24*time.Hour),
		PostgresDSN:       os.Getenv("AUTHD_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("AUTHD_REDIS_URL"),
			PoolSize:     envIntOr("AUTHD_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("AUTHD_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("AUTHD_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("AUTHD_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("AUTHD_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

// Validate rejects configurations that must not reach production. The dev
// session secret is only acceptable on non-https deployments.
func (s Server) Validate() error {
	if s.SessionSecret == DevSessionSecret && strings.HasPrefix(s.BaseURL, "https://") {
		return errors.New("AUTHD_SESSION_SECRET must be set when AUTHD_BASE_URL is https")
	}
	if s.SessionSecret == "" {
		return errors.New("AUTHD_SESSION_SECRET cannot be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
