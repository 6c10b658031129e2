package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort          = "8080"
	defaultAccessTTL     = "15m"
	defaultRefreshTTL    = "168h"
	defaultSessionTTL    = "1h"
	defaultVerifyTimeout = "5s"
	defaultRedisAddr     = "localhost:6379"
	defaultRenewalMode   = RenewalModeLastWriterWins
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultVerifyAPIKey  = "change-me-verify-api-key"
)

const (
	// RenewalModeLastWriterWins lets concurrent renewals of one session
	// race; the later write silently invalidates the earlier tokens.
	RenewalModeLastWriterWins = "lww"
	// RenewalModeStrict makes the losing renewal fail explicitly with a
	// stale-token error (compare-and-swap on the refresh-token id).
	RenewalModeStrict = "strict"
)

type Config struct {
	AppEnv string
	Port   string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	SessionTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DatabaseURL string

	VerifyBaseURL string
	VerifyAPIKey  string
	VerifyTimeout time.Duration

	RenewalMode  string
	MockVerifier bool
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.AccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTTL, err = parseDurationEnv("JWT_REFRESH_TTL", defaultRefreshTTL)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, err
	}
	cfg.VerifyTimeout, err = parseDurationEnv("VERIFY_TIMEOUT", defaultVerifyTimeout)
	if err != nil {
		return nil, err
	}

	cfg.RedisAddr = strings.TrimSpace(getEnv("REDIS_ADDR", defaultRedisAddr))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB, err = parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", "postlogin.db"))

	cfg.VerifyBaseURL = strings.TrimSpace(os.Getenv("VERIFY_BASE_URL"))
	cfg.VerifyAPIKey = strings.TrimSpace(getEnv("VERIFY_API_KEY", defaultVerifyAPIKey))

	cfg.RenewalMode = strings.ToLower(strings.TrimSpace(getEnv("RENEWAL_MODE", defaultRenewalMode)))
	cfg.MockVerifier = parseBoolEnv("MOCK_VERIFIER", "false")

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.AccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return fmt.Errorf("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.VerifyTimeout <= 0 {
		return fmt.Errorf("VERIFY_TIMEOUT must be > 0")
	}
	if cfg.RenewalMode != RenewalModeLastWriterWins && cfg.RenewalMode != RenewalModeStrict {
		return fmt.Errorf("RENEWAL_MODE must be one of: %s, %s", RenewalModeLastWriterWins, RenewalModeStrict)
	}
	if cfg.VerifyBaseURL == "" && !cfg.MockVerifier {
		return fmt.Errorf("VERIFY_BASE_URL must be set unless MOCK_VERIFIER is enabled")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.VerifyAPIKey, defaultVerifyAPIKey) {
			return fmt.Errorf("in prod/release VERIFY_API_KEY must be set and not default")
		}
		if cfg.MockVerifier {
			return fmt.Errorf("in prod/release MOCK_VERIFIER must be disabled")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
