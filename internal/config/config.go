package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"caradmin/internal/pkg/secretbox"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "caradmin.db"
	defaultUpstreamURL      = "http://localhost:3001"
	defaultUpstreamTimeout  = "15s"
	defaultChatPoll         = "5s"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultSessionTTL       = "12h"
	defaultCleanupSchedule  = "@every 1h"
	defaultSigninRate       = "1"
	defaultSigninBurst      = "5"
	defaultDashboardRefresh = "5m"
	defaultLogLevel         = "info"
	defaultLogFormat        = "text"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL string

	UpstreamURL      string
	UpstreamTimeout  time.Duration
	ChatPushURL      string
	ChatPollInterval time.Duration

	JWTSecret              string
	SessionTTL             time.Duration
	SessionKey             []byte
	SessionCleanupSchedule string

	FeedSchedule   string
	FeedShopConfig string

	SigninRate  float64
	SigninBurst int

	CORSAllowedOrigins []string
	DashboardRefresh   time.Duration
	MetricsToken       string

	LogLevel  string
	LogFormat string
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: .env not loaded", "err", err)
	}
	return FromEnv()
}

// FromEnv builds the config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.UpstreamURL = strings.TrimRight(strings.TrimSpace(getEnv("UPSTREAM_API_URL", defaultUpstreamURL)), "/")
	cfg.ChatPushURL = strings.TrimSpace(os.Getenv("CHAT_PUSH_URL"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.SessionCleanupSchedule = strings.TrimSpace(getEnv("SESSION_CLEANUP_SCHEDULE", defaultCleanupSchedule))
	cfg.FeedSchedule = strings.TrimSpace(os.Getenv("FEED_SCHEDULE"))
	cfg.FeedShopConfig = strings.TrimSpace(os.Getenv("FEED_SHOP_CONFIG"))
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")
	cfg.MetricsToken = strings.TrimSpace(os.Getenv("METRICS_TOKEN"))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.LogFormat = strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat))

	var err error
	if cfg.UpstreamTimeout, err = parseDurationEnv("UPSTREAM_TIMEOUT", defaultUpstreamTimeout); err != nil {
		return nil, err
	}
	if cfg.ChatPollInterval, err = parseDurationEnv("CHAT_POLL_INTERVAL", defaultChatPoll); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return nil, err
	}
	if cfg.DashboardRefresh, err = parseDurationEnv("DASHBOARD_REFRESH", defaultDashboardRefresh); err != nil {
		return nil, err
	}
	if cfg.SigninRate, err = parseFloatEnv("SIGNIN_RATE_LIMIT", defaultSigninRate); err != nil {
		return nil, err
	}
	if cfg.SigninBurst, err = parseIntEnv("SIGNIN_RATE_BURST", defaultSigninBurst); err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(os.Getenv("SESSION_ENCRYPTION_KEY")); raw != "" {
		key, err := secretbox.ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_ENCRYPTION_KEY: %w", err)
		}
		cfg.SessionKey = key
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.SessionKey == nil {
		// dev only, validateConfig rejects this in prod
		cfg.SessionKey = secretbox.DeriveKey(cfg.JWTSecret)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.UpstreamURL == "" {
		return fmt.Errorf("UPSTREAM_API_URL must not be empty")
	}
	if !strings.HasPrefix(cfg.UpstreamURL, "http://") && !strings.HasPrefix(cfg.UpstreamURL, "https://") {
		return fmt.Errorf("UPSTREAM_API_URL must be an http(s) URL")
	}
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be > 0")
	}
	if cfg.ChatPollInterval <= 0 {
		return fmt.Errorf("CHAT_POLL_INTERVAL must be > 0")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.DashboardRefresh <= 0 {
		return fmt.Errorf("DASHBOARD_REFRESH must be > 0")
	}
	if cfg.SigninRate <= 0 || cfg.SigninBurst <= 0 {
		return fmt.Errorf("SIGNIN_RATE_LIMIT and SIGNIN_RATE_BURST must be > 0")
	}
	if cfg.SessionCleanupSchedule == "" {
		return fmt.Errorf("SESSION_CLEANUP_SCHEDULE must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.SessionKey == nil {
			return fmt.Errorf("in prod/release SESSION_ENCRYPTION_KEY must be set")
		}
		if len(cfg.CORSAllowedOrigins) == 0 {
			return fmt.Errorf("in prod/release CORS_ALLOWED_ORIGINS must be set")
		}
	}

	return nil
}

// IsProd reports a production-like environment.
func (c *Config) IsProd() bool { return isProdLike(c.AppEnv) }

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

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseFloatEnv(name, fallback string) (float64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func parseListEnv(name string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(name), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
