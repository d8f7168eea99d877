package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	CORSAllowedOrigins []string

	// Exchange rate source.
	RatesURL      string
	RatesAPIKey   string
	RatesCacheTTL time.Duration
	BaseCurrency  string

	// Pricing behaviour. When true the final price multiplies by quantity a
	// second time, matching the historical billing figures. See DESIGN.md.
	LegacyQtyMultiply bool

	// Withdrawal protection.
	LockTTL          time.Duration
	LockRetryBackoff time.Duration
	IdempotencyTTL   time.Duration
	WithdrawWindow   time.Duration
	WithdrawMax      int
	GlobalRateLimit  string

	// Outbox delivery queue.
	QueueRedisPrefix string
	QueueMaxAttempts int
	QueueConcurrency int

	// Outbound HTTP (rates fetch).
	OutboundTimeout    time.Duration
	RetryBase          time.Duration
	RetryMaxAttempts   int
	RetryJitterPercent float64
	CircuitMinRequests int
	CircuitFailureRate float64
	CircuitOpenFor     time.Duration

	// Reconciliation sweep.
	ReconcileInterval   time.Duration
	ReconcilePendingAge time.Duration

	// HTTP hardening.
	MaxBodyBytes          int64
	SecurityHeadersEnable bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		RatesURL:      k.String("RATES_URL"),
		RatesAPIKey:   k.String("RATES_API_KEY"),
		RatesCacheTTL: parseDuration(k.String("RATES_CACHE_TTL"), "5m"),
		BaseCurrency:  valueOrDefault(strings.ToUpper(k.String("BASE_CURRENCY")), "USD"),

		LegacyQtyMultiply: parseBoolDefault(k.String("PRICING_LEGACY_QTY_MULTIPLY"), true),

		LockTTL:          parseDuration(k.String("LOCK_TTL"), "30s"),
		LockRetryBackoff: parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),
		IdempotencyTTL:   parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		WithdrawWindow:   parseDuration(k.String("WITHDRAW_RATE_WINDOW"), "1m"),
		WithdrawMax:      intOrDefault(k.String("WITHDRAW_RATE_MAX"), 5),
		GlobalRateLimit:  valueOrDefault(k.String("GLOBAL_RATE_LIMIT"), "120-M"),

		QueueRedisPrefix: valueOrDefault(k.String("QUEUE_REDIS_PREFIX"), "afobata"),
		QueueMaxAttempts: intOrDefault(k.String("QUEUE_MAX_ATTEMPTS"), 10),
		QueueConcurrency: intOrDefault(k.String("QUEUE_CONCURRENCY"), 4),

		OutboundTimeout:    parseDuration(k.String("OUTBOUND_TIMEOUT"), "5s"),
		RetryBase:          parseDuration(k.String("RETRY_BASE"), "200ms"),
		RetryMaxAttempts:   intOrDefault(k.String("RETRY_MAX_ATTEMPTS"), 3),
		RetryJitterPercent: floatOrDefault(k.String("RETRY_JITTER_PERCENT"), 0.2),
		CircuitMinRequests: intOrDefault(k.String("CIRCUIT_MIN_REQUESTS"), 5),
		CircuitFailureRate: floatOrDefault(k.String("CIRCUIT_FAILURE_RATE"), 0.5),
		CircuitOpenFor:     parseDuration(k.String("CIRCUIT_OPEN_FOR"), "30s"),

		ReconcileInterval:   parseDuration(k.String("RECONCILE_INTERVAL"), "5m"),
		ReconcilePendingAge: parseDuration(k.String("RECONCILE_PENDING_AGE"), "10m"),

		MaxBodyBytes:          int64(intOrDefault(k.String("MAX_BODY_BYTES"), 1<<20)),
		SecurityHeadersEnable: parseBoolDefault(k.String("SECURITY_HEADERS_ENABLE"), true),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.RatesURL == "" {
		return nil, errors.New("RATES_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBoolDefault(value string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func intOrDefault(value string, def int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	var parsed int
	if _, err := fmt.Sscanf(trimmed, "%d", &parsed); err != nil {
		return def
	}
	return parsed
}

func floatOrDefault(value string, def float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	var parsed float64
	if _, err := fmt.Sscanf(trimmed, "%g", &parsed); err != nil {
		return def
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
