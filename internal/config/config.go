package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Cookie    CookieConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	PublicDir             string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	RequireTLS     bool
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	Pepper            string
	BcryptCost        int
	HashConcurrency   int
	AccessSecret      string
	RefreshSecret     string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	RevocationEnabled bool
}

// CookieConfig defines session cookie attributes.
type CookieConfig struct {
	AccessName    string
	RefreshName   string
	RefreshPath   string
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
	Secure        bool
	Domain        string
}

// CORSConfig lists allowed browser origins. Empty means any origin is reflected.
type CORSConfig struct {
	AllowOrigins []string
}

// RateLimitConfig configures the fixed-window request limiter.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	accessTTL, err := parseDuration(getEnv("ACCESS_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TTL: %w", err)
	}
	refreshTTL, err := parseDuration(getEnv("REFRESH_TTL", "7d"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TTL: %w", err)
	}
	rateWindow, err := parseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "Haras AI"),
			Env:                   getEnv("APP_ENV", getEnv("NODE_ENV", "development")),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("PORT", getEnv("APP_PORT", "5000")),
			Version:               getEnv("APP_VERSION", "1.0"),
			PublicDir:             getEnv("PUBLIC_DIR", "public"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 1<<20),
		},
		Postgres: PostgresConfig{
			DSN:            getEnv("DATABASE_URL", os.Getenv("POSTGRES_DSN")),
			RequireTLS:     getEnvAsBool("DATABASE_SSL", false),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 0)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			Pepper:            os.Getenv("PWD_PEPPER"),
			BcryptCost:        getEnvAsInt("BCRYPT_ROUNDS", 12),
			HashConcurrency:   getEnvAsInt("HASH_CONCURRENCY", runtime.NumCPU()),
			AccessSecret:      getEnv("JWT_ACCESS_SECRET", "changeme-access"),
			RefreshSecret:     getEnv("JWT_REFRESH_SECRET", "changeme-refresh"),
			AccessTTL:         accessTTL,
			RefreshTTL:        refreshTTL,
			RevocationEnabled: getEnvAsBool("AUTH_REVOCATION_ENABLED", false),
		},
		Cookie: CookieConfig{
			AccessName:    "haras_access",
			RefreshName:   "haras_refresh",
			RefreshPath:   "/api/auth",
			AccessMaxAge:  time.Hour,
			RefreshMaxAge: 7 * 24 * time.Hour,
			Secure:        getEnvAsBool("COOKIE_SECURE", true),
			Domain:        os.Getenv("COOKIE_DOMAIN"),
		},
		CORS: CORSConfig{
			AllowOrigins: splitList(os.Getenv("CORS_ORIGIN")),
		},
		RateLimit: RateLimitConfig{
			Max:    getEnvAsInt("RATE_LIMIT_MAX", 100),
			Window: rateWindow,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would break authentication invariants.
func (c *Config) Validate() error {
	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Auth.RevocationEnabled && c.Redis.Addr == "" {
		return errors.New("AUTH_REVOCATION_ENABLED requires REDIS_ADDR")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// parseDuration accepts Go durations plus a trailing "d" for whole days ("7d").
func parseDuration(val string) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if days, ok := strings.CutSuffix(val, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("parse days %q: %w", val, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(val)
}

func splitList(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
