// Package config reads the process configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppName string
	AppEnv  string
	AppURL  string // base of the links in activation and reset emails
	Port    string

	DBDriver     string
	DBConnection string

	JWTSecret                  string
	JWTExpiry                  time.Duration
	PasswordResetSessionExpiry time.Duration
	TokenAccountActivateExpiry time.Duration
	TokenPasswordResetExpiry   time.Duration

	// Without a Resend key outgoing mail is only logged.
	EmailFrom    string
	ResendAPIKey string

	SentryDSN         string
	LogFile           string
	LogFileMaxSizeMB  int
	LogFileMaxBackups int
	MetricsEnabled    bool

	CatalogCacheSizeMB int
	CatalogCacheTTL    time.Duration

	// Account created or promoted by `fitlg seed`.
	SuperuserUsername string
	SuperuserEmail    string
	SuperuserPassword string
}

const defaultSQLite = "./data/fitlg.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// Load reads the configuration. Every missing or malformed variable is
// reported in the returned error, not only the first one.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	e := &env{}
	cfg := &Config{
		AppName: e.str("APP_NAME", "fitlg"),
		AppEnv:  e.required("APP_ENV"),
		AppURL:  e.required("APP_URL"),
		Port:    e.str("PORT", "8090"),

		DBDriver:     e.str("DB_DRIVER", "sqlite"),
		DBConnection: e.str("DB_CONNECTION", defaultSQLite),

		JWTSecret:                  e.required("JWT_SECRET"),
		JWTExpiry:                  e.duration("JWT_EXPIRY", 7*24*time.Hour),
		PasswordResetSessionExpiry: e.duration("PASSWORD_RESET_SESSION_EXPIRY", 15*time.Minute),
		TokenAccountActivateExpiry: e.duration("TOKEN_ACCOUNT_ACTIVATE_EXPIRY", 72*time.Hour),
		TokenPasswordResetExpiry:   e.duration("TOKEN_PASSWORD_RESET_EXPIRY", time.Hour),

		EmailFrom:    e.str("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: e.str("RESEND_API_KEY", ""),

		SentryDSN:         e.str("SENTRY_DSN", ""),
		LogFile:           e.str("LOG_FILE", ""),
		LogFileMaxSizeMB:  e.integer("LOG_FILE_MAX_SIZE_MB", 50),
		LogFileMaxBackups: e.integer("LOG_FILE_MAX_BACKUPS", 5),
		MetricsEnabled:    e.boolean("METRICS_ENABLED", true),

		CatalogCacheSizeMB: e.integer("CATALOG_CACHE_SIZE_MB", 4),
		CatalogCacheTTL:    e.duration("CATALOG_CACHE_TTL", 10*time.Minute),

		SuperuserUsername: e.str("SUPERUSER_USERNAME", ""),
		SuperuserEmail:    e.str("SUPERUSER_EMAIL", ""),
		SuperuserPassword: e.str("SUPERUSER_PASSWORD", ""),
	}

	switch cfg.AppEnv {
	case "", EnvDevelopment:
	case EnvProduction:
		if cfg.ResendAPIKey == "" {
			e.fail(errors.New("RESEND_API_KEY is required in production, use APP_ENV=development to log emails instead"))
		}
	default:
		e.fail(fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.AppEnv))
	}

	if e.err != nil {
		return nil, fmt.Errorf("config: %w", e.err)
	}
	return cfg, nil
}

// env collects the problems found while reading variables.
type env struct {
	err error
}

func (e *env) fail(err error) {
	e.err = multierr.Append(e.err, err)
}

func (e *env) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (e *env) required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		e.fail(fmt.Errorf("%s is required", key))
	}
	return v
}

func (e *env) integer(key string, def int) int { return parse(e, key, def, strconv.Atoi) }

func (e *env) boolean(key string, def bool) bool { return parse(e, key, def, strconv.ParseBool) }

func (e *env) duration(key string, def time.Duration) time.Duration {
	return parse(e, key, def, time.ParseDuration)
}

func parse[T any](e *env, key string, def T, fn func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := fn(v)
	if err != nil {
		e.fail(fmt.Errorf("%s: invalid value %q", key, v))
		return def
	}
	return parsed
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Sanitized returns the fields pages may see. Secrets and connection
// strings are left out.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:   c.AppName,
		AppEnv:    c.AppEnv,
		AppURL:    c.AppURL,
		Port:      c.Port,
		EmailFrom: c.EmailFrom,
	}
}
