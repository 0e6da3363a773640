// Package config loads the service configuration from the environment.
// Every setting has an env tag; Load fills defaults and runs Validate so
// the process refuses to start on a bad value.
package config

import (
	"strconv"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	History  HistoryConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Mail     MailConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// WriteTimeout of 0 disables the deadline. A positive value must outlast
	// IMPORT_MAX_WAIT_TIME plus IMPORT_TIMEOUT so import results reach the caller.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// ShutdownTimeout bounds graceful shutdown, including waiting for running imports.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout applies to every non-import route.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds PostgreSQL pool settings.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate applies the embedded schema on startup.
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// ImportConfig controls the CSV import pipeline.
type ImportConfig struct {
	// MaxFileSize in bytes (default 20MB).
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	MaxConcurrent int           `env:"IMPORT_MAX_CONCURRENT" default:"3"`
	MaxWaitTime   time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"15s"`

	// BatchSize is used for profiles that do not set their own.
	BatchSize int `env:"IMPORT_BATCH_SIZE" default:"500"`

	// Timeout is the deadline for a single import run.
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"5m"`

	// SampleRecords is how many records delimiter detection looks at.
	SampleRecords int `env:"IMPORT_SAMPLE_RECORDS" default:"20"`

	// Aliases extends the built-in header alias table, as "alias=field" pairs.
	Aliases []string `env:"IMPORT_ALIASES"`
}

// HistoryConfig controls retention of import run records.
type HistoryConfig struct {
	RetentionDays int           `env:"HISTORY_RETENTION_DAYS" default:"365"`
	CheckInterval time.Duration `env:"HISTORY_CHECK_INTERVAL" default:"24h"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// ImportLimit applies to import and template endpoints.
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds session and header settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// SessionSecret signs session tokens (HS256).
	SessionSecret string        `env:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `env:"SESSION_TTL" default:"12h"`
	CookieName    string        `env:"SESSION_COOKIE" default:"estate_session"`
}

// MailConfig selects and configures the outgoing mail provider.
type MailConfig struct {
	// Provider is "console" or "sendgrid".
	Provider       string `env:"MAIL_PROVIDER" default:"console"`
	SendgridAPIKey string `env:"SENDGRID_API_KEY"`
	FromAddress    string `env:"MAIL_FROM_ADDRESS" default:"no-reply@localhost"`
	FromName       string `env:"MAIL_FROM_NAME" default:"Administracja"`
	AppName        string `env:"APP_NAME" default:"Panel Wspólnoty"`

	// TwoFactorSetupURL is linked from the 2FA reminder email.
	TwoFactorSetupURL string `env:"TWO_FACTOR_SETUP_URL" default:"http://localhost:8080/profile/two-factor"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
