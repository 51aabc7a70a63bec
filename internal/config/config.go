// Package config loads instrumentdiff settings from environment variables
// with defaults, and validates them before any command runs.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Every setting can be overridden via an environment variable; CLI flags
// override the environment.
type Config struct {
	Build    BuildConfig
	Compare  CompareConfig
	Server   ServerConfig
	Database DatabaseConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// BuildConfig holds table build settings.
type BuildConfig struct {
	// DataRoot holds one subdirectory per instrument (default: data)
	DataRoot string `env:"INSTRUMENT_DATA_ROOT" default:"data"`

	// TablePath is where the built table is written and read (default: instruments.csv)
	TablePath string `env:"INSTRUMENT_TABLE" envAlt:"TABLE_PATH" default:"instruments.csv"`

	// Separator joins field path segments (default: .)
	Separator string `env:"FLATTEN_SEPARATOR" default:"."`

	// Extensions lists the document file extensions read from each source
	Extensions []string `env:"SOURCE_EXTENSIONS" default:".json"`

	// PrefixMultiple prefixes fields with the document name when a source
	// holds more than one document (default: true)
	PrefixMultiple bool `env:"PREFIX_MULTIPLE_DOCUMENTS" default:"true"`
}

// CompareConfig holds comparison report settings.
type CompareConfig struct {
	// SameLimit is how many same values a text report lists (default: 5)
	SameLimit int `env:"REPORT_SAME_LIMIT" default:"5"`

	// PreviewSources is how many sources preview samples (default: 3)
	PreviewSources int `env:"PREVIEW_SOURCES" default:"3"`

	// PreviewFields is how many fields preview shows per source (default: 5)
	PreviewFields int `env:"PREVIEW_FIELDS" default:"5"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" default:"127.0.0.1"`
	Port            int           `env:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`

	// TrustedProxies lists proxy CIDRs whose X-Real-IP / X-Forwarded-For
	// headers are trusted.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds snapshot store settings. The store is optional;
// commands that need it fail when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// RateLimitConfig holds per-IP request limits for the HTTP server.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds API authentication settings.
type SecurityConfig struct {
	// RequireAPIKey enforces X-API-Key on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HasDatabase reports whether a snapshot store is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}
