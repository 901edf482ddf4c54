// Package config provides centralized configuration management for the
// sync process. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Kaggle   KaggleConfig
	Database DatabaseConfig
	Fetch    FetchConfig
	Logging  LoggingConfig
}

// KaggleConfig holds the Kaggle API credentials.
type KaggleConfig struct {
	// Username is the Kaggle account name (required)
	Username string `env:"KAGGLE_USERNAME" required:"true"`

	// Key is the Kaggle API key sent as a bearer token (required)
	Key string `env:"KAGGLE_KEY" required:"true"`

	// BaseURL is the API root; override only for testing
	BaseURL string `env:"KAGGLE_API_URL" default:"https://www.kaggle.com/api/v1"`
}

// DatabaseConfig holds the PostgreSQL connection fields.
// All five fields are required; the connection URL is assembled from them.
type DatabaseConfig struct {
	// Host is the database server hostname (required)
	Host string `env:"LOANS_DB_HOST" required:"true"`

	// Port is the database server port (required)
	Port int `env:"LOANS_DB_PORT" required:"true"`

	// Name is the database name (required)
	Name string `env:"LOANS_DB_NAME" required:"true"`

	// User is the database role (required)
	User string `env:"LOANS_DB_USER" required:"true"`

	// Password is the database password (required)
	Password string `env:"LOANS_DB_PASSWORD" required:"true"`

	// MaxConns is the maximum number of pooled connections (default: 4)
	MaxConns int `env:"LOANS_DB_MAX_CONNS" default:"4"`
}

// FetchConfig holds dataset download settings.
type FetchConfig struct {
	// Attempts is the number of download attempts before giving up (default: 3)
	Attempts int `env:"FETCH_ATTEMPTS" default:"3"`

	// Delay is the fixed wait between failed attempts (default: 5s)
	Delay time.Duration `env:"FETCH_DELAY" default:"5s"`

	// Timeout bounds a single HTTP request; 0 means no timeout (default: 0s)
	Timeout time.Duration `env:"FETCH_TIMEOUT" default:"0s"`

	// Suffixes lists the archive member suffixes to extract (default: .csv,.xlsx)
	Suffixes []string `env:"FETCH_SUFFIXES" default:".csv,.xlsx"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// URL returns the PostgreSQL connection string assembled from the five
// connection fields, with credentials URL-escaped.
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	return u.String()
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("LOANS_DB_PORT (%d) must be 1-65535", c.Database.Port))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "LOANS_DB_MAX_CONNS must be positive")
	}

	if c.Fetch.Attempts <= 0 {
		errs = append(errs, "FETCH_ATTEMPTS must be positive")
	}
	if c.Fetch.Delay < 0 {
		errs = append(errs, "FETCH_DELAY must be non-negative")
	}
	if c.Fetch.Timeout < 0 {
		errs = append(errs, "FETCH_TIMEOUT must be non-negative")
	}
	if len(c.Fetch.Suffixes) == 0 {
		errs = append(errs, "FETCH_SUFFIXES must list at least one suffix")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Kaggle: {Username: %q, Key: [MASKED]}, ", c.Kaggle.Username))
	b.WriteString(fmt.Sprintf("Database: {Host: %q, Port: %d, Name: %q, User: %q, Password: [MASKED]}, ",
		c.Database.Host, c.Database.Port, c.Database.Name, c.Database.User))
	b.WriteString(fmt.Sprintf("Fetch: {Attempts: %d, Delay: %v, Suffixes: %v}, ",
		c.Fetch.Attempts, c.Fetch.Delay, c.Fetch.Suffixes))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
