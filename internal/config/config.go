// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Poller   PollerConfig   `koanf:"poller"`
	SMTP     SMTPConfig     `koanf:"smtp"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Retry    RetryConfig    `koanf:"retry"`
	WAL      WALConfig      `koanf:"wal"`
	Backup   BackupConfig   `koanf:"backup"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB file path, or ":memory:" for an in-process database.
	// Default: /data/siriustracker.duckdb
	Path string `koanf:"path"`

	// MaxMemory is passed to DuckDB's max_memory setting.
	// Default: 1GB
	MaxMemory string `koanf:"max_memory"`

	// Threads is DuckDB's worker thread count. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// PollerConfig holds settings for the playlist provider and the station loop.
type PollerConfig struct {
	// Enabled turns the periodic station loop on. The ingest API works either way.
	Enabled bool `koanf:"enabled"`

	// BaseURL is concatenated with the station name: {BaseURL}{station}.
	// Default: https://xmplaylist.com/api/station/
	BaseURL string `koanf:"base_url"`

	// APIKey is sent as "Authorization: Bearer {APIKey}".
	APIKey string `koanf:"api_key"`

	// UserAgent is sent on every playlist request.
	UserAgent string `koanf:"user_agent"`

	// Timeout bounds a single station request.
	// Default: 10s
	Timeout time.Duration `koanf:"timeout"`

	// Interval between poll runs.
	// Default: 5m
	Interval time.Duration `koanf:"interval"`

	// Stations is used when the tracked_stations table is empty.
	Stations []string `koanf:"stations"`

	// RequestsPerSecond paces requests to the provider.
	// Default: 2
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// SMTPConfig holds first-play notification email settings.
// Missing host, username, password or recipient disables sending.
type SMTPConfig struct {
	Host      string        `koanf:"host"`
	Port      int           `koanf:"port"`
	Username  string        `koanf:"username"`
	Password  string        `koanf:"password"`
	From      string        `koanf:"from"`
	Recipient string        `koanf:"recipient"`
	UseTLS    bool          `koanf:"use_tls"`
	Timeout   time.Duration `koanf:"timeout"`

	// ReportURL is the link included in every notification body.
	ReportURL string `koanf:"report_url"`
}

// Configured reports whether enough SMTP settings are present to send mail.
func (c *SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.Recipient != ""
}

// Address returns host:port for dialing.
func (c *SMTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	// StaticDir is served at / and /static when set.
	StaticDir string `koanf:"static_dir"`

	// ReferenceTimezone is the IANA zone used to interpret report query
	// boundaries and date-range periods. Stored timestamps are always UTC.
	// Default: America/Toronto
	ReferenceTimezone string `koanf:"reference_timezone"`

	// ReportCacheTTL bounds how long artist-plays results are served from
	// memory. Ingest and catalog changes clear the cache. Zero disables it.
	// Default: 30s
	ReportCacheTTL time.Duration `koanf:"report_cache_ttl"`
}

// Location loads the reference timezone. Validate guarantees it loads.
func (c *ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SecurityConfig holds authentication, CORS and rate limiting settings.
type SecurityConfig struct {
	// AllowedEmails is the Google account allow-list for the dashboard.
	AllowedEmails []string `koanf:"allowed_emails"`

	// GoogleClientID is the expected audience of Google ID tokens.
	// Token verification is disabled when empty.
	GoogleClientID string `koanf:"google_client_id"`
	GoogleIssuer   string `koanf:"google_issuer"`
	GoogleJWKSURL  string `koanf:"google_jwks_url"`

	// IngestToken guards /api/ingest and /api/admin/*. Empty disables them.
	IngestToken string `koanf:"ingest_token"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// CatalogConfig holds tracked catalog refresh settings.
type CatalogConfig struct {
	// RefreshInterval is how often the in-memory catalog reloads from the store.
	// Default: 10m
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// RetryConfig controls startup connection retries (store open and index creation).
type RetryConfig struct {
	// MaxAttempts including the first try.
	// Default: 3
	MaxAttempts int `koanf:"max_attempts"`

	// InitialInterval is the wait after the first failure.
	// Default: 5s
	InitialInterval time.Duration `koanf:"initial_interval"`

	// Multiplier grows the wait after every failure.
	// Default: 2
	Multiplier float64 `koanf:"multiplier"`

	// MaxInterval caps a single wait.
	// Default: 20s
	MaxInterval time.Duration `koanf:"max_interval"`
}

// WALConfig holds the durable ingest journal settings.
type WALConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// BackupConfig holds database snapshot settings used by trackerctl backup.
type BackupConfig struct {
	Dir string `koanf:"dir"`

	// Retain is how many archives Prune keeps.
	// Default: 7
	Retain int `koanf:"retain"`
}

// AuditConfig controls the admin and sign-in audit trail.
type AuditConfig struct {
	Enabled bool `koanf:"enabled"`

	// RetentionDays is how long events are kept. 0 keeps them forever.
	// Default: 90
	RetentionDays int `koanf:"retention_days"`

	BufferSize int `koanf:"buffer_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}
