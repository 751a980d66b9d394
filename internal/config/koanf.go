// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/siriustracker/config.yaml",
	"/etc/siriustracker/config.yml",
}

const (
	// ConfigPathEnvVar overrides the YAML config file path.
	ConfigPathEnvVar = "CONFIG_PATH"

	// DotenvPathEnvVar overrides the dotenv file path.
	DotenvPathEnvVar = "DOTENV_PATH"

	defaultDotenvPath = ".env"

	// DefaultUserAgent mimics a desktop browser; the provider rejects bare clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
)

// defaultConfig returns a Config struct with all default values.
// These are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "/data/siriustracker.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Poller: PollerConfig{
			Enabled:           true,
			BaseURL:           "https://xmplaylist.com/api/station/",
			UserAgent:         DefaultUserAgent,
			Timeout:           10 * time.Second,
			Interval:          5 * time.Minute,
			Stations:          []string{},
			RequestsPerSecond: 2,
		},
		SMTP: SMTPConfig{
			Port:      587,
			UseTLS:    true,
			Timeout:   30 * time.Second,
			ReportURL: "https://sirius.example.com/",
		},
		Server: ServerConfig{
			Port:              8000,
			Host:              "0.0.0.0",
			Timeout:           30 * time.Second,
			ReferenceTimezone: "America/Toronto",
			ReportCacheTTL:    30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedEmails:   []string{},
			GoogleIssuer:    "https://accounts.google.com",
			GoogleJWKSURL:   "https://www.googleapis.com/oauth2/v3/certs",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Catalog: CatalogConfig{
			RefreshInterval: 10 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 5 * time.Second,
			Multiplier:      2,
			MaxInterval:     20 * time.Second,
		},
		WAL: WALConfig{
			Enabled:    false,
			Path:       "/data/wal",
			SyncWrites: true,
		},
		Backup: BackupConfig{
			Dir:    "/data/backups",
			Retain: 7,
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 90,
			BufferSize:    256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Dotenv: optional .env file merged into the process environment
//  3. Config File: optional YAML config file
//  4. Environment Variables: override any setting
func LoadWithKoanf() (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// XMPLAYLIST_API_KEY -> poller.api_key, SMTP_HOST -> smtp.host, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotenv merges a .env file into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func loadDotenv() error {
	path := os.Getenv(DotenvPathEnvVar)
	if path == "" {
		path = defaultDotenvPath
	}

	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load dotenv file %s: %w", path, err)
}

// findConfigFile returns the first existing config file, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"poller.stations",
	"security.allowed_emails",
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// The names match the deployment .env files, so they are not derived mechanically.
var envMappings = map[string]string{
	// Database
	"duckdb_path":       "database.path",
	"database_path":     "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Playlist provider
	"xmplaylist_base_url":      "poller.base_url",
	"xmplaylist_api_key":       "poller.api_key",
	"xmplaylist_user_agent":    "poller.user_agent",
	"poll_enabled":             "poller.enabled",
	"poll_timeout":             "poller.timeout",
	"poll_interval":            "poller.interval",
	"poll_stations":            "poller.stations",
	"poll_requests_per_second": "poller.requests_per_second",

	// SMTP
	"smtp_host":     "smtp.host",
	"smtp_port":     "smtp.port",
	"smtp_username": "smtp.username",
	"smtp_user":     "smtp.username",
	"smtp_password": "smtp.password",
	"smtp_from":     "smtp.from",
	"smtp_use_tls":  "smtp.use_tls",
	"smtp_timeout":  "smtp.timeout",
	"notify_email":  "smtp.recipient",
	"report_url":    "smtp.report_url",

	// Server
	"http_port":          "server.port",
	"http_host":          "server.host",
	"http_timeout":       "server.timeout",
	"static_dir":         "server.static_dir",
	"reference_timezone": "server.reference_timezone",
	"report_cache_ttl":   "server.report_cache_ttl",

	// Security
	"allowed_emails":      "security.allowed_emails",
	"google_client_id":    "security.google_client_id",
	"google_issuer":       "security.google_issuer",
	"google_jwks_url":     "security.google_jwks_url",
	"ingest_token":        "security.ingest_token",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Catalog
	"catalog_refresh_interval": "catalog.refresh_interval",

	// Startup retry
	"retry_max_attempts":     "retry.max_attempts",
	"retry_initial_interval": "retry.initial_interval",
	"retry_multiplier":       "retry.multiplier",
	"retry_max_interval":     "retry.max_interval",

	// Ingest journal
	"wal_enabled":     "wal.enabled",
	"wal_path":        "wal.path",
	"wal_sync_writes": "wal.sync_writes",

	// Backups
	"backup_dir":    "backup.dir",
	"backup_retain": "backup.retain",

	// Audit trail
	"audit_enabled":        "audit.enabled",
	"audit_retention_days": "audit.retention_days",
	"audit_buffer_size":    "audit.buffer_size",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unknown variables map to the empty string and are ignored.
//
// Examples:
//   - XMPLAYLIST_API_KEY -> poller.api_key
//   - SMTP_HOST -> smtp.host
//   - NOTIFY_EMAIL -> smtp.recipient
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
