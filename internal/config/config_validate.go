// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package config

import (
	"fmt"
	"strings"
	"time"
)

// validLogLevels defines valid log level values
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines valid log format values
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validatePoller(); err != nil {
		return err
	}

	if err := c.validateSMTP(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateRetry(); err != nil {
		return err
	}

	if err := c.validateWAL(); err != nil {
		return err
	}

	if err := c.validateBackup(); err != nil {
		return err
	}

	if err := c.validateAudit(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0")
	}
	return nil
}

// validatePoller validates the playlist provider settings. The base URL is
// always checked because the ingest CLI and the server share it.
func (c *Config) validatePoller() error {
	if err := validateBaseURL(c.Poller.BaseURL, "XMPLAYLIST_BASE_URL"); err != nil {
		return err
	}
	if c.Poller.Timeout <= 0 {
		return fmt.Errorf("POLL_TIMEOUT must be positive")
	}
	if c.Poller.Enabled && c.Poller.Interval < 30*time.Second {
		return fmt.Errorf("POLL_INTERVAL must be at least 30s, got %v", c.Poller.Interval)
	}
	if c.Poller.RequestsPerSecond <= 0 {
		return fmt.Errorf("POLL_REQUESTS_PER_SECOND must be positive")
	}
	return nil
}

// validateSMTP only checks ranges. Missing credentials are allowed: the
// notifier skips sending when it is not configured.
func (c *Config) validateSMTP() error {
	if c.SMTP.Host == "" {
		return nil
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}
	if c.SMTP.Timeout <= 0 {
		return fmt.Errorf("SMTP_TIMEOUT must be positive")
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(c.Server.ReferenceTimezone); err != nil || c.Server.ReferenceTimezone == "" {
		return fmt.Errorf("REFERENCE_TIMEZONE %q is not a valid IANA timezone", c.Server.ReferenceTimezone)
	}
	if c.Server.ReportCacheTTL < 0 {
		return fmt.Errorf("REPORT_CACHE_TTL must not be negative")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if c.Security.GoogleClientID != "" {
		if err := validateBaseURL(c.Security.GoogleJWKSURL, "GOOGLE_JWKS_URL"); err != nil {
			return err
		}
		if c.Security.GoogleIssuer == "" {
			return fmt.Errorf("GOOGLE_ISSUER is required when GOOGLE_CLIENT_ID is set")
		}
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
		}
	}

	for _, email := range c.Security.AllowedEmails {
		if !strings.Contains(email, "@") {
			return fmt.Errorf("ALLOWED_EMAILS contains an invalid address: %q", email)
		}
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Retry.InitialInterval < 0 || c.Retry.MaxInterval < 0 {
		return fmt.Errorf("retry intervals must not be negative")
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("RETRY_MULTIPLIER must be >= 1")
	}
	return nil
}

func (c *Config) validateWAL() error {
	if c.WAL.Enabled && c.WAL.Path == "" {
		return fmt.Errorf("WAL_PATH is required when WAL_ENABLED=true")
	}
	return nil
}

func (c *Config) validateBackup() error {
	if c.Backup.Dir == "" {
		return fmt.Errorf("BACKUP_DIR is required")
	}
	if c.Backup.Retain < 1 {
		return fmt.Errorf("BACKUP_RETAIN must be at least 1")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 1 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
