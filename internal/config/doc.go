// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package config loads and validates application configuration.
//
// Configuration is layered with Koanf v2, later layers overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional .env file (DOTENV_PATH, default ".env"), merged into the
//     process environment without overriding variables that are already set
//  3. An optional YAML file (CONFIG_PATH, config.yaml, /etc/siriustracker/config.yaml)
//  4. Environment variables, mapped explicitly by envTransformFunc
//
// Common variables:
//
//	DUCKDB_PATH          database file
//	XMPLAYLIST_BASE_URL  playlist provider base URL, station name is appended
//	XMPLAYLIST_API_KEY   bearer credential for the provider
//	POLL_STATIONS        comma-separated fallback station list
//	SMTP_HOST / SMTP_PORT / SMTP_USERNAME / SMTP_PASSWORD
//	NOTIFY_EMAIL         first-play notification recipient
//	ALLOWED_EMAILS       comma-separated dashboard allow-list
//	GOOGLE_CLIENT_ID     audience for Google ID token verification
//	INGEST_TOKEN         bearer token for /api/ingest and /api/admin
//	REFERENCE_TIMEZONE   zone for report boundaries (default America/Toronto)
//	BACKUP_DIR           where trackerctl backup writes archives
//	AUDIT_RETENTION_DAYS how long audit events are kept, 0 keeps them
package config
