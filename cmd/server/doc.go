// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package main is the entry point for the Sirius Tracker server.

Sirius Tracker polls the public xmplaylist feed for SiriusXM comedy
stations, stores every play in DuckDB, emails when a tracked comedy track
airs for the first time, and serves the airplay reports behind the
dashboard.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("siriustracker")
	├── DataSupervisor ("data-layer")
	│   ├── Catalog refresh (tracked tracks snapshot)
	│   ├── Ingest journal maintenance (optional, WAL_ENABLED=true)
	│   └── Audit retention (optional, AUDIT_ENABLED=true)
	├── PollingSupervisor ("polling-layer")
	│   └── Playlist poller (optional, POLL_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, .env, config.yaml and environment
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB, opened with retry and backoff
 4. Catalog: tracked (artist, title) pairs loaded from the database
 5. Ingest: first-play detector, SMTP notifier and optional BadgerDB journal
 6. Audit: admin and sign-in trail in the audit_events table
 7. Poller: xmplaylist client behind a circuit breaker
 8. HTTP Server: Chi router with middleware stack
 9. Supervisor Tree: Suture v4 process supervision

# Signal Handling

SIGINT and SIGTERM cancel the root context. The tree stops the HTTP server
(10s drain), the poller and the background services, then the database and
journal are closed.

# Example Usage

	export DUCKDB_PATH=/data/siriustracker.duckdb
	export POLL_STATIONS=siriusxmcomedy,laughusa,rawdog
	export INGEST_TOKEN=$(openssl rand -hex 32)
	export GOOGLE_CLIENT_ID=1234.apps.googleusercontent.com
	export ALLOWED_EMAILS=me@example.com
	./siriustracker

Operational tasks (catalog import, backfill, report import, backups) live
in the trackerctl command.
*/
package main
