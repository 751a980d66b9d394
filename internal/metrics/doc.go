// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package metrics provides Prometheus metrics collection and export.

Metrics are registered on the default registry with promauto and exposed at
/metrics by the API router.

# Available Metrics

Ingestion:
  - plays_ingested_total{result}: inserted, duplicate, error
  - plays_skipped_total{reason}: malformed raw plays dropped before storage
  - first_plays_recorded_total
  - notifications_total{result}: sent, failed, skipped

Polling:
  - poll_runs_total, poll_duration_seconds, poll_last_success_timestamp_seconds
  - poll_station_errors_total{station}
  - playlist_circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open

Catalog and journal:
  - catalog_tracked_pairs, catalog_last_refresh_timestamp_seconds
  - wal_pending_entries

HTTP and store:
  - api_requests_total, api_request_duration_seconds{method,endpoint,status}
  - duckdb_query_duration_seconds{operation,table}, duckdb_query_errors_total
*/
package metrics
