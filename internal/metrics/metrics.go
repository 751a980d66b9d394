// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Station polling
// - Ingestion, first-play detection and notifications
// - Catalog freshness and the ingest journal

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Ingestion Metrics
	PlaysIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plays_ingested_total",
			Help: "Plays handed to the store, by result",
		},
		[]string{"result"}, // inserted, duplicate, error
	)

	PlaysSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plays_skipped_total",
			Help: "Raw plays dropped before storage, by reason",
		},
		[]string{"reason"}, // missing_id, missing_title, missing_timestamp, bad_timestamp, invalid
	)

	FirstPlaysRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "first_plays_recorded_total",
			Help: "First plays recorded by the detector",
		},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "First-play notifications, by result",
		},
		[]string{"result"}, // sent, failed, skipped
	)

	// Poller Metrics
	PollRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_runs_total",
			Help: "Completed poll runs over all stations",
		},
	)

	PollStationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_station_errors_total",
			Help: "Station fetch failures",
		},
		[]string{"station"},
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poll_duration_seconds",
			Help:    "Duration of a full poll run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	PollLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poll_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last completed poll run",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playlist_circuit_breaker_state",
			Help: "Playlist provider circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_circuit_breaker_requests_total",
			Help: "Total number of requests through the playlist circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlist_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Catalog Metrics
	CatalogTrackedPairs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_tracked_pairs",
			Help: "Number of tracked (artist, title) pairs in the loaded catalog",
		},
	)

	CatalogLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_last_refresh_timestamp_seconds",
			Help: "Unix timestamp of the last successful catalog reload",
		},
	)

	// Auth Metrics
	AuthVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_google_verifications_total",
			Help: "Google ID token verifications by result (allowed, denied, invalid)",
		},
		[]string{"result"},
	)

	// Ingest Journal Metrics
	WALPendingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wal_pending_entries",
			Help: "Ingest batches written to the journal but not yet confirmed",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, classifyDBError(err)).Inc()
	}
}

// classifyDBError keeps the error_type label cardinality bounded.
func classifyDBError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return "constraint"
	case strings.Contains(msg, "conflict"):
		return "conflict"
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "context canceled"):
		return "timeout"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "database is closed"):
		return "connection"
	default:
		return "other"
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPollRun records a completed poll run.
func RecordPollRun(duration time.Duration) {
	PollRuns.Inc()
	PollDuration.Observe(duration.Seconds())
	PollLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordStationError records a failed station fetch.
func RecordStationError(station string) {
	PollStationErrors.WithLabelValues(station).Inc()
}

// RecordIngest records the store outcome counts for one batch.
func RecordIngest(inserted, duplicates, errors int) {
	PlaysIngested.WithLabelValues("inserted").Add(float64(inserted))
	PlaysIngested.WithLabelValues("duplicate").Add(float64(duplicates))
	PlaysIngested.WithLabelValues("error").Add(float64(errors))
}

// RecordSkippedPlay records a raw play dropped before storage.
func RecordSkippedPlay(reason string) {
	PlaysSkipped.WithLabelValues(reason).Inc()
}

// RecordFirstPlay records a newly recorded first play.
func RecordFirstPlay() {
	FirstPlaysRecorded.Inc()
}

// RecordNotification records a notification outcome: sent, failed or skipped.
func RecordNotification(result string) {
	Notifications.WithLabelValues(result).Inc()
}

// SetCircuitBreakerState sets the breaker gauge. state is 0=closed, 1=half-open, 2=open.
func SetCircuitBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordCircuitBreakerTransition records a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordCircuitBreakerRequest records a request outcome through the breaker.
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordCatalogRefresh records a successful catalog reload.
func RecordCatalogRefresh(pairs int, at time.Time) {
	CatalogTrackedPairs.Set(float64(pairs))
	CatalogLastRefresh.Set(float64(at.Unix()))
}

// SetWALPending sets the number of unconfirmed journal entries.
func SetWALPending(n int64) {
	WALPendingEntries.Set(float64(n))
}

// RecordAuthVerification records the outcome of a token verification.
func RecordAuthVerification(result string) {
	AuthVerifications.WithLabelValues(result).Inc()
}
