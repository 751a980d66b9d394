// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package middleware provides HTTP middleware for the API server.

Components:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - Compression: chi's Compress, limited to JSON and CSV report bodies

RequestID and PrometheusMetrics take and return http.HandlerFunc; the api
package adapts them to chi's func(http.Handler) http.Handler with
chiMiddleware. Compression is already in chi's shape.
*/
package middleware
