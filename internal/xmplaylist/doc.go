// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package xmplaylist is the client for the xmplaylist.com station API.
//
// Client issues GET {base_url}{station} with a browser User-Agent, a JSON
// Accept header and a bearer API key. HTTP 429 is retried at most twice,
// honoring Retry-After up to 60 seconds; every other failure is returned.
// CircuitBreakerClient wraps any Fetcher with sony/gobreaker.
package xmplaylist
