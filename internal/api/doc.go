// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package api provides the HTTP interface of the tracker.

Routes (chi):

	GET  /api/artist-plays?start=&end=     plays of tracked pairs grouped by artist
	GET  /api/first-plays                  recorded first plays
	GET  /api/date-range/{period}          today | week | month | year | all
	POST /api/verify-google-token          Google sign-in against the allow-list
	POST /api/ingest                       bearer token; store a batch of raw plays
	GET  /api/admin/catalog                bearer token
	PUT  /api/admin/catalog                bearer token; replace the catalog
	POST /api/admin/catalog/reload         bearer token
	POST /api/admin/poll                   bearer token; 409 while a pass runs
	GET  /api/admin/stations               bearer token
	PUT  /api/admin/stations               bearer token
	GET  /api/health/live, /api/health/ready
	GET  /metrics
	GET  /, /static/*                      when server.static_dir is set

Dates:

Query bounds accept RFC 3339, a naive datetime or YYYY-MM-DD. Values
without an offset are read in server.reference_timezone. Missing bounds
default to 2020-01-01 and now. A malformed bound or start after end is a
400 with code INVALID_DATE_RANGE.

Responses:

JSON endpoints use the APIResponse envelope ({success, data, error, meta}).
On failure error is an object, {code, message, details?}, not a string:
clients show error.message and branch on error.code.
The date-range and verify-google-token routes keep the bare shapes the
dashboard reads ({start, end} and {allowed}).
*/
package api
