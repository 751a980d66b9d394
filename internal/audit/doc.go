// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package audit records who changed the tracker and who tried to sign in.

Events cover dashboard sign-in checks, rejected bearer tokens, catalog and
station replacements, manual polls and ingest batches. They are written
asynchronously by a Logger into a Store (DuckDB in production, memory in
tests) and can be listed through GET /api/admin/audit.

The Logger is also a suture service: while running it deletes events older
than the configured retention once a day.

Audit writes never block a request. When the buffer is full the event is
dropped and a warning is logged.
*/
package audit
