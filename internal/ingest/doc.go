// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package ingest is the ingestion entrypoint shared by the poller, the
// HTTP ingest endpoint and the maintenance CLI.
//
// Ingest runs each batch through validation, normalization, the idempotent
// play upsert and first-play detection. With a journal configured the batch
// is written to the WAL first and confirmed after processing, so a crash
// mid-batch is repaired by Recover on the next start.
package ingest
