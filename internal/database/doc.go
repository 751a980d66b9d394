// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package database is the play store: DuckDB tables for plays, first plays,
// the tracked catalog and the station list.
//
// # Architecture
//
//   - database.go: lifecycle (open under retry, initialize, close)
//   - database_schema.go: tables and indexes
//   - database_connection.go: pool configuration and DuckDB error classification
//   - database_utils.go: context defaults, checkpoint, metrics helpers
//   - crud_plays.go: idempotent play upsert and lookups
//   - crud_first_plays.go: first-play existence check and insert
//   - crud_catalog.go, crud_stations.go: wholesale replacement of reference data
//   - query_artist_plays.go: the reporting aggregation
//
// # Write Safety
//
// There are no in-process locks on write paths. plays.id and
// first_plays(artist, title) are unique; UpsertPlay uses ON CONFLICT DO
// NOTHING and InsertFirstPlay maps a constraint violation to
// ErrFirstPlayExists. Transaction conflicts between concurrent writers are
// retried with a short exponential backoff.
//
// # Time
//
// All TIMESTAMP columns hold UTC instants. Callers convert to a display zone.
//
// # Usage
//
//	db, err := database.New(ctx, &cfg.Database, retry.FromConfig(cfg.Retry))
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to open database")
//	}
//	defer db.Close()
//
//	inserted, err := db.UpsertPlay(ctx, &play)
package database
