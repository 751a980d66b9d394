// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
database_schema.go - Database Schema Management

Tables:
  - plays: every observed airing, keyed by the provider's play ID
  - first_plays: one row per tracked (artist, title), ever
  - tracked_tracks: the tracked catalog, one row per (artist, title)
  - tracked_stations: the ordered station list for the poller

Dedup Strategy:
plays.id and first_plays(artist, title) carry uniqueness constraints. They are
the only write-side synchronization: concurrent or replayed writers race on
them and the losers see "no row inserted" or ErrFirstPlayExists.

tracked_tracks and tracked_stations have no key. They are only ever replaced
wholesale inside a transaction (DELETE then INSERT), and DuckDB checks
PRIMARY KEY constraints against rows deleted earlier in the same transaction.
Duplicates are removed in Go before insert instead.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS plays (
			id VARCHAR PRIMARY KEY,
			artist VARCHAR,
			title VARCHAR NOT NULL,
			channel VARCHAR NOT NULL DEFAULT '',
			timestamp TIMESTAMP NOT NULL,
			ingested_at TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS first_plays (
			artist VARCHAR NOT NULL,
			title VARCHAR NOT NULL,
			first_play_date TIMESTAMP NOT NULL,
			channel VARCHAR NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			UNIQUE (artist, title)
		);`,

		`CREATE TABLE IF NOT EXISTS tracked_tracks (
			artist VARCHAR NOT NULL,
			title VARCHAR NOT NULL,
			position INTEGER NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS tracked_stations (
			name VARCHAR NOT NULL,
			position INTEGER NOT NULL
		);`,
	}
}

// createIndexes creates secondary indexes. IF NOT EXISTS makes an
// existing index a no-op rather than an error.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}

func getIndexQueries() []string {
	return []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_plays_id ON plays(id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_first_plays_pair ON first_plays(artist, title);`,
		`CREATE INDEX IF NOT EXISTS idx_plays_timestamp ON plays(timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_plays_artist_timestamp ON plays(artist, timestamp);`,
	}
}
