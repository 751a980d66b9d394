// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/siriustracker/internal/models"
)

// ReplaceCatalog replaces the tracked catalog with artists in one
// transaction. Artist order and title order are preserved; repeated
// (artist, title) pairs are stored once.
func (db *DB) ReplaceCatalog(ctx context.Context, artists []models.TrackedArtist) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("replace", "tracked_tracks", time.Now(), &err)

	return withConflictRetry(ctx, func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM tracked_tracks`); err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO tracked_tracks (artist, title, position) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare catalog insert: %w", err)
		}
		defer closeWithLog(stmt, "prepared statement")

		seen := make(map[[2]string]struct{})
		position := 0
		for _, a := range artists {
			for _, title := range a.Tracks {
				key := [2]string{a.Artist, title}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				if _, err := stmt.ExecContext(ctx, a.Artist, title, position); err != nil {
					return fmt.Errorf("failed to insert tracked track %s - %s: %w", a.Artist, title, err)
				}
				position++
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit catalog: %w", err)
		}
		return nil
	})
}

// TrackedArtists returns the catalog grouped by artist, in stored order.
func (db *DB) TrackedArtists(ctx context.Context) (artists []models.TrackedArtist, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "tracked_tracks", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT artist, title FROM tracked_tracks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer closeWithLog(rows, "rows")

	index := make(map[string]int)
	for rows.Next() {
		var artist, title string
		if err := rows.Scan(&artist, &title); err != nil {
			return nil, fmt.Errorf("failed to scan tracked track: %w", err)
		}
		i, ok := index[artist]
		if !ok {
			i = len(artists)
			index[artist] = i
			artists = append(artists, models.TrackedArtist{Artist: artist})
		}
		artists[i].Tracks = append(artists[i].Tracks, title)
	}
	return artists, rows.Err()
}
