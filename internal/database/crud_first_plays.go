// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/siriustracker/internal/models"
)

// HasFirstPlay reports whether (artist, title) already has a first play.
// Detection uses it to skip the insert in the common case; it is not the
// guard against duplicates, the unique constraint is.
func (db *DB) HasFirstPlay(ctx context.Context, artist, title string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM first_plays WHERE artist = ? AND title = ?`, artist, title,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check first play: %w", err)
	}
	return n > 0, nil
}

// InsertFirstPlay records a first play. It returns ErrFirstPlayExists when
// another writer got there first. Transaction conflicts between concurrent
// writers are retried and resolve to either a successful insert or
// ErrFirstPlayExists.
func (db *DB) InsertFirstPlay(ctx context.Context, fp *models.FirstPlay) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() {
		// The expected race outcome is not a query error.
		metricErr := err
		if errors.Is(err, ErrFirstPlayExists) {
			metricErr = nil
		}
		observe("insert", "first_plays", start, &metricErr)
	}()

	err = withConflictRetry(ctx, func() error {
		_, execErr := db.conn.ExecContext(ctx,
			`INSERT INTO first_plays (artist, title, first_play_date, channel, timestamp)
			VALUES (?, ?, ?, ?, ?)`,
			fp.Artist, fp.Title, fp.FirstPlayDate.UTC(), fp.Channel, fp.Timestamp.UTC(),
		)
		return execErr
	})
	if err == nil {
		return nil
	}
	if isUniqueConstraintError(err) {
		return ErrFirstPlayExists
	}
	return fmt.Errorf("failed to insert first play for %s - %s: %w", fp.Artist, fp.Title, err)
}

// ListFirstPlays returns all first plays, newest first.
func (db *DB) ListFirstPlays(ctx context.Context) ([]models.FirstPlay, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT artist, title, first_play_date, channel, timestamp
		FROM first_plays ORDER BY first_play_date DESC, artist, title`)
	if err != nil {
		return nil, fmt.Errorf("failed to list first plays: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var fps []models.FirstPlay
	for rows.Next() {
		var fp models.FirstPlay
		if err := rows.Scan(&fp.Artist, &fp.Title, &fp.FirstPlayDate, &fp.Channel, &fp.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan first play: %w", err)
		}
		fp.FirstPlayDate = fp.FirstPlayDate.UTC()
		fp.Timestamp = fp.Timestamp.UTC()
		fps = append(fps, fp)
	}
	return fps, rows.Err()
}
