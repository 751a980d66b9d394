// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/models"
)

// UpsertPlay stores a play keyed by its ID.
//
// Uses INSERT ... ON CONFLICT (id) DO NOTHING: an existing row is never
// overwritten, so the first content seen for an ID wins. Re-ingesting the
// same play is a no-op, not an error. inserted reports whether a new row
// was written.
func (db *DB) UpsertPlay(ctx context.Context, play *models.Play) (inserted bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("upsert", "plays", time.Now(), &err)

	if play.IngestedAt.IsZero() {
		play.IngestedAt = time.Now().UTC()
	}

	query := `INSERT INTO plays (id, artist, title, channel, timestamp, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`

	var rowsAffected int64
	err = withConflictRetry(ctx, func() error {
		result, execErr := db.conn.ExecContext(ctx, query,
			play.ID, nullableString(play.Artist), play.Title, play.Channel,
			play.Timestamp.UTC(), play.IngestedAt.UTC(),
		)
		if execErr != nil {
			return execErr
		}
		// With ON CONFLICT DO NOTHING, no error is returned for duplicates
		rowsAffected, execErr = result.RowsAffected()
		return execErr
	})
	if err != nil {
		// A concurrent writer committing the same ID between our check and
		// insert surfaces as a constraint error; it is still a duplicate.
		if isUniqueConstraintError(err) {
			err = nil
			logging.Debug().Str("play_id", play.ID).Msg("Duplicate play ignored")
			return false, nil
		}
		return false, fmt.Errorf("failed to upsert play %s: %w", play.ID, err)
	}

	if rowsAffected == 0 {
		logging.Debug().Str("play_id", play.ID).Msg("Duplicate play ignored")
		return false, nil
	}
	return true, nil
}

// GetPlay returns a play by ID, or ErrPlayNotFound.
func (db *DB) GetPlay(ctx context.Context, id string) (*models.Play, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		p      models.Play
		artist sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, artist, title, channel, timestamp, ingested_at FROM plays WHERE id = ?`, id,
	).Scan(&p.ID, &artist, &p.Title, &p.Channel, &p.Timestamp, &p.IngestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get play %s: %w", id, err)
	}

	if artist.Valid {
		p.Artist = &artist.String
	}
	p.Timestamp = p.Timestamp.UTC()
	p.IngestedAt = p.IngestedAt.UTC()
	return &p, nil
}

// CountPlays returns the number of stored plays.
func (db *DB) CountPlays(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM plays`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return n, nil
}

// PlayExistsAt reports whether a play by artist exists within the same
// second as ts. Report imports carry no provider ID, so this is their
// duplicate check.
func (db *DB) PlayExistsAt(ctx context.Context, artist string, ts time.Time) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	second := ts.UTC().Truncate(time.Second)
	var n int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plays
		WHERE artist = ? AND timestamp >= ? AND timestamp < ?`,
		artist, second, second.Add(time.Second),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up play: %w", err)
	}
	return n > 0, nil
}

// EarliestTrackedPlays returns, for every tracked (artist, title) that has
// been played, its earliest stored play as a FirstPlay whose
// FirstPlayDate is the play timestamp. Matching is exact, as in detection.
func (db *DB) EarliestTrackedPlays(ctx context.Context) (fps []models.FirstPlay, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "plays", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT t.artist, t.title, p.channel, p.timestamp
		FROM tracked_tracks t
		JOIN plays p ON p.artist = t.artist AND p.title = t.title
		QUALIFY row_number() OVER (PARTITION BY t.artist, t.title ORDER BY p.timestamp, p.id) = 1
		ORDER BY t.artist, t.title`)
	if err != nil {
		return nil, fmt.Errorf("failed to query earliest plays: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var fp models.FirstPlay
		if err := rows.Scan(&fp.Artist, &fp.Title, &fp.Channel, &fp.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan earliest play: %w", err)
		}
		fp.Timestamp = fp.Timestamp.UTC()
		fp.FirstPlayDate = fp.Timestamp
		fps = append(fps, fp)
	}
	return fps, rows.Err()
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
