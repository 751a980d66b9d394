// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/siriustracker/internal/database/query"
	"github.com/tomtom215/siriustracker/internal/models"
)

const (
	defaultPlayListLimit = 100
	maxPlayListLimit     = 1000
)

// PlayFilter narrows ListPlays. Zero fields are ignored.
type PlayFilter struct {
	Start *time.Time
	End   *time.Time

	// Artist matches case-insensitively and exactly.
	Artist string

	// Title matches any title containing the text, case-insensitively.
	Title    string
	Channels []string

	// Limit defaults to 100 and is capped at 1000.
	Limit int
}

// ListPlays returns matching plays, newest first.
func (db *DB) ListPlays(ctx context.Context, f PlayFilter) (plays []models.Play, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "plays", time.Now(), &err)

	limit := f.Limit
	switch {
	case limit <= 0:
		limit = defaultPlayListLimit
	case limit > maxPlayListLimit:
		limit = maxPlayListLimit
	}

	where, args := query.NewWhereBuilder().
		AddTimeRange("timestamp", f.Start, f.End).
		AddEqualFold("artist", f.Artist).
		AddContainsFold("title", f.Title).
		AddIn("channel", f.Channels).
		BuildWithPrefix()
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, artist, title, channel, timestamp, ingested_at
		FROM plays `+where+`
		ORDER BY timestamp DESC, id
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			p      models.Play
			artist sql.NullString
		)
		if err := rows.Scan(&p.ID, &artist, &p.Title, &p.Channel, &p.Timestamp, &p.IngestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		if artist.Valid {
			a := artist.String
			p.Artist = &a
		}
		p.Timestamp = p.Timestamp.UTC()
		p.IngestedAt = p.IngestedAt.UTC()
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plays: %w", err)
	}
	return plays, nil
}
