// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package database

import (
	"context"
	"fmt"
	"strings"
)

// ReplaceStations replaces the tracked station list. Blank and repeated
// names are dropped; order is kept.
func (db *DB) ReplaceStations(ctx context.Context, stations []string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return withConflictRetry(ctx, func() error {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM tracked_stations`); err != nil {
			return fmt.Errorf("failed to clear stations: %w", err)
		}

		seen := make(map[string]struct{}, len(stations))
		position := 0
		for _, s := range stations {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}

			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tracked_stations (name, position) VALUES (?, ?)`, s, position,
			); err != nil {
				return fmt.Errorf("failed to insert station %s: %w", s, err)
			}
			position++
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit stations: %w", err)
		}
		return nil
	})
}

// TrackedStations returns the stored station list in order. An empty list
// means the poller should use its configured fallback.
func (db *DB) TrackedStations(ctx context.Context) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT name FROM tracked_stations ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var stations []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, name)
	}
	return stations, rows.Err()
}
