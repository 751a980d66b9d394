// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/siriustracker/internal/database/query"
	"github.com/tomtom215/siriustracker/internal/models"
)

// ArtistPlays aggregates plays in [start, end] (inclusive) by artist.
//
// Only plays whose artist is a tracked artist and whose title is a tracked
// title are counted; both comparisons are case-insensitive and independent
// of each other. Artists are grouped case-insensitively and displayed with
// the lexicographically smallest spelling seen. Each row lists one
// (title, channel) entry per play, so a track heard three times appears three
// times and len(Tracks) == Count.
//
// Rows are sorted by count descending, then artist ascending. Tracks within
// a row are sorted by title, then channel, then air time.
func (db *DB) ArtistPlays(ctx context.Context, start, end time.Time) (result []models.ArtistPlays, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "plays", time.Now(), &err)

	wb := query.NewWhereBuilder().
		AddClause("artist IS NOT NULL").
		AddTimeRange("timestamp", &start, &end).
		AddClause("lower(artist) IN (SELECT lower(artist) FROM tracked_tracks)").
		AddClause("lower(title) IN (SELECT lower(title) FROM tracked_tracks)")
	where, args := wb.BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx, "SELECT artist, title, channel FROM plays "+where+" ORDER BY timestamp, id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artist plays: %w", err)
	}
	defer closeWithLog(rows, "rows")

	type group struct {
		display string
		tracks  []models.TrackRef
	}
	groups := make(map[string]*group)

	for rows.Next() {
		var artist, title, channel string
		if err := rows.Scan(&artist, &title, &channel); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}

		key := strings.ToLower(artist)
		g, ok := groups[key]
		if !ok {
			g = &group{display: artist}
			groups[key] = g
		}
		if artist < g.display {
			g.display = artist
		}
		g.tracks = append(g.tracks, models.TrackRef{Title: title, Channel: channel})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plays: %w", err)
	}

	result = make([]models.ArtistPlays, 0, len(groups))
	for _, g := range groups {
		tracks := g.tracks
		sort.SliceStable(tracks, func(i, j int) bool {
			if tracks[i].Title != tracks[j].Title {
				return tracks[i].Title < tracks[j].Title
			}
			return tracks[i].Channel < tracks[j].Channel
		})
		result = append(result, models.ArtistPlays{Artist: g.display, Tracks: tracks, Count: len(tracks)})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Artist < result[j].Artist
	})

	return result, nil
}
