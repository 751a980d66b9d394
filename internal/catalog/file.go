// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/siriustracker/internal/models"
)

// ErrEmptyCatalog is returned when a catalog file has no usable entries.
var ErrEmptyCatalog = errors.New("catalog has no tracked titles")

// maxFileSize bounds a catalog document.
const maxFileSize = 16 << 20

// ParseFile reads a tracked_artists.json document and normalizes it.
//
// Two shapes are accepted:
//
//	[{"artist": "Jane Doe", "tracks": ["bit about cats"]}]
//	{"Jane Doe": ["bit about cats"]}
func ParseFile(r io.Reader) ([]models.TrackedArtist, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("catalog exceeds %d bytes", maxFileSize)
	}

	var artists []models.TrackedArtist
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var byArtist map[string][]string
		if err := json.Unmarshal(trimmed, &byArtist); err != nil {
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
		for artist, tracks := range byArtist {
			artists = append(artists, models.TrackedArtist{Artist: artist, Tracks: tracks})
		}
	} else if err := json.Unmarshal(trimmed, &artists); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	normalized := Normalize(artists)
	if len(normalized) == 0 {
		return nil, ErrEmptyCatalog
	}
	return normalized, nil
}

// Normalize cleans a catalog before it is stored:
//   - artist names are trimmed; blank artists are dropped
//   - entries for the same artist are merged
//   - titles go through models.NormalizeTitle, blanks and repeats are dropped,
//     first-seen order is kept
//   - artists without titles are dropped
//   - artists are sorted alphabetically
func Normalize(in []models.TrackedArtist) []models.TrackedArtist {
	index := make(map[string]int)
	seen := make(map[string]map[string]struct{})
	var out []models.TrackedArtist

	for _, a := range in {
		artist := strings.TrimSpace(a.Artist)
		if artist == "" {
			continue
		}
		i, ok := index[artist]
		if !ok {
			i = len(out)
			index[artist] = i
			seen[artist] = make(map[string]struct{})
			out = append(out, models.TrackedArtist{Artist: artist})
		}
		for _, t := range a.Tracks {
			title := models.NormalizeTitle(t)
			if title == "" {
				continue
			}
			if _, dup := seen[artist][title]; dup {
				continue
			}
			seen[artist][title] = struct{}{}
			out[i].Tracks = append(out[i].Tracks, title)
		}
	}

	kept := out[:0]
	for _, a := range out {
		if len(a.Tracks) > 0 {
			kept = append(kept, a)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Artist < kept[j].Artist })
	return kept
}
