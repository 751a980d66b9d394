// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Play is one observed airing of a track on a channel.
//
// ID is the provider-assigned identifier and the deduplication key: storing
// the same ID twice keeps the first row. Artist is nil when the provider sent
// no artist. Timestamp is always UTC.
type Play struct {
	ID         string    `json:"id"`
	Artist     *string   `json:"artist"`
	Title      string    `json:"title"`
	Channel    string    `json:"channel"`
	Timestamp  time.Time `json:"timestamp"`
	IngestedAt time.Time `json:"ingested_at"`
}

// ArtistName returns the artist or "" when unknown.
func (p *Play) ArtistName() string {
	if p.Artist == nil {
		return ""
	}
	return *p.Artist
}

// RawPlay is the wire form accepted by the ingestion entrypoint, before
// timestamps are parsed and titles are normalized.
type RawPlay struct {
	ID        string  `json:"id" validate:"required,max=256"`
	Artist    *string `json:"artist,omitempty" validate:"omitempty,max=512"`
	Title     string  `json:"title" validate:"required,max=1024"`
	Channel   string  `json:"channel" validate:"max=256"`
	Timestamp string  `json:"timestamp" validate:"required,playtimestamp"`
}

// Raw play normalization errors. Callers skip the record and keep going.
var (
	ErrMissingID        = errors.New("play has no id")
	ErrMissingTitle     = errors.New("play has no title")
	ErrMissingTimestamp = errors.New("play has no timestamp")
	ErrBadTimestamp     = errors.New("play timestamp is not RFC 3339")
)

// naiveLayouts are accepted when the provider omits the zone; they are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParsePlayTimestamp parses an RFC 3339 timestamp, or a naive
// YYYY-MM-DDTHH:MM:SS[.frac] value read as UTC, and returns it in UTC
// truncated to microseconds (the store's precision).
func ParsePlayTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingTimestamp
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Truncate(time.Microsecond), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

// Normalize converts a RawPlay into a Play. The title is normalized with
// NormalizeTitle and a blank artist becomes nil.
func (r RawPlay) Normalize() (Play, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return Play{}, ErrMissingID
	}
	title := NormalizeTitle(r.Title)
	if title == "" {
		return Play{}, ErrMissingTitle
	}
	ts, err := ParsePlayTimestamp(r.Timestamp)
	if err != nil {
		return Play{}, err
	}

	var artist *string
	if r.Artist != nil {
		if a := strings.TrimSpace(*r.Artist); a != "" {
			artist = &a
		}
	}

	return Play{
		ID:        id,
		Artist:    artist,
		Title:     title,
		Channel:   strings.TrimSpace(r.Channel),
		Timestamp: ts,
	}, nil
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
