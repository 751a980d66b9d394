// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package reportimport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/siriustracker/internal/models"
)

// Conversion errors. The row is counted as invalid and skipped.
var (
	ErrMissingField = errors.New("missing required field")
	ErrBadDateTime  = errors.New("unparseable datetime")
)

var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
}

// Mapper converts report rows to plays.
type Mapper struct {
	loc   *time.Location
	newID func() string
}

// NewMapper creates a mapper for reports written in loc.
func NewMapper(loc *time.Location) *Mapper {
	if loc == nil {
		loc = time.UTC
	}
	return &Mapper{loc: loc, newID: uuid.NewString}
}

// ToPlay converts rec. The title is normalized like polled titles so
// imported plays match the catalog the same way.
func (m *Mapper) ToPlay(rec Record) (models.Play, error) {
	if rec.DateTime == "" || rec.Title == "" {
		return models.Play{}, fmt.Errorf("line %d: %w", rec.Line, ErrMissingField)
	}

	ts, err := m.ParseDateTime(rec.DateTime)
	if err != nil {
		return models.Play{}, fmt.Errorf("line %d: %w", rec.Line, err)
	}

	play := models.Play{
		ID:        m.newID(),
		Title:     models.NormalizeTitle(rec.Title),
		Channel:   ChannelName(rec.Channel),
		Timestamp: ts,
	}
	if rec.Artist != "" {
		play.Artist = models.StringPtr(rec.Artist)
	}
	return play, nil
}

// ParseDateTime accepts RFC 3339 or a local layout interpreted in the
// mapper's zone. The result is UTC truncated to the second.
func (m *Mapper) ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, m.loc); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDateTime, value)
}

// ChannelName strips a "Provider: " prefix from a report channel.
func ChannelName(raw string) string {
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		return strings.TrimSpace(raw[i+1:])
	}
	return strings.TrimSpace(raw)
}
