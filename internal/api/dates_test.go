// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"errors"
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestParseDateParam(t *testing.T) {
	t.Parallel()
	toronto := mustLoc(t, "America/Toronto")

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T05:00:00Z", time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)},
		{"2024-01-01T00:00:00-05:00", time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)},
		{"2024-01-01T00:00:00", time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)},
		{"2024-07-01", time.Date(2024, 7, 1, 4, 0, 0, 0, time.UTC)},
		{" 2024-07-01T12:30 ", time.Date(2024, 7, 1, 16, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := parseDateParam(tt.in, toronto)
		if err != nil {
			t.Errorf("parseDateParam(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDateParam(%q) = %v, want %v", tt.in, got.UTC(), tt.want)
		}
	}

	if _, err := parseDateParam("01/02/2024", toronto); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("error = %v, want ErrInvalidDateRange", err)
	}
}

func TestResolveRange(t *testing.T) {
	t.Parallel()
	toronto := mustLoc(t, "America/Toronto")
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	start, end, err := resolveRange("", "", now, toronto)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2020, 1, 1, 5, 0, 0, 0, time.UTC)) {
		t.Errorf("default start = %v", start.UTC())
	}
	if !end.Equal(now) {
		t.Errorf("default end = %v", end)
	}

	if _, _, err := resolveRange("2024-03-16", "", now, toronto); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("start after default end: error = %v", err)
	}
	if _, _, err := resolveRange("2024-01-01", "2024-01-01", now, toronto); err != nil {
		t.Errorf("equal bounds should be valid, got %v", err)
	}
}

func TestPeriodStart(t *testing.T) {
	t.Parallel()
	toronto := mustLoc(t, "America/Toronto")

	// Wednesday 2024-03-13 02:30 UTC is Tuesday 22:30 EDT.
	now := time.Date(2024, 3, 13, 2, 30, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   string
	}{
		{"today", "2024-03-12T00:00:00-04:00"},
		{"week", "2024-03-11T00:00:00-04:00"},
		{"month", "2024-03-01T00:00:00-05:00"},
		{"year", "2024-01-01T00:00:00-05:00"},
		{"all", "2020-01-01T00:00:00-05:00"},
		{"decade", "2020-01-01T00:00:00-05:00"},
	}

	for _, tt := range tests {
		got := periodStart(tt.period, now, toronto).Format(time.RFC3339)
		if got != tt.want {
			t.Errorf("periodStart(%q) = %s, want %s", tt.period, got, tt.want)
		}
	}

	// Monday stays on Monday.
	monday := time.Date(2024, 3, 11, 15, 0, 0, 0, toronto)
	if got := periodStart("week", monday, toronto).Format("2006-01-02"); got != "2024-03-11" {
		t.Errorf("week start on Monday = %s", got)
	}
}
