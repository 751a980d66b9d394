// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateRange is returned for malformed bounds and start > end.
var ErrInvalidDateRange = errors.New("invalid date range")

// localLayouts carry no zone and are read in the reference timezone.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDateParam parses an RFC 3339 instant, or a naive datetime or date
// interpreted in loc.
func parseDateParam(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidDateRange, value)
}

// defaultRangeStart is used when no start is given and for unknown periods.
func defaultRangeStart(loc *time.Location) time.Time {
	return time.Date(2020, time.January, 1, 0, 0, 0, 0, loc)
}

// resolveRange applies defaults and checks ordering. Blank parameters
// default to 2020-01-01 and now in loc.
func resolveRange(start, end string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	s := defaultRangeStart(loc)
	e := now.In(loc)

	if start != "" {
		t, err := parseDateParam(start, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		s = t
	}
	if end != "" {
		t, err := parseDateParam(end, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		e = t
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidDateRange, s.Format(time.RFC3339), e.Format(time.RFC3339))
	}
	return s, e, nil
}

// periodStart returns the start of a named period containing now, in loc.
// Weeks start on Monday. Unknown periods fall back to 2020-01-01.
func periodStart(period string, now time.Time, loc *time.Location) time.Time {
	now = now.In(loc)
	y, m, d := now.Date()

	switch strings.ToLower(period) {
	case "today":
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case "week":
		offset := (int(now.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case "month":
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case "year":
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return defaultRangeStart(loc)
	}
}
