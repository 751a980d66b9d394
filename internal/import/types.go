// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package reportimport

import "time"

// Record is one data row of a report, before conversion.
type Record struct {
	Line     int
	DateTime string
	Artist   string
	Title    string
	Channel  string
}

// Stats summarizes an import.
type Stats struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Rows      int       `json:"rows"`
	Imported  int       `json:"imported"`
	Existing  int       `json:"existing"`
	Invalid   int       `json:"invalid"`
	Errors    int       `json:"errors"`
	DryRun    bool      `json:"dry_run"`
}

// Duration returns the elapsed import time.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RowsPerSecond returns the processing rate.
func (s *Stats) RowsPerSecond() float64 {
	d := s.Duration().Seconds()
	if d <= 0 {
		return 0
	}
	return float64(s.Rows) / d
}
