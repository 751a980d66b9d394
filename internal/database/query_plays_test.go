// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package database

import (
	"context"
	"testing"
	"time"
)

func TestListPlays(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)
	ctx := context.Background()

	dayEnd := jan1.Add(24 * time.Hour)

	tests := []struct {
		name    string
		filter  PlayFilter
		wantIDs []string
	}{
		{"all newest first", PlayFilter{}, []string{"x9", "x5", "x4", "x3", "x2", "x1", "x6", "x7", "x8"}},
		{"limit", PlayFilter{Limit: 2}, []string{"x9", "x5"}},
		{"artist is case-insensitive", PlayFilter{Artist: "JANE DOE", End: &dayEnd}, []string{"x3", "x2", "x1", "x7"}},
		{"title contains", PlayFilter{Title: "about d"}, []string{"x2"}},
		{"channels", PlayFilter{Channels: []string{"Raw Dog", "Comedy Greats"}}, []string{"x4", "x2"}},
		{"range", PlayFilter{Start: timePtr(jan1.Add(time.Hour)), End: timePtr(jan1.Add(3 * time.Hour))}, []string{"x4", "x3", "x2"}},
		{"no match", PlayFilter{Artist: "Nobody"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plays, err := db.ListPlays(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListPlays() error = %v", err)
			}
			var got []string
			for _, p := range plays {
				got = append(got, p.ID)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("ListPlays() ids = %v, want %v", got, tt.wantIDs)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Errorf("ListPlays() ids = %v, want %v", got, tt.wantIDs)
					break
				}
			}
		})
	}
}

func TestListPlays_NullArtist(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)

	plays, err := db.ListPlays(context.Background(), PlayFilter{Start: &jan1, End: &jan1, Channels: []string{"Laugh Channel"}})
	if err != nil {
		t.Fatal(err)
	}
	var sawNull bool
	for _, p := range plays {
		if p.Artist == nil {
			sawNull = true
		}
	}
	if !sawNull {
		t.Error("expected the artistless play to be listed with a nil Artist")
	}
}

func timePtr(t time.Time) *time.Time { return &t }
