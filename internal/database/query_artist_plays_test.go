// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package database

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/siriustracker/internal/models"
)

func seedReportData(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	if err := db.ReplaceCatalog(ctx, []models.TrackedArtist{
		{Artist: "Jane Doe", Tracks: []string{"Bit About Cats", "Bit About Dogs"}},
		{Artist: "John Roe", Tracks: []string{"Airport Story"}},
	}); err != nil {
		t.Fatal(err)
	}

	plays := []*models.Play{
		testPlay("x1", "Jane Doe", "Bit About Cats", "Laugh Channel", jan1),
		testPlay("x2", "jane doe", "bit about dogs", "Comedy Greats", jan1.Add(time.Hour)),
		testPlay("x3", "Jane Doe", "Bit About Cats", "Laugh Channel", jan1.Add(2*time.Hour)),
		testPlay("x4", "John Roe", "Airport Story", "Raw Dog", jan1.Add(3*time.Hour)),
		testPlay("x5", "John Roe", "Airport Story", "Laugh Channel", jan1.Add(4*time.Hour)),
		testPlay("x6", "Untracked Comic", "Bit About Cats", "Laugh Channel", jan1),
		testPlay("x7", "Jane Doe", "Unknown Bit", "Laugh Channel", jan1),
		testPlay("x8", "", "Bit About Cats", "Laugh Channel", jan1),
		testPlay("x9", "Jane Doe", "Bit About Cats", "Laugh Channel", jan1.AddDate(0, 1, 0)),
	}
	for _, p := range plays {
		if _, err := db.UpsertPlay(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
}

func TestArtistPlays(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)
	ctx := context.Background()

	got, err := db.ArtistPlays(ctx, jan1, jan1.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ArtistPlays() error = %v", err)
	}

	want := []models.ArtistPlays{
		{
			Artist: "Jane Doe",
			Tracks: []models.TrackRef{
				{Title: "Bit About Cats", Channel: "Laugh Channel"},
				{Title: "Bit About Cats", Channel: "Laugh Channel"},
				{Title: "bit about dogs", Channel: "Comedy Greats"},
			},
			Count: 3,
		},
		{
			Artist: "John Roe",
			Tracks: []models.TrackRef{
				{Title: "Airport Story", Channel: "Laugh Channel"},
				{Title: "Airport Story", Channel: "Raw Dog"},
			},
			Count: 2,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArtistPlays() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestArtistPlays_InclusiveBounds(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)
	ctx := context.Background()

	// Exactly on both ends: x1 at start, x3 at end.
	got, err := db.ArtistPlays(ctx, jan1, jan1.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Artist != "Jane Doe" || got[0].Count != 3 {
		t.Errorf("ArtistPlays() = %+v, want Jane Doe x3", got)
	}

	// Empty window.
	got, err = db.ArtistPlays(ctx, jan1.AddDate(1, 0, 0), jan1.AddDate(2, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("ArtistPlays() = %+v, want empty", got)
	}
}

func TestArtistPlays_TieBreakByArtist(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceCatalog(ctx, []models.TrackedArtist{
		{Artist: "Zed", Tracks: []string{"Bit"}},
		{Artist: "Amy", Tracks: []string{"Bit"}},
	}); err != nil {
		t.Fatal(err)
	}
	for _, p := range []*models.Play{
		testPlay("z", "Zed", "Bit", "Ch", jan1),
		testPlay("a", "Amy", "Bit", "Ch", jan1),
	} {
		if _, err := db.UpsertPlay(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ArtistPlays(ctx, jan1, jan1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Artist != "Amy" || got[1].Artist != "Zed" {
		t.Errorf("ArtistPlays() order = %+v, want Amy then Zed", got)
	}
}

func TestArtistPlays_OneTrackEntryPerPlay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceCatalog(ctx, []models.TrackedArtist{
		{Artist: "Jane Doe", Tracks: []string{"Bit About Cats", "Airport Story"}},
	}); err != nil {
		t.Fatal(err)
	}
	for _, p := range []*models.Play{
		testPlay("a1", "Jane Doe", "Bit About Cats", "Laugh Channel", jan1.Add(2*time.Hour)),
		testPlay("a2", "Jane Doe", "Airport Story", "Raw Dog", jan1.Add(time.Hour)),
		testPlay("a3", "Jane Doe", "Bit About Cats", "Laugh Channel", jan1),
	} {
		if _, err := db.UpsertPlay(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ArtistPlays(ctx, jan1, jan1.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("ArtistPlays() = %+v, want one row", got)
	}

	want := []models.TrackRef{
		{Title: "Airport Story", Channel: "Raw Dog"},
		{Title: "Bit About Cats", Channel: "Laugh Channel"},
		{Title: "Bit About Cats", Channel: "Laugh Channel"},
	}
	if !reflect.DeepEqual(got[0].Tracks, want) {
		t.Errorf("Tracks = %+v, want %+v", got[0].Tracks, want)
	}
	if got[0].Count != len(got[0].Tracks) {
		t.Errorf("Count = %d, want %d (one track entry per play)", got[0].Count, len(got[0].Tracks))
	}
}
