// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package query

import (
	"reflect"
	"testing"
	"time"
)

func TestWhereBuilder_Empty(t *testing.T) {
	t.Parallel()
	wb := NewWhereBuilder()

	if !wb.IsEmpty() || wb.Count() != 0 {
		t.Error("expected new builder to be empty")
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Build() = %q, want 1=1", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}

	prefixed, _ := wb.BuildWithPrefix()
	if prefixed != "WHERE 1=1" {
		t.Errorf("BuildWithPrefix() = %q", prefixed)
	}
}

func TestWhereBuilder_Filters(t *testing.T) {
	t.Parallel()

	toronto, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, toronto)
	end := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		build      func(wb *WhereBuilder)
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "time range converts to utc",
			build:      func(wb *WhereBuilder) { wb.AddTimeRange("timestamp", &start, &end) },
			wantClause: "timestamp >= ? AND timestamp <= ?",
			wantArgs:   []interface{}{start.UTC(), end},
		},
		{
			name:       "open ended range",
			build:      func(wb *WhereBuilder) { wb.AddTimeRange("timestamp", nil, &end) },
			wantClause: "timestamp <= ?",
			wantArgs:   []interface{}{end},
		},
		{
			name:       "in list",
			build:      func(wb *WhereBuilder) { wb.AddIn("channel", []string{"Comedy Greats", "Raw Dog"}) },
			wantClause: "channel IN (?, ?)",
			wantArgs:   []interface{}{"Comedy Greats", "Raw Dog"},
		},
		{
			name:       "empty in list skipped",
			build:      func(wb *WhereBuilder) { wb.AddIn("channel", nil) },
			wantClause: "1=1",
			wantArgs:   []interface{}{},
		},
		{
			name:       "equal fold",
			build:      func(wb *WhereBuilder) { wb.AddEqualFold("artist", "Jane Doe") },
			wantClause: "lower(artist) = lower(?)",
			wantArgs:   []interface{}{"Jane Doe"},
		},
		{
			name:       "contains fold escapes wildcards",
			build:      func(wb *WhereBuilder) { wb.AddContainsFold("title", "100%_live") },
			wantClause: `title ILIKE ? ESCAPE '\'`,
			wantArgs:   []interface{}{`%100\%\_live%`},
		},
		{
			name: "chained with raw clause",
			build: func(wb *WhereBuilder) {
				wb.AddClause("artist IS NOT NULL").
					AddEqualFold("artist", "").
					AddEqualFold("channel", "Laugh USA")
			},
			wantClause: "artist IS NOT NULL AND lower(channel) = lower(?)",
			wantArgs:   []interface{}{"Laugh USA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wb := NewWhereBuilder()
			tt.build(wb)
			gotClause, gotArgs := wb.Build()
			if gotClause != tt.wantClause {
				t.Errorf("clause = %q, want %q", gotClause, tt.wantClause)
			}
			if !reflect.DeepEqual(gotArgs, tt.wantArgs) {
				t.Errorf("args = %v, want %v", gotArgs, tt.wantArgs)
			}
		})
	}
}
