// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/siriustracker/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

func TestValidateStruct_RawPlay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		play      models.RawPlay
		wantField string
	}{
		{
			name: "valid rfc3339",
			play: models.RawPlay{ID: "x1", Title: "Bit", Channel: "Laugh", Timestamp: "2024-01-01T00:00:00Z"},
		},
		{
			name: "valid naive timestamp",
			play: models.RawPlay{ID: "x1", Title: "Bit", Timestamp: "2024-01-01T00:00:00"},
		},
		{
			name:      "missing id",
			play:      models.RawPlay{Title: "Bit", Timestamp: "2024-01-01T00:00:00Z"},
			wantField: "ID",
		},
		{
			name:      "missing title",
			play:      models.RawPlay{ID: "x1", Timestamp: "2024-01-01T00:00:00Z"},
			wantField: "Title",
		},
		{
			name:      "bad timestamp",
			play:      models.RawPlay{ID: "x1", Title: "Bit", Timestamp: "yesterday"},
			wantField: "Timestamp",
		},
		{
			name:      "oversized id",
			play:      models.RawPlay{ID: strings.Repeat("x", 300), Title: "Bit", Timestamp: "2024-01-01T00:00:00Z"},
			wantField: "ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.play)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateStruct() = nil, want error on %s", tt.wantField)
			}
			if got := err.Fields[0].Field; got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestValidateStruct_Station(t *testing.T) {
	t.Parallel()

	type stationsRequest struct {
		Stations []string `validate:"required,min=1,dive,station"`
	}

	tests := []struct {
		stations []string
		valid    bool
	}{
		{[]string{"comedygreats", "siriusxm-comedy", "laugh_usa"}, true},
		{[]string{"ok", "../etc/passwd"}, false},
		{[]string{"has space"}, false},
		{[]string{""}, false},
		{[]string{}, false},
	}

	for _, tt := range tests {
		err := ValidateStruct(&stationsRequest{Stations: tt.stations})
		if (err == nil) != tt.valid {
			t.Errorf("ValidateStruct(%v) error = %v, want valid=%v", tt.stations, err, tt.valid)
		}
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&models.RawPlay{ID: "x1", Title: "Bit", Timestamp: "nope"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "RFC3339") {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "Timestamp" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&models.RawPlay{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Fields) != 3 {
		t.Fatalf("errors = %d, want 3 (id, title, timestamp)", len(err.Fields))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("Details[fields] = %v", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "ID: ID is required") {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestValidateStruct_TrackedArtist(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&models.TrackedArtist{Artist: "Jane Doe", Tracks: []string{"Bit"}}); err != nil {
		t.Errorf("valid artist: %v", err)
	}
	if err := ValidateStruct(&models.TrackedArtist{Artist: "", Tracks: []string{"Bit"}}); err == nil {
		t.Error("missing artist should fail")
	}
	if err := ValidateStruct(&models.TrackedArtist{Artist: "Jane", Tracks: []string{""}}); err == nil {
		t.Error("empty track title should fail")
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	type limits struct {
		Name  string `validate:"min=3"`
		Count int    `validate:"max=5"`
		Kind  string `validate:"oneof=a b"`
	}

	err := ValidateStruct(&limits{Name: "x", Count: 9, Kind: "c"})
	if err == nil {
		t.Fatal("expected errors")
	}

	want := map[string]string{
		"Name":  "Name must be at least 3 characters",
		"Count": "Count must be at most 5",
		"Kind":  "Kind must be one of: a b",
	}
	for _, fe := range err.Fields {
		if fe.Message != want[fe.Field] {
			t.Errorf("%s: message = %q, want %q", fe.Field, fe.Message, want[fe.Field])
		}
	}
}
