// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package auth

import (
	"net/http/httptest"
	"testing"
)

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := BearerToken(r); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestTokenMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		presented, expected string
		want                bool
	}{
		{"secret", "secret", true},
		{"secret", "Secret", false},
		{"", "secret", false},
		{"", "", false},
		{"secret", "", false},
	}
	for _, tt := range tests {
		if got := TokenMatches(tt.presented, tt.expected); got != tt.want {
			t.Errorf("TokenMatches(%q, %q) = %v, want %v", tt.presented, tt.expected, got, tt.want)
		}
	}
}
