// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/testinfra"
)

const testClientID = "client-123.apps.googleusercontent.com"

func newTestVerifier(t *testing.T, allowed ...string) (*GoogleVerifier, *testinfra.MockGoogleIssuer) {
	t.Helper()
	issuer := testinfra.NewMockGoogleIssuer(t, testClientID)
	v, err := NewGoogleVerifier(issuer.SecurityConfig(allowed...), nil)
	if err != nil {
		t.Fatalf("NewGoogleVerifier() error = %v", err)
	}
	return v, issuer
}

func TestNewGoogleVerifier_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewGoogleVerifier(&config.SecurityConfig{}, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestGoogleVerifier_Check(t *testing.T) {
	t.Parallel()
	v, issuer := newTestVerifier(t, "Alice@Example.com", " bob@example.com ")
	ctx := context.Background()

	tests := []struct {
		name        string
		claims      testinfra.TokenClaims
		wantAllowed bool
	}{
		{"allowed, case differs", testinfra.TokenClaims{Email: "alice@example.COM"}, true},
		{"allowed, trimmed entry", testinfra.TokenClaims{Email: "bob@example.com"}, true},
		{"valid token, not listed", testinfra.TokenClaims{Email: "mallory@example.com"}, false},
		{"legacy issuer", testinfra.TokenClaims{Email: "alice@example.com", Issuer: "accounts.google.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token := issuer.SignToken(t, tt.claims)
			decision, err := v.Check(ctx, token)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if decision.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", decision.Allowed, tt.wantAllowed)
			}
			if decision.Identity == nil || decision.Identity.Email != tt.claims.Email {
				t.Errorf("Identity = %+v", decision.Identity)
			}
		})
	}
}

func TestGoogleVerifier_RejectsInvalidTokens(t *testing.T) {
	t.Parallel()
	v, issuer := newTestVerifier(t, "alice@example.com")
	ctx := context.Background()

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{"empty", func(t *testing.T) string { return "  " }, ErrMissingCredential},
		{"garbage", func(t *testing.T) string { return "not.a.jwt" }, ErrInvalidToken},
		{"wrong audience", func(t *testing.T) string {
			return issuer.SignToken(t, testinfra.TokenClaims{Email: "alice@example.com", Audience: "someone-else"})
		}, ErrInvalidToken},
		{"wrong issuer", func(t *testing.T) string {
			return issuer.SignToken(t, testinfra.TokenClaims{Email: "alice@example.com", Issuer: "https://evil.example.com"})
		}, ErrInvalidToken},
		{"expired", func(t *testing.T) string {
			return issuer.SignToken(t, testinfra.TokenClaims{
				Email:     "alice@example.com",
				IssuedAt:  time.Now().Add(-2 * time.Hour),
				ExpiresAt: time.Now().Add(-time.Hour),
			})
		}, ErrExpiredToken},
		{"foreign key", func(t *testing.T) string {
			return issuer.SignTokenWithForeignKey(t, testinfra.TokenClaims{Email: "alice@example.com"})
		}, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			decision, err := v.Check(ctx, tt.token(t))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Check() error = %v, want %v", err, tt.wantErr)
			}
			if decision.Allowed {
				t.Error("invalid token must not be allowed")
			}
		})
	}
}

func TestAllowList(t *testing.T) {
	t.Parallel()

	l := NewAllowList([]string{"A@x.com", "", "  ", "a@x.com", "b@y.org"})
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
	if !l.Contains(" a@X.COM") {
		t.Error("Contains should be case-insensitive and trimmed")
	}
	if l.Contains("c@z.net") || l.Contains("") {
		t.Error("unexpected match")
	}
}
