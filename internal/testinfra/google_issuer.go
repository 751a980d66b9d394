// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package testinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/siriustracker/internal/config"
)

// MockGoogleIssuer serves a JWKS document and signs ID tokens with the
// matching RS256 key, standing in for accounts.google.com.
type MockGoogleIssuer struct {
	Server   *httptest.Server
	Issuer   string
	ClientID string

	privateKey *rsa.PrivateKey
	keyID      string
}

// TokenClaims customizes a signed token. Zero fields take defaults.
type TokenClaims struct {
	Subject   string
	Email     string
	Audience  string
	Issuer    string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// NewMockGoogleIssuer starts the JWKS server and closes it on test cleanup.
func NewMockGoogleIssuer(t *testing.T, clientID string) *MockGoogleIssuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}

	m := &MockGoogleIssuer{
		Issuer:     "https://accounts.google.com",
		ClientID:   clientID,
		privateKey: key,
		keyID:      uuid.NewString(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/v3/certs", m.handleJWKS)
	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)
	return m
}

// JWKSURL returns the key set endpoint.
func (m *MockGoogleIssuer) JWKSURL() string {
	return m.Server.URL + "/oauth2/v3/certs"
}

// SecurityConfig returns a config wired to this issuer.
func (m *MockGoogleIssuer) SecurityConfig(allowed ...string) *config.SecurityConfig {
	return &config.SecurityConfig{
		GoogleClientID: m.ClientID,
		GoogleIssuer:   m.Issuer,
		GoogleJWKSURL:  m.JWKSURL(),
		AllowedEmails:  allowed,
	}
}

// SignToken returns a compact RS256 ID token.
func (m *MockGoogleIssuer) SignToken(t *testing.T, c TokenClaims) string {
	t.Helper()
	return m.sign(t, c, m.privateKey)
}

// SignTokenWithForeignKey signs with a key that is not in the JWKS.
func (m *MockGoogleIssuer) SignTokenWithForeignKey(t *testing.T, c TokenClaims) string {
	t.Helper()
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}
	return m.sign(t, c, other)
}

func (m *MockGoogleIssuer) sign(t *testing.T, c TokenClaims, key *rsa.PrivateKey) string {
	t.Helper()

	now := time.Now()
	if c.Subject == "" {
		c.Subject = "1234567890"
	}
	if c.Audience == "" {
		c.Audience = m.ClientID
	}
	if c.Issuer == "" {
		c.Issuer = m.Issuer
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = now.Add(-time.Minute)
	}
	if c.ExpiresAt.IsZero() {
		c.ExpiresAt = now.Add(time.Hour)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":            c.Issuer,
		"sub":            c.Subject,
		"aud":            c.Audience,
		"email":          c.Email,
		"email_verified": true,
		"iat":            c.IssuedAt.Unix(),
		"exp":            c.ExpiresAt.Unix(),
	})
	token.Header["kid"] = m.keyID

	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (m *MockGoogleIssuer) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	pub := &m.privateKey.PublicKey
	jwks := map[string]interface{}{
		"keys": []map[string]interface{}{
			{
				"kty": "RSA",
				"kid": m.keyID,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(jwks); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
