// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
)

// googleLegacyIssuer is the scheme-less issuer Google still puts on some tokens.
const googleLegacyIssuer = "accounts.google.com"

// Identity is the verified subset of an ID token.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	ExpiresAt     time.Time
}

// Decision is the result of checking a credential against the allow-list.
type Decision struct {
	Allowed  bool
	Identity *Identity
}

// GoogleVerifier verifies Google ID tokens and checks the email allow-list.
type GoogleVerifier struct {
	verifiers []*rp.IDTokenVerifier
	allowed   *AllowList
}

// NewGoogleVerifier builds a verifier from the security config. Keys are
// fetched lazily from the JWKS URL on first use and cached by the key set.
// A nil httpClient uses a client with a 10s timeout.
func NewGoogleVerifier(cfg *config.SecurityConfig, httpClient *http.Client) (*GoogleVerifier, error) {
	if cfg.GoogleClientID == "" {
		return nil, ErrNotConfigured
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	keySet := rp.NewRemoteKeySet(httpClient, cfg.GoogleJWKSURL)

	issuers := []string{cfg.GoogleIssuer}
	if cfg.GoogleIssuer == "https://"+googleLegacyIssuer {
		issuers = append(issuers, googleLegacyIssuer)
	}

	v := &GoogleVerifier{allowed: NewAllowList(cfg.AllowedEmails)}
	for _, issuer := range issuers {
		v.verifiers = append(v.verifiers, rp.NewIDTokenVerifier(issuer, cfg.GoogleClientID, keySet))
	}

	logging.Info().
		Strs("issuers", issuers).
		Str("jwks_url", cfg.GoogleJWKSURL).
		Int("allowed_emails", v.allowed.Len()).
		Msg("Google token verifier configured")

	return v, nil
}

// Verify checks the token's signature, issuer, audience and expiry.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrMissingCredential
	}

	var lastErr error
	for _, verifier := range v.verifiers {
		claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, credential, verifier)
		if err == nil {
			return identityFromClaims(claims), nil
		}
		lastErr = err
		if !errors.Is(err, oidc.ErrIssuerInvalid) {
			break
		}
	}
	return nil, mapVerificationError(lastErr)
}

// Check verifies the credential and reports whether its email is allowed.
// Only verification failures return an error; a valid token for an address
// outside the allow-list is a Decision with Allowed false.
func (v *GoogleVerifier) Check(ctx context.Context, credential string) (Decision, error) {
	identity, err := v.Verify(ctx, credential)
	if err != nil {
		metrics.RecordAuthVerification("invalid")
		return Decision{}, err
	}

	allowed := v.allowed.Contains(identity.Email)
	if allowed {
		metrics.RecordAuthVerification("allowed")
	} else {
		metrics.RecordAuthVerification("denied")
		logging.Ctx(ctx).Info().Str("email", identity.Email).Msg("Verified Google account is not on the allow-list")
	}
	return Decision{Allowed: allowed, Identity: identity}, nil
}

func identityFromClaims(claims *oidc.IDTokenClaims) *Identity {
	return &Identity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
		ExpiresAt:     claims.Expiration.AsTime(),
	}
}

// mapVerificationError folds zitadel's verification errors into ErrInvalidToken.
func mapVerificationError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, oidc.ErrExpired):
		return fmt.Errorf("%w: %w", ErrInvalidToken, ErrExpiredToken)
	case errors.Is(err, oidc.ErrIssuerInvalid):
		logging.Warn().Err(err).Msg("Token issuer mismatch")
		return fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	case errors.Is(err, oidc.ErrAudience):
		logging.Warn().Err(err).Msg("Token audience mismatch")
		return fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	default:
		logging.Debug().Err(err).Msg("Token verification failed")
		return fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}
}
