// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package auth

import "errors"

var (
	// ErrNotConfigured means GOOGLE_CLIENT_ID is unset.
	ErrNotConfigured = errors.New("google sign-in is not configured")

	// ErrInvalidToken covers every verification failure: signature,
	// issuer, audience, expiry and malformed input.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is wrapped together with ErrInvalidToken.
	ErrExpiredToken = errors.New("token has expired")

	// ErrMissingCredential means the request carried no token at all.
	ErrMissingCredential = errors.New("missing credential")
)
