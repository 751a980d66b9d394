// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package auth verifies dashboard sign-ins and machine bearer tokens.

Dashboard access is a Google ID token checked against an email allow-list.
GoogleVerifier uses zitadel/oidc's certified IDTokenVerifier, which checks:

  - the RS256 signature against Google's JWKS (fetched and cached by rp.NewRemoteKeySet)
  - the issuer, accepting both https://accounts.google.com and accounts.google.com
  - the audience, which must equal GOOGLE_CLIENT_ID
  - expiry and issued-at, with a one-second leeway

There are no sessions or roles. The frontend calls
POST /api/verify-google-token and gates itself on the answer.

Ingest and admin endpoints use a shared secret (INGEST_TOKEN) compared with
TokenMatches in constant time.
*/
package auth
