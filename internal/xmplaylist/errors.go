// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package xmplaylist

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStationNotFound is returned for a 404 from the provider.
var ErrStationNotFound = errors.New("station not found")

// HTTPError is a non-2xx response from the provider.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("playlist request failed with status %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps 404 to ErrStationNotFound.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrStationNotFound
	}
	return nil
}

// isClientError reports whether err is a 4xx other than 429. Those are
// caused by the request (bad station name, bad key) and say nothing about
// provider health.
func isClientError(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 &&
		httpErr.StatusCode != http.StatusTooManyRequests
}
