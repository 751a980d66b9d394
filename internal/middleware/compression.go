// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// compressionLevel trades a little CPU for smaller report payloads; the
// artist-plays report repeats the same artist and channel strings per play.
const compressionLevel = 5

// reportContentTypes are the only responses worth compressing. Health
// checks and the static bundle are left alone.
var reportContentTypes = []string{
	"application/json",
	"text/csv",
}

// Compression returns chi's Compress middleware restricted to report
// content types. Clients that do not send Accept-Encoding get plain bodies.
func Compression() func(http.Handler) http.Handler {
	return chimiddleware.Compress(compressionLevel, reportContentTypes...)
}
