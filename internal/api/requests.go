// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/siriustracker/internal/models"
	"github.com/tomtom215/siriustracker/internal/validation"
)

// Request body limits.
const (
	maxAuthBodyBytes   = 64 << 10
	maxIngestBodyBytes = 8 << 20
	maxAdminBodyBytes  = 16 << 20
)

// VerifyTokenRequest is the body of POST /api/verify-google-token.
type VerifyTokenRequest struct {
	Credential string `json:"credential" validate:"required,max=8192"`
}

// IngestRequest is the body of POST /api/ingest. Individual plays are not
// validated here; the ingest service skips malformed ones.
type IngestRequest struct {
	Plays []models.RawPlay `json:"plays" validate:"required,max=5000"`
}

// StationsRequest is the body of PUT /api/admin/stations.
type StationsRequest struct {
	Stations []string `json:"stations" validate:"required,min=1,max=200,dive,station"`
}

// decodeJSONBody decodes a size-limited JSON body into dst and validates it.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSONBody(rw *ResponseWriter, r *http.Request, limit int64, dst interface{}) bool {
	body := http.MaxBytesReader(rw.w, r.Body, limit)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		rw.BadRequest(fmt.Sprintf("invalid request body: %v", err))
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}
