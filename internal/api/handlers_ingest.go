// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"net/http"

	"github.com/tomtom215/siriustracker/internal/audit"
	"github.com/tomtom215/siriustracker/internal/logging"
)

// Ingest handles POST /api/ingest. The batch is stored and run through
// first-play detection before the response is written.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req IngestRequest
	if !decodeJSONBody(rw, r, maxIngestBodyBytes, &req) {
		return
	}

	summary, err := h.ingester.Ingest(r.Context(), req.Plays)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("plays", len(req.Plays)).Msg("Ingest request failed")
		h.recordAdmin(r, audit.EventTypeIngest, audit.OutcomeFailure, err.Error(), map[string]int{"plays": len(req.Plays)})
		rw.InternalError("failed to ingest batch")
		return
	}

	if summary.Inserted > 0 || summary.Detection.Recorded > 0 {
		h.InvalidateReports()
	}
	h.recordAdmin(r, audit.EventTypeIngest, audit.OutcomeSuccess, "", summary)
	rw.Success(summary)
}
