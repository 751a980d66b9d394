// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/siriustracker/internal/audit"
	"github.com/tomtom215/siriustracker/internal/auth"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/validation"
)

// VerifyTokenResponse is the dashboard's sign-in answer.
type VerifyTokenResponse struct {
	Allowed bool   `json:"allowed"`
	Email   string `json:"email,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VerifyGoogleToken handles POST /api/verify-google-token.
//
//	200 {"allowed": true|false}   valid token, allowed reflects the allow-list
//	400 {"allowed": false, ...}   malformed body
//	401 {"allowed": false, ...}   verification failed
//	503 {"allowed": false, ...}   GOOGLE_CLIENT_ID not configured
func (h *Handler) VerifyGoogleToken(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		writeJSON(w, http.StatusServiceUnavailable, VerifyTokenResponse{Error: auth.ErrNotConfigured.Error()})
		return
	}

	var req VerifyTokenRequest
	body := http.MaxBytesReader(w, r.Body, maxAuthBodyBytes)
	defer body.Close()
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerifyTokenResponse{Error: "invalid request body"})
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeJSON(w, http.StatusBadRequest, VerifyTokenResponse{Error: verr.Error()})
		return
	}

	decision, err := h.verifier.Check(r.Context(), req.Credential)
	if err != nil {
		logging.Ctx(r.Context()).Info().Err(err).Msg("Google token rejected")
		h.audit.Log(audit.NewEvent(r, audit.EventTypeSignInFailed, audit.OutcomeFailure).WithDescription(err.Error()))
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrMissingCredential) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, VerifyTokenResponse{Error: "Invalid token"})
		return
	}

	resp := VerifyTokenResponse{Allowed: decision.Allowed}
	if decision.Allowed && decision.Identity != nil {
		resp.Email = decision.Identity.Email
	}
	h.recordSignIn(r, decision)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) recordSignIn(r *http.Request, decision auth.Decision) {
	if h.audit == nil {
		return
	}
	eventType, outcome := audit.EventTypeSignInAllowed, audit.OutcomeSuccess
	if !decision.Allowed {
		eventType, outcome = audit.EventTypeSignInDenied, audit.OutcomeDenied
	}
	event := audit.NewEvent(r, eventType, outcome)
	if decision.Identity != nil {
		event.WithActor(decision.Identity.Email)
	}
	h.audit.Log(event)
}
