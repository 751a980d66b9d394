// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/siriustracker/internal/audit"
)

// tokenActor names the caller of bearer-token routes. The shared token has
// no identity of its own.
const tokenActor = "ingest-token"

// recordAdmin logs an audit event for a bearer-token route.
func (h *Handler) recordAdmin(r *http.Request, eventType audit.EventType, outcome audit.Outcome, description string, metadata any) {
	if h.audit == nil {
		return
	}
	event := audit.NewEvent(r, eventType, outcome).
		WithActor(tokenActor).
		WithDescription(description)
	if metadata != nil {
		event.WithMetadata(metadata)
	}
	h.audit.Log(event)
}

// AuditEvents handles GET /api/admin/audit?type=&outcome=&actor=&since=&until=&limit=.
//
// type and outcome may repeat or hold comma-separated lists. Events are
// returned newest first.
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.audit == nil {
		rw.ServiceUnavailable("audit trail is disabled")
		return
	}

	q := r.URL.Query()
	filter := audit.QueryFilter{Actor: strings.TrimSpace(q.Get("actor"))}
	for _, v := range splitList(q["type"]) {
		filter.Types = append(filter.Types, audit.EventType(v))
	}
	for _, v := range splitList(q["outcome"]) {
		filter.Outcomes = append(filter.Outcomes, audit.Outcome(v))
	}

	for name, dst := range map[string]**time.Time{"since": &filter.Since, "until": &filter.Until} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		t, err := parseDateParam(v, h.location)
		if err != nil {
			rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeInvalidDateRange, err.Error(), map[string]string{name: v})
			return
		}
		*dst = &t
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			rw.BadRequest("limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	count := len(events)
	rw.SuccessWithMeta(events, &APIMeta{Count: &count})
}

// splitList flattens repeated and comma-separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
