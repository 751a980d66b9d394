// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/siriustracker/internal/audit"
	"github.com/tomtom215/siriustracker/internal/catalog"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/models"
	syncpkg "github.com/tomtom215/siriustracker/internal/sync"
	"github.com/tomtom215/siriustracker/internal/validation"
)

// CatalogStatus describes the loaded catalog snapshot.
type CatalogStatus struct {
	Artists     int        `json:"artists"`
	Pairs       int        `json:"pairs"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
}

func (h *Handler) catalogStatus() CatalogStatus {
	status := CatalogStatus{
		Artists: len(h.catalog.Artists()),
		Pairs:   h.catalog.Pairs(),
	}
	if at := h.catalog.LastRefresh(); !at.IsZero() {
		status.LastRefresh = &at
	}
	return status
}

// GetCatalog handles GET /api/admin/catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.catalog.Artists())
}

// PutCatalog handles PUT /api/admin/catalog. The body uses the
// tracked_artists.json format. The catalog is replaced, not merged, and the
// in-memory snapshot is reloaded before responding.
func (h *Handler) PutCatalog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	body := http.MaxBytesReader(w, r.Body, maxAdminBodyBytes)
	defer body.Close()

	artists, err := catalog.ParseFile(body)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	for i := range artists {
		if verr := validation.ValidateStruct(&artists[i]); verr != nil {
			apiErr := verr.ToAPIError()
			rw.ValidationError(artists[i].Artist+": "+apiErr.Message, apiErr.Details)
			return
		}
	}

	if err := h.store.ReplaceCatalog(r.Context(), artists); err != nil {
		h.recordAdmin(r, audit.EventTypeCatalogReplaced, audit.OutcomeFailure, err.Error(), nil)
		rw.DatabaseError(err)
		return
	}
	if err := h.catalog.Reload(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Catalog stored but reload failed")
		h.recordAdmin(r, audit.EventTypeCatalogReplaced, audit.OutcomeFailure, "catalog stored but reload failed", nil)
		rw.InternalError("catalog stored but reload failed")
		return
	}

	h.InvalidateReports()
	h.recordAdmin(r, audit.EventTypeCatalogReplaced, audit.OutcomeSuccess, "", h.catalogStatus())
	logging.Ctx(r.Context()).Info().Int("artists", len(artists)).Int("pairs", h.catalog.Pairs()).Msg("Catalog replaced")
	rw.Success(h.catalogStatus())
}

// ReloadCatalog handles POST /api/admin/catalog/reload.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.catalog.Reload(r.Context()); err != nil {
		h.recordAdmin(r, audit.EventTypeCatalogReloaded, audit.OutcomeFailure, err.Error(), nil)
		rw.DatabaseError(err)
		return
	}
	h.InvalidateReports()
	status := h.catalogStatus()
	h.recordAdmin(r, audit.EventTypeCatalogReloaded, audit.OutcomeSuccess, "", status)
	rw.Success(status)
}

// TriggerPoll handles POST /api/admin/poll. It runs one pass synchronously
// and answers 409 while another pass is running.
func (h *Handler) TriggerPoll(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.syncer == nil {
		rw.ServiceUnavailable("poller is disabled")
		return
	}

	summary, err := h.syncer.TriggerSync(r.Context())
	switch {
	case errors.Is(err, syncpkg.ErrSyncInProgress):
		rw.Conflict("a poll is already running")
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Manual poll failed")
		h.recordAdmin(r, audit.EventTypePollTriggered, audit.OutcomeFailure, err.Error(), nil)
		rw.InternalError("poll failed")
	default:
		h.InvalidateReports()
		h.recordAdmin(r, audit.EventTypePollTriggered, audit.OutcomeSuccess, "", summary)
		rw.Success(summary)
	}
}

// GetStations handles GET /api/admin/stations.
func (h *Handler) GetStations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	stations, err := h.store.TrackedStations(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if stations == nil {
		stations = []string{}
	}
	rw.Success(map[string]interface{}{
		"stations": stations,
		"fallback": h.config.Poller.Stations,
	})
}

// PutStations handles PUT /api/admin/stations.
func (h *Handler) PutStations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req StationsRequest
	if !decodeJSONBody(rw, r, maxAdminBodyBytes, &req) {
		return
	}

	if err := h.store.ReplaceStations(r.Context(), req.Stations); err != nil {
		h.recordAdmin(r, audit.EventTypeStationsReplaced, audit.OutcomeFailure, err.Error(), nil)
		rw.DatabaseError(err)
		return
	}
	h.recordAdmin(r, audit.EventTypeStationsReplaced, audit.OutcomeSuccess, "", req.Stations)

	logging.Ctx(r.Context()).Info().Strs("stations", req.Stations).Msg("Tracked stations replaced")
	rw.Success(map[string]interface{}{"stations": req.Stations})
}

// ListPlays handles GET /api/admin/plays?start=&end=&artist=&title=&channel=&limit=.
//
// Raw stored plays, newest first, for checking what the poller recorded.
// Unlike the reports, bounds are optional and not defaulted. channel may
// repeat or hold a comma-separated list.
func (h *Handler) ListPlays(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()

	filter := database.PlayFilter{
		Artist: strings.TrimSpace(q.Get("artist")),
		Title:  strings.TrimSpace(q.Get("title")),
	}
	filter.Channels = splitList(q["channel"])

	for name, dst := range map[string]**time.Time{"start": &filter.Start, "end": &filter.End} {
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
	if filter.Start != nil && filter.End != nil && filter.Start.After(*filter.End) {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeInvalidDateRange, ErrInvalidDateRange.Error()+": start is after end", map[string]string{
			"start": q.Get("start"),
			"end":   q.Get("end"),
		})
		return
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			rw.BadRequest("limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	plays, err := h.store.ListPlays(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if plays == nil {
		plays = []models.Play{}
	}

	count := len(plays)
	rw.SuccessWithMeta(plays, &APIMeta{Count: &count})
}
