// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/siriustracker/internal/cache"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/models"
)

// DateRange is the response for /date-range/{period}.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ArtistPlays handles GET /api/artist-plays?start=&end=.
//
// Plays of tracked (artist, title) pairs in [start, end] grouped by artist,
// most plays first.
func (h *Handler) ArtistPlays(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()

	start, end, err := resolveRange(q.Get("start"), q.Get("end"), h.now(), h.location)
	if err != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeInvalidDateRange, err.Error(), map[string]string{
			"start": q.Get("start"),
			"end":   q.Get("end"),
		})
		return
	}

	key := cache.Key("artist-plays", [2]int64{start.UnixNano(), end.UnixNano()})
	rows, cached := h.reports.Get(key)
	if !cached {
		rows, err = h.store.ArtistPlays(r.Context(), start, end)
		if err != nil {
			rw.DatabaseError(err)
			return
		}
		if rows == nil {
			rows = []models.ArtistPlays{}
		}
		h.reports.Set(key, rows)
	}

	logging.Ctx(r.Context()).Debug().
		Time("start", start).
		Time("end", end).
		Int("artists", len(rows)).
		Bool("cached", cached).
		Msg("Artist plays query")

	count := len(rows)
	rw.SuccessWithMeta(rows, &APIMeta{Count: &count, Cached: cached})
}

// FirstPlays handles GET /api/first-plays.
func (h *Handler) FirstPlays(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	fps, err := h.store.ListFirstPlays(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if fps == nil {
		fps = []models.FirstPlay{}
	}
	count := len(fps)
	rw.SuccessWithMeta(fps, &APIMeta{Count: &count})
}

// DateRange handles GET /api/date-range/{period}. The bounds are rendered
// in the reference timezone.
func (h *Handler) DateRange(w http.ResponseWriter, r *http.Request) {
	now := h.now().In(h.location)
	start := periodStart(chi.URLParam(r, "period"), now, h.location)

	writeJSON(w, http.StatusOK, DateRange{
		Start: start.Format(time.RFC3339),
		End:   now.Format(time.RFC3339),
	})
}
