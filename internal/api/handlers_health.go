// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"net/http"
	"time"
)

// ReadyStatus is the body of a readiness probe.
type ReadyStatus struct {
	Status            string     `json:"status"`
	DatabaseConnected bool       `json:"database_connected"`
	CatalogPairs      int        `json:"catalog_pairs"`
	CatalogRefreshed  *time.Time `json:"catalog_last_refresh,omitempty"`
	LastSyncTime      *time.Time `json:"last_sync_time,omitempty"`
	Uptime            float64    `json:"uptime_seconds"`
}

// HealthLive handles liveness probe requests.
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests.
// Returns 200 OK only when the database answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	status := ReadyStatus{
		Status:            "ready",
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.catalog != nil {
		status.CatalogPairs = h.catalog.Pairs()
		if at := h.catalog.LastRefresh(); !at.IsZero() {
			status.CatalogRefreshed = &at
		}
	}
	if h.syncer != nil {
		if at := h.syncer.LastSyncTime(); !at.IsZero() {
			status.LastSyncTime = &at
		}
	}

	rw := NewResponseWriter(w, r)
	if !dbConnected {
		status.Status = "not_ready"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database unavailable", status)
		return
	}
	rw.Success(status)
}
