// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/siriustracker/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from a handler and its security settings.
func NewRouter(handler *Handler) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&handler.config.Security)),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
//
// The dashboard calls /date-range and /verify-google-token both with and
// without the /api prefix, so those two are mounted twice.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(router.chiMiddleware.RateLimit())
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Group(func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.Compression())

		r.Get("/api/artist-plays", h.ArtistPlays)
		r.Get("/api/first-plays", h.FirstPlays)
		r.Get("/api/date-range/{period}", h.DateRange)
		r.Get("/date-range/{period}", h.DateRange)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitStrict())
		r.Use(APISecurityHeaders())

		r.Post("/api/verify-google-token", h.VerifyGoogleToken)
		r.Post("/verify-google-token", h.VerifyGoogleToken)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitStrict())
		r.Use(APISecurityHeaders())
		r.Use(RequireBearerToken(h.config.Security.IngestToken, h.audit))

		r.Post("/api/ingest", h.Ingest)

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/catalog", h.GetCatalog)
			r.Put("/catalog", h.PutCatalog)
			r.Post("/catalog/reload", h.ReloadCatalog)
			r.Post("/poll", h.TriggerPoll)
			r.Get("/stations", h.GetStations)
			r.Put("/stations", h.PutStations)
			r.Get("/plays", h.ListPlays)
			r.Get("/audit", h.AuditEvents)
		})
	})

	if dir := h.config.Server.StaticDir; dir != "" {
		r.Get("/", indexHandler(dir))
		r.Handle("/static/*", staticHandler(dir))
	}

	return r
}
