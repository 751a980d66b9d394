// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/siriustracker/internal/logging"
)

// HTTPServer is the part of *http.Server the API layer needs.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs the reporting, ingest and admin API in the api
// layer of the tree. It sits above the data and polling layers, so it is
// the first thing suture stops: in-flight ingest requests finish before
// the poller and the journal go away.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService wraps server. A non-positive timeout means 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "api-server",
	}
}

// Serve implements suture.Service. A listener that exits on its own (bind
// failure) is returned as an error so suture restarts it with backoff.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	logger := logging.WithComponent(h.name)

	listenDone := make(chan error, 1)
	go func() {
		listenDone <- h.server.ListenAndServe()
	}()

	select {
	case err := <-listenDone:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server failed: %w", err)

	case <-ctx.Done():
	}

	logger.Info().Dur("timeout", h.shutdownTimeout).Msg("Draining API requests")

	// ctx is canceled; the drain gets its own deadline.
	drainCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(drainCtx); err != nil {
		logger.Warn().Err(err).Msg("API drain did not finish cleanly")
		return fmt.Errorf("api server shutdown failed: %w", err)
	}

	<-listenDone
	logger.Info().Msg("API server stopped")
	return ctx.Err()
}

func (h *HTTPServerService) String() string {
	return h.name
}
