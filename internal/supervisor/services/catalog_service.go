// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package services

import (
	"context"
	"time"

	"github.com/tomtom215/siriustracker/internal/logging"
)

// CatalogReloader reloads the tracked catalog from its store.
type CatalogReloader interface {
	Reload(ctx context.Context) error
}

// CatalogService refreshes the in-memory catalog on an interval so edits
// made directly in the database (or by trackerctl) are picked up without
// a restart. A failed reload keeps the previous snapshot.
type CatalogService struct {
	catalog  CatalogReloader
	interval time.Duration
	name     string
}

// NewCatalogService creates the refresher. A non-positive interval means 10m.
func NewCatalogService(catalog CatalogReloader, interval time.Duration) *CatalogService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CatalogService{
		catalog:  catalog,
		interval: interval,
		name:     "catalog-refresh",
	}
}

// Serve implements suture.Service.
func (s *CatalogService) Serve(ctx context.Context) error {
	logger := logging.WithComponent("catalog")
	logger.Info().Dur("interval", s.interval).Msg("Catalog refresh started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.catalog.Reload(ctx); err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("Catalog reload failed, keeping previous snapshot")
			}
		}
	}
}

func (s *CatalogService) String() string {
	return s.name
}
