// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package api

import (
	"context"
	"time"

	"github.com/tomtom215/siriustracker/internal/audit"
	"github.com/tomtom215/siriustracker/internal/auth"
	"github.com/tomtom215/siriustracker/internal/cache"
	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/ingest"
	"github.com/tomtom215/siriustracker/internal/models"
	syncpkg "github.com/tomtom215/siriustracker/internal/sync"
)

// Store is the slice of the database the handlers read and write.
type Store interface {
	Ping(ctx context.Context) error
	ArtistPlays(ctx context.Context, start, end time.Time) ([]models.ArtistPlays, error)
	ListFirstPlays(ctx context.Context) ([]models.FirstPlay, error)
	ListPlays(ctx context.Context, f database.PlayFilter) ([]models.Play, error)
	ReplaceCatalog(ctx context.Context, artists []models.TrackedArtist) error
	ReplaceStations(ctx context.Context, stations []string) error
	TrackedStations(ctx context.Context) ([]string, error)
}

// Catalog is the in-memory tracked-track snapshot.
type Catalog interface {
	Reload(ctx context.Context) error
	Artists() []models.TrackedArtist
	Pairs() int
	LastRefresh() time.Time
}

// Syncer runs poll passes on demand.
type Syncer interface {
	TriggerSync(ctx context.Context) (syncpkg.RunSummary, error)
	LastSyncTime() time.Time
}

// Ingester stores externally supplied batches.
type Ingester interface {
	Ingest(ctx context.Context, raws []models.RawPlay) (ingest.Summary, error)
}

// TokenChecker verifies a Google credential against the allow-list.
type TokenChecker interface {
	Check(ctx context.Context, credential string) (auth.Decision, error)
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_reports.go: artist plays, first plays, date ranges
//   - handlers_auth.go: Google token verification
//   - handlers_ingest.go: batch ingestion
//   - handlers_admin.go: catalog, stations, manual poll, play search
//   - handlers_health.go: liveness and readiness
type Handler struct {
	store    Store
	catalog  Catalog
	syncer   Syncer
	ingester Ingester
	verifier TokenChecker
	audit    *audit.Logger
	config   *config.Config
	location *time.Location
	reports  *cache.Cache[[]models.ArtistPlays]

	startTime time.Time
	now       func() time.Time
}

// Deps groups the handler's collaborators. Syncer and Verifier may be nil;
// the routes that need them then answer 503.
type Deps struct {
	Store    Store
	Catalog  Catalog
	Syncer   Syncer
	Ingester Ingester
	Verifier TokenChecker

	// Audit may be nil, which disables the trail and /api/admin/audit.
	Audit  *audit.Logger
	Config *config.Config
}

// NewHandler creates a new API handler. cfg.Server.ReferenceTimezone must
// already be validated; an unknown zone falls back to UTC.
func NewHandler(deps Deps) *Handler {
	loc, err := time.LoadLocation(deps.Config.Server.ReferenceTimezone)
	if err != nil {
		loc = time.UTC
	}

	return &Handler{
		store:     deps.Store,
		catalog:   deps.Catalog,
		syncer:    deps.Syncer,
		ingester:  deps.Ingester,
		verifier:  deps.Verifier,
		audit:     deps.Audit,
		config:    deps.Config,
		location:  loc,
		reports:   cache.New[[]models.ArtistPlays](deps.Config.Server.ReportCacheTTL),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// InvalidateReports drops cached report rows. Call it after plays or the
// catalog change outside a request, e.g. when a poll pass completes.
func (h *Handler) InvalidateReports() {
	h.reports.Clear()
}

// Close releases background resources held by the handler.
func (h *Handler) Close() {
	h.reports.Close()
}
