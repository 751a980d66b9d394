// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/siriustracker/internal/api"
	"github.com/tomtom215/siriustracker/internal/audit"
	"github.com/tomtom215/siriustracker/internal/auth"
	"github.com/tomtom215/siriustracker/internal/cache"
	"github.com/tomtom215/siriustracker/internal/catalog"
	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/detection"
	"github.com/tomtom215/siriustracker/internal/ingest"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/notify"
	"github.com/tomtom215/siriustracker/internal/retry"
	"github.com/tomtom215/siriustracker/internal/supervisor"
	"github.com/tomtom215/siriustracker/internal/supervisor/services"
	"github.com/tomtom215/siriustracker/internal/sync"
	"github.com/tomtom215/siriustracker/internal/wal"
	"github.com/tomtom215/siriustracker/internal/xmplaylist"
)

const (
	seenCacheSize = 10000
	seenCacheTTL  = 6 * time.Hour
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("poller_enabled", cfg.Poller.Enabled).
		Bool("wal_enabled", cfg.WAL.Enabled).
		Bool("smtp_configured", cfg.SMTP.Configured()).
		Str("reference_timezone", cfg.Server.ReferenceTimezone).
		Msg("Starting Sirius Tracker with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, &cfg.Database, retry.FromConfig(cfg.Retry))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	cat := catalog.New(db)
	if err := cat.Reload(ctx); err != nil {
		// The refresh service retries; an empty catalog only delays detection.
		logging.Warn().Err(err).Msg("Initial catalog load failed")
	}

	notifier := notify.NewEmailNotifier(cfg.SMTP)
	if !notifier.Enabled() {
		logging.Warn().Msg("SMTP not configured, first plays will be recorded without email")
	}
	detector := detection.New(cat, db, notifier)

	journal, err := openJournal(cfg.WAL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open ingest journal")
	}
	var ingester *ingest.Service
	if journal != nil {
		defer func() {
			if err := journal.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing ingest journal")
			}
		}()
		ingester = ingest.NewService(db, detector, journal)
		if _, err := ingester.Recover(ctx); err != nil {
			logging.Warn().Err(err).Msg("Ingest journal recovery error")
		}
	} else {
		ingester = ingest.NewService(db, detector, nil)
	}

	verifier, err := auth.NewGoogleVerifier(&cfg.Security, nil)
	var tokenChecker api.TokenChecker
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		logging.Warn().Msg("GOOGLE_CLIENT_ID not set, dashboard sign-in is disabled")
	case err != nil:
		logging.Fatal().Err(err).Msg("Failed to initialize Google token verifier")
	default:
		tokenChecker = verifier
	}

	if cfg.Security.IngestToken == "" {
		logging.Warn().Msg("INGEST_TOKEN not set, /api/ingest and /api/admin are disabled")
	}

	auditLogger, err := openAudit(ctx, db, cfg.Audit)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize audit trail")
	}
	defer auditLogger.Close()

	var (
		syncManager *sync.Manager
		syncer      api.Syncer
	)
	if cfg.Poller.Enabled {
		fetcher := xmplaylist.NewCircuitBreakerClient(xmplaylist.NewClient(&cfg.Poller))
		syncManager = sync.NewManager(fetcher, db, ingester, &cfg.Poller)
		syncManager.SetSeenCache(cache.NewSeenSet(seenCacheSize, seenCacheTTL))
		syncer = syncManager
	} else {
		logging.Info().Msg("Poller disabled (POLL_ENABLED=false), plays arrive via /api/ingest only")
	}

	handler := api.NewHandler(api.Deps{
		Store:    db,
		Catalog:  cat,
		Syncer:   syncer,
		Ingester: ingester,
		Verifier: tokenChecker,
		Audit:    auditLogger,
		Config:   cfg,
	})
	defer handler.Close()

	if syncManager != nil {
		syncManager.SetOnSyncCompleted(func(summary sync.RunSummary) {
			if summary.Inserted > 0 || summary.FirstPlays > 0 {
				handler.InvalidateReports()
			}
		})
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	router := api.NewRouter(handler)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  15 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewCatalogService(cat, cfg.Catalog.RefreshInterval))
	if journal != nil {
		tree.AddDataService(services.NewJournalService(ingester, journal, time.Minute))
	}
	if auditLogger != nil {
		tree.AddDataService(auditLogger)
	}
	if syncManager != nil {
		tree.AddPollingService(services.NewSyncService(syncManager))
		logging.Info().Dur("interval", cfg.Poller.Interval).Msg("Playlist poller added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		stop()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Sirius Tracker stopped")
}

// openJournal returns nil when the journal is disabled.
func openJournal(cfg config.WALConfig) (*wal.Journal, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Ingest journal disabled (WAL_ENABLED=false)")
		return nil, nil
	}
	logging.Info().Str("path", cfg.Path).Bool("sync_writes", cfg.SyncWrites).Msg("Opening ingest journal")
	return wal.Open(wal.OptionsFromConfig(cfg))
}

// openAudit returns nil when AUDIT_ENABLED=false.
func openAudit(ctx context.Context, db *database.DB, cfg config.AuditConfig) (*audit.Logger, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Audit trail disabled (AUDIT_ENABLED=false)")
		return nil, nil
	}

	store := audit.NewDuckDBStore(db.Conn())
	if err := store.CreateTable(ctx); err != nil {
		return nil, err
	}
	logging.Info().Int("retention_days", cfg.RetentionDays).Msg("Audit trail enabled")
	return audit.NewLogger(store, cfg), nil
}
