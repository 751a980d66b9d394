// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package supervisor runs the tracker's long-lived services under suture v4.

# Tree

	RootSupervisor ("siriustracker")
	├── DataSupervisor ("data-layer")
	│   ├── CatalogService   (periodic catalog reload)
	│   └── JournalService   (if WAL_ENABLED)
	├── PollingSupervisor ("polling-layer")
	│   └── SyncService      (if POLL_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a poller stuck in restart
backoff leaves the reporting API and ingest endpoint serving.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddDataService(services.NewCatalogService(cat, cfg.Catalog.RefreshInterval))
	tree.AddPollingService(services.NewSyncService(syncManager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

# Restart policy

TreeConfig carries suture's failure parameters. Each crash adds one to a
counter that decays over FailureDecay seconds; past FailureThreshold the
supervisor waits FailureBackoff before the next restart. Zero values fall
back to DefaultTreeConfig.

A service that returns nil is not restarted. Services return ctx.Err()
on shutdown.

DuckDB and the Google key set are not supervised: the database is an
embedded library opened once at startup, and the key set refreshes lazily
inside the verifier.
*/
package supervisor
