// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package services adapts long-running tracker components to suture's
Serve(ctx) error contract.

	HTTPServerService      *http.Server, ListenAndServe plus graceful Shutdown
	SyncService            sync.Manager, Start/Stop
	CatalogService         periodic catalog reload from the store
	JournalService         periodic replay of pending ingest batches and value log GC

Every wrapper blocks until its context is canceled, then stops the
component and returns ctx.Err(). A non-nil error from Start is returned
as-is so the supervisor applies its restart backoff.
*/
package services
