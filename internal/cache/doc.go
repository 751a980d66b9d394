// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package cache holds the two in-memory caches the tracker uses.

Cache is a TTL cache for rendered report rows. The API keys it by the
resolved date range and clears it whenever plays or the catalog change,
so the TTL only bounds staleness from writes made outside the process.

SeenSet is a bounded LRU of play IDs. The poller fetches the same recent
window on every pass; IDs it has already ingested in this process are
filtered out before they reach the database. The set is an optimization
only: the store's unique key is still what guarantees idempotency.
*/
package cache
