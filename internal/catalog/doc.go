// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package catalog holds the tracked (artist, title) catalog in memory.
//
// The store's tracked_tracks table is the source of truth. Service loads it
// into an immutable snapshot which first-play detection consults for every
// play; Reload swaps in a fresh snapshot. The server reloads on a schedule
// and right after an admin replaces the catalog.
//
// ParseFile and Normalize turn a tracked_artists.json document into the
// stored form.
package catalog
