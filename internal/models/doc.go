// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package models defines the data structures shared by the poller, the store,
the detector and the reporting API.

Key Components:

  - Play: one observed airing, deduplicated by its provider ID
  - RawPlay: the ingest wire form, converted with RawPlay.Normalize
  - TrackedArtist: a catalog entry (artist plus ordered titles)
  - FirstPlay: the first airing of a tracked (artist, title), recorded once
  - ArtistPlays / TrackRef: reporting rows

Timestamps:

All Play and FirstPlay instants are UTC. ParsePlayTimestamp accepts RFC 3339
and naive "YYYY-MM-DDTHH:MM:SS" values (read as UTC) and truncates to
microseconds, matching DuckDB's TIMESTAMP precision.

Titles:

NormalizeTitle is the single title-casing rule. It is applied on ingest and
on catalog import so the detector can compare titles exactly.
*/
package models
