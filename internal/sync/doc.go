// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package sync polls the playlist provider and feeds plays to ingestion.
//
// A pass visits stations sequentially, paced by a token-bucket limiter
// (golang.org/x/time/rate). A station that fails is logged and skipped;
// the next scheduled pass is its retry. Items missing an id, timestamp or
// title are skipped individually.
//
// Only one pass runs at a time. Scheduled ticks and TriggerSync both use
// TryLock and give up rather than queue behind a running pass; PollOnce
// waits.
package sync
