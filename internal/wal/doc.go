// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package wal implements the optional ingest journal on BadgerDB.
//
// Lifecycle of an entry:
//
//  1. Write stores the payload under "pending:{uuid}"
//  2. the caller processes it
//  3. Confirm deletes the key
//
// Entries left pending by a crash are replayed at startup with
// RecoverPending. An entry that keeps failing is dropped after
// Options.MaxAttempts replays or once it is older than Options.EntryTTL.
//
// The journal does not make processing exactly-once. It relies on the
// processing being idempotent, which the play store and first-play
// detector guarantee.
package wal
