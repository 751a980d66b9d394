// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package wal

import "errors"

var (
	// ErrWALClosed is returned for operations on a closed journal.
	ErrWALClosed = errors.New("wal: closed")

	// ErrNilPayload is returned when Write is called with nil.
	ErrNilPayload = errors.New("wal: nil payload")

	// ErrEmptyEntryID is returned when an entry ID is required but empty.
	ErrEmptyEntryID = errors.New("wal: empty entry id")

	// ErrEntryNotFound is returned when the entry was already confirmed or removed.
	ErrEntryNotFound = errors.New("wal: entry not found")
)
