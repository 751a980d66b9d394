// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package database

import "errors"

var (
	// ErrFirstPlayExists is returned by InsertFirstPlay when the (artist, title)
	// already has a first play. Concurrent detectors expect it.
	ErrFirstPlayExists = errors.New("first play already recorded")

	// ErrPlayNotFound is returned by GetPlay for an unknown ID.
	ErrPlayNotFound = errors.New("play not found")
)
