// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package detection records the first play of each tracked song.
//
// For every play in a batch the Detector checks, in order: the play has an
// artist, title and channel; the pair is in the catalog; no FirstPlay exists
// yet. It then inserts one, relying on the store's unique (artist, title)
// index to settle races, and hands the new fact to the Notifier.
//
// Replaying any batch is safe. Plays for an already-recorded pair are
// counted as AlreadyRecorded and produce no notification.
package detection
