// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package notify delivers first-play alerts by email.
//
// EmailNotifier satisfies detection.Notifier. It is synchronous, never
// returns an error and does not retry; email delivery is at-least-once at
// best and a lost alert does not affect stored data.
package notify
