// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package logging provides centralized zerolog-based structured logging.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("station", "comedygreats").Msg("Polling station")
//	logging.Error().Err(err).Msg("Operation failed")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
//
// # Context
//
// Poll runs and HTTP requests carry a correlation ID (and requests a request
// ID) in their context. logging.Ctx(ctx) returns a logger with both attached.
//
// # slog
//
// SlogHandler adapts zerolog to log/slog for the supervisor tree, which logs
// through sutureslog.
package logging
