// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package backup snapshots the DuckDB play store into self-describing
// tar.gz archives.
//
// Each archive holds the database file (and its DuckDB WAL, when one is
// present after the checkpoint) followed by backup-metadata.json, which
// records a SHA-256 checksum for every file. Validate re-reads an archive
// and compares those checksums; Restore extracts the database file to a
// path of the caller's choosing. Prune applies a keep-newest-N retention.
//
// Archives are named siriustracker-<UTC timestamp>-<short id>.tar.gz, so a
// plain directory listing sorts them chronologically.
//
// Restoring into the live database path must only happen while the server
// is stopped: DuckDB holds an exclusive lock on the file.
package backup
