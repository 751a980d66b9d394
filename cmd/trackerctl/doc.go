// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Command trackerctl runs one-off maintenance tasks against the play store.

It reads the same configuration as the server (defaults, .env,
config.yaml, environment). DuckDB allows a single writer process, so run
trackerctl while the server is stopped or point DUCKDB_PATH at a copy.

	trackerctl catalog import tracked_artists.json
	trackerctl catalog list
	trackerctl stations set siriusxmcomedy laughusa rawdog
	trackerctl stations list
	trackerctl poll [--no-notify]
	trackerctl first-plays backfill [--dry-run]
	trackerctl first-plays list
	trackerctl plays list [--artist A] [--title T] [--channel C] [--start S] [--end E] [--limit N]
	trackerctl import-report [--timezone America/New_York] [--dry-run] report.csv
	trackerctl backup create [--notes TEXT]
	trackerctl backup list
	trackerctl backup validate ID
	trackerctl backup restore ID --to PATH [--force]
	trackerctl backup prune

Results are printed as indented JSON on stdout; progress is logged on
stderr.
*/
package main
