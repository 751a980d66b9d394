// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package testinfra provides in-process fakes for tests that cross package
// boundaries.
//
//   - NewTestDB: in-memory DuckDB with the production schema
//   - MockPlaylistServer: httptest server speaking the xmplaylist station API
//   - MockSMTPServer: plaintext SMTP listener that captures messages
//
// Example:
//
//	func TestPoll(t *testing.T) {
//	    db := testinfra.NewTestDB(t)
//	    playlist := testinfra.NewMockPlaylistServer(t)
//	    playlist.SetStation("comedygreats", "Comedy Greats", testinfra.PlaylistItem{
//	        ID: "x1", Timestamp: "2024-01-01T00:00:00Z", Title: "bit", Artists: []string{"Jane Doe"},
//	    })
//	    client := xmplaylist.NewClient(&config.PollerConfig{BaseURL: playlist.BaseURL()})
//	    ...
//	}
//
// Nothing here needs Docker; DuckDB and badger both run in-process.
package testinfra
