// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package xmplaylist

// StationResponse is the body of GET {base}{station}.
type StationResponse struct {
	Channel Channel `json:"channel"`
	Results []Item  `json:"results"`
}

// Channel describes the station.
type Channel struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number,omitempty"`
}

// Item is one recently played entry.
type Item struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Track     Track  `json:"track"`
}

// Track holds the played track's metadata.
type Track struct {
	ID      string   `json:"id,omitempty"`
	Title   string   `json:"title"`
	Artists []string `json:"artists"`
}
