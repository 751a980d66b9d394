// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package models

import "time"

// TrackedArtist is one catalog entry: an artist and the ordered titles
// tracked for them.
type TrackedArtist struct {
	Artist string   `json:"artist" validate:"required,max=512"`
	Tracks []string `json:"tracks" validate:"dive,required,max=1024"`
}

// FirstPlay records the first observed airing of a tracked (artist, title).
// FirstPlayDate is when the fact was recorded; Channel and Timestamp come
// from the play that triggered it.
type FirstPlay struct {
	Artist        string    `json:"artist"`
	Title         string    `json:"title"`
	FirstPlayDate time.Time `json:"first_play_date"`
	Channel       string    `json:"channel"`
	Timestamp     time.Time `json:"timestamp"`
}

// TrackRef is one play of a title on a channel in a report row.
type TrackRef struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
}

// ArtistPlays is one reporting row: one TrackRef per play of an artist
// artist was heard on in the window and the total number of plays.
type ArtistPlays struct {
	Artist string     `json:"artist"`
	Tracks []TrackRef `json:"tracks"`
	Count  int        `json:"count"`
}
