// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package detection

import (
	"context"

	"github.com/tomtom215/siriustracker/internal/models"
)

// Catalog answers whether an (artist, title) pair is tracked.
type Catalog interface {
	IsTracked(artist, title string) bool
}

// FirstPlayStore persists first-play facts. InsertFirstPlay must return
// database.ErrFirstPlayExists when the pair is already recorded.
type FirstPlayStore interface {
	HasFirstPlay(ctx context.Context, artist, title string) (bool, error)
	InsertFirstPlay(ctx context.Context, fp *models.FirstPlay) error
}

// Notifier is told about every newly recorded first play.
// Implementations handle their own failures and never block detection on them.
type Notifier interface {
	Notify(ctx context.Context, fp models.FirstPlay)
}

// Result counts what ProcessBatch did with each play.
type Result struct {
	Processed       int `json:"processed"`
	Incomplete      int `json:"incomplete"`
	Untracked       int `json:"untracked"`
	AlreadyRecorded int `json:"already_recorded"`
	Recorded        int `json:"recorded"`
	Errors          int `json:"errors"`

	// FirstPlays holds the facts recorded by this call, in order.
	FirstPlays []models.FirstPlay `json:"first_plays,omitempty"`
}

// Add merges another result into r.
func (r *Result) Add(other Result) {
	r.Processed += other.Processed
	r.Incomplete += other.Incomplete
	r.Untracked += other.Untracked
	r.AlreadyRecorded += other.AlreadyRecorded
	r.Recorded += other.Recorded
	r.Errors += other.Errors
	r.FirstPlays = append(r.FirstPlays, other.FirstPlays...)
}

// noopNotifier is used when no notifier is configured.
type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, models.FirstPlay) {}
