// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package detection

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
	"github.com/tomtom215/siriustracker/internal/models"
)

// Detector records the first observed play of each tracked (artist, title).
//
// Exactly-once is provided by the store's unique index on (artist, title),
// not by the HasFirstPlay pre-check. Two detectors racing on a new pair
// both reach InsertFirstPlay; one wins and the other sees
// database.ErrFirstPlayExists.
type Detector struct {
	catalog  Catalog
	store    FirstPlayStore
	notifier Notifier
	now      func() time.Time

	stats engineStats
}

type engineStats struct {
	playsProcessed atomic.Int64
	firstPlays     atomic.Int64
	errors         atomic.Int64
	lastRecorded   atomic.Int64
}

// Stats is a snapshot of the detector counters.
type Stats struct {
	PlaysProcessed int64     `json:"plays_processed"`
	FirstPlays     int64     `json:"first_plays"`
	Errors         int64     `json:"errors"`
	LastRecordedAt time.Time `json:"last_recorded_at,omitempty"`
}

// New creates a detector. A nil notifier disables notifications.
func New(catalog Catalog, store FirstPlayStore, notifier Notifier) *Detector {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Detector{
		catalog:  catalog,
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ProcessBatch evaluates plays in the order received. A failure on one play
// is logged and counted; it never stops the batch.
func (d *Detector) ProcessBatch(ctx context.Context, plays []models.Play) Result {
	var res Result

	for i := range plays {
		if ctx.Err() != nil {
			logging.Warn().Err(ctx.Err()).Int("remaining", len(plays)-i).Msg("First-play detection interrupted")
			break
		}
		res.Processed++
		d.processPlay(ctx, &plays[i], &res)
	}

	d.stats.playsProcessed.Add(int64(res.Processed))
	d.stats.errors.Add(int64(res.Errors))
	return res
}

func (d *Detector) processPlay(ctx context.Context, play *models.Play, res *Result) {
	artist := play.ArtistName()
	if artist == "" || play.Title == "" || play.Channel == "" {
		res.Incomplete++
		return
	}

	if !d.catalog.IsTracked(artist, play.Title) {
		res.Untracked++
		return
	}

	exists, err := d.store.HasFirstPlay(ctx, artist, play.Title)
	if err != nil {
		res.Errors++
		logging.Error().Err(err).Str("artist", artist).Str("title", play.Title).Str("play_id", play.ID).
			Msg("Failed to check existing first play")
		return
	}
	if exists {
		res.AlreadyRecorded++
		return
	}

	fp := models.FirstPlay{
		Artist:        artist,
		Title:         play.Title,
		FirstPlayDate: d.now(),
		Channel:       play.Channel,
		Timestamp:     play.Timestamp,
	}

	if err := d.store.InsertFirstPlay(ctx, &fp); err != nil {
		if errors.Is(err, database.ErrFirstPlayExists) {
			res.AlreadyRecorded++
			logging.Debug().Str("artist", artist).Str("title", play.Title).Msg("First play already recorded by a concurrent writer")
			return
		}
		res.Errors++
		logging.Error().Err(err).Str("artist", artist).Str("title", play.Title).Str("play_id", play.ID).
			Msg("Failed to record first play")
		return
	}

	res.Recorded++
	res.FirstPlays = append(res.FirstPlays, fp)
	d.stats.firstPlays.Add(1)
	d.stats.lastRecorded.Store(fp.FirstPlayDate.UnixNano())
	metrics.RecordFirstPlay()

	logging.Info().
		Str("artist", artist).
		Str("title", play.Title).
		Str("channel", play.Channel).
		Time("timestamp", play.Timestamp).
		Msg("New first play recorded")

	d.notifier.Notify(ctx, fp)
}

// Stats returns a snapshot of the detector counters.
func (d *Detector) Stats() Stats {
	s := Stats{
		PlaysProcessed: d.stats.playsProcessed.Load(),
		FirstPlays:     d.stats.firstPlays.Load(),
		Errors:         d.stats.errors.Load(),
	}
	if ns := d.stats.lastRecorded.Load(); ns != 0 {
		s.LastRecordedAt = time.Unix(0, ns).UTC()
	}
	return s
}
