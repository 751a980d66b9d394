// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/siriustracker/internal/detection"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
	"github.com/tomtom215/siriustracker/internal/models"
	"github.com/tomtom215/siriustracker/internal/validation"
	"github.com/tomtom215/siriustracker/internal/wal"
)

// PlayStore persists plays idempotently.
type PlayStore interface {
	UpsertPlay(ctx context.Context, play *models.Play) (bool, error)
}

// BatchDetector runs first-play detection over stored plays.
type BatchDetector interface {
	ProcessBatch(ctx context.Context, plays []models.Play) detection.Result
}

// Journal is the optional write-ahead log around each batch.
type Journal interface {
	Write(ctx context.Context, payload interface{}) (string, error)
	Confirm(ctx context.Context, entryID string) error
	RecoverPending(ctx context.Context, replayer wal.Replayer) (*wal.RecoveryResult, error)
}

// Summary reports what one Ingest call did.
type Summary struct {
	Received   int              `json:"received"`
	Inserted   int              `json:"inserted"`
	Duplicates int              `json:"duplicates"`
	Invalid    int              `json:"invalid"`
	Errors     int              `json:"errors"`
	Detection  detection.Result `json:"detection"`
}

// Failed counts plays that hit a store error, either storing the play or
// recording its first play. A batch with failures must be retried.
func (s Summary) Failed() int {
	return s.Errors + s.Detection.Errors
}

// journalBatch is the journaled form of one Ingest call.
type journalBatch struct {
	Plays []models.RawPlay `json:"plays"`
}

// Service is the single entry point that turns raw plays into stored plays
// and first-play facts.
type Service struct {
	store    PlayStore
	detector BatchDetector
	journal  Journal
}

// NewService creates the ingest service. journal may be nil.
func NewService(store PlayStore, detector BatchDetector, journal Journal) *Service {
	return &Service{store: store, detector: detector, journal: journal}
}

// Ingest validates, normalizes and stores raws, then runs detection over
// every stored play in the batch, including ones that were already present.
// Running detection on duplicates lets a replayed batch finish work that an
// interrupted run left undone.
//
// A bad record never fails the batch; the returned error is reserved for
// journal failures and context cancellation.
func (s *Service) Ingest(ctx context.Context, raws []models.RawPlay) (Summary, error) {
	if len(raws) == 0 {
		return Summary{}, nil
	}

	if s.journal == nil {
		return s.process(ctx, raws)
	}

	entryID, err := s.journal.Write(ctx, journalBatch{Plays: raws})
	if err != nil {
		return Summary{}, fmt.Errorf("journal batch: %w", err)
	}

	summary, err := s.process(ctx, raws)
	if err != nil {
		// Leave the entry pending; Recover replays it.
		return summary, err
	}
	if n := summary.Failed(); n > 0 {
		logging.Warn().Str("entry_id", entryID).Int("failed", n).Msg("Batch had store failures, leaving journal entry pending")
		return summary, nil
	}

	if err := s.journal.Confirm(ctx, entryID); err != nil && !errors.Is(err, wal.ErrEntryNotFound) {
		logging.Warn().Err(err).Str("entry_id", entryID).Msg("Failed to confirm journaled batch")
	}
	return summary, nil
}

func (s *Service) process(ctx context.Context, raws []models.RawPlay) (Summary, error) {
	start := time.Now()
	summary := Summary{Received: len(raws)}
	stored := make([]models.Play, 0, len(raws))

	for i := range raws {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		play, ok := normalize(&raws[i])
		if !ok {
			summary.Invalid++
			continue
		}

		inserted, err := s.store.UpsertPlay(ctx, &play)
		if err != nil {
			summary.Errors++
			logging.Error().Err(err).Str("play_id", play.ID).Str("channel", play.Channel).Msg("Failed to store play")
			continue
		}
		if inserted {
			summary.Inserted++
		} else {
			summary.Duplicates++
		}
		stored = append(stored, play)
	}

	metrics.RecordIngest(summary.Inserted, summary.Duplicates, summary.Errors)

	if len(stored) > 0 {
		summary.Detection = s.detector.ProcessBatch(ctx, stored)
	}

	logging.Debug().
		Int("received", summary.Received).
		Int("inserted", summary.Inserted).
		Int("duplicates", summary.Duplicates).
		Int("invalid", summary.Invalid).
		Int("errors", summary.Errors).
		Int("first_plays", summary.Detection.Recorded).
		Dur("duration", time.Since(start)).
		Msg("Ingested batch")

	return summary, ctx.Err()
}

// normalize validates a raw record and converts it to a Play. Failures are
// logged at Warn and counted in plays_skipped_total.
func normalize(raw *models.RawPlay) (models.Play, bool) {
	if verr := validation.ValidateStruct(raw); verr != nil {
		logging.Warn().Str("play_id", raw.ID).Str("channel", raw.Channel).Str("reason", verr.Error()).Msg("Skipping invalid play")
		metrics.RecordSkippedPlay("invalid")
		return models.Play{}, false
	}

	play, err := raw.Normalize()
	if err != nil {
		logging.Warn().Err(err).Str("play_id", raw.ID).Str("channel", raw.Channel).Msg("Skipping invalid play")
		metrics.RecordSkippedPlay("invalid")
		return models.Play{}, false
	}
	return play, true
}

// Recover replays journaled batches left pending by an earlier run. It is a
// no-op without a journal.
func (s *Service) Recover(ctx context.Context) (*wal.RecoveryResult, error) {
	if s.journal == nil {
		return &wal.RecoveryResult{}, nil
	}

	return s.journal.RecoverPending(ctx, wal.ReplayerFunc(func(ctx context.Context, entry *wal.Entry) error {
		var batch journalBatch
		if err := entry.UnmarshalPayload(&batch); err != nil {
			return fmt.Errorf("decode journaled batch: %w", err)
		}
		summary, err := s.process(ctx, batch.Plays)
		if err != nil {
			return err
		}
		if summary.Failed() > 0 {
			return fmt.Errorf("%d plays failed to store, %d first-play checks failed",
				summary.Errors, summary.Detection.Errors)
		}
		return nil
	}))
}
