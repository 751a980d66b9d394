// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package wal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/siriustracker/internal/logging"
)

// Replayer reprocesses a journaled entry.
type Replayer interface {
	Replay(ctx context.Context, entry *Entry) error
}

// ReplayerFunc adapts a function to Replayer.
type ReplayerFunc func(ctx context.Context, entry *Entry) error

// Replay implements Replayer.
func (f ReplayerFunc) Replay(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

// RecoveryResult contains the outcome of a recovery pass.
type RecoveryResult struct {
	TotalPending int
	Recovered    int
	Failed       int
	Dropped      int
	Duration     time.Duration
}

// RecoverPending replays every pending entry and confirms the ones that
// succeed. Entries past EntryTTL or MaxAttempts are dropped with a log
// line. Calling it repeatedly is safe as long as Replay is idempotent.
func (j *Journal) RecoverPending(ctx context.Context, replayer Replayer) (*RecoveryResult, error) {
	if replayer == nil {
		return nil, fmt.Errorf("replayer cannot be nil")
	}

	start := time.Now()
	result := &RecoveryResult{}

	entries, err := j.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("get pending entries: %w", err)
	}
	result.TotalPending = len(entries)
	if result.TotalPending == 0 {
		logging.Info().Msg("Ingest journal recovery: no pending entries")
		result.Duration = time.Since(start)
		return result, nil
	}

	logging.Info().Int("pending_entries", result.TotalPending).Msg("Ingest journal recovery found pending entries")

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		j.recoverEntry(ctx, entry, replayer, result)
	}

	result.Duration = time.Since(start)
	j.Stats()

	logging.Info().
		Int("recovered", result.Recovered).
		Int("failed", result.Failed).
		Int("dropped", result.Dropped).
		Dur("duration", result.Duration).
		Msg("Ingest journal recovery complete")
	return result, nil
}

func (j *Journal) recoverEntry(ctx context.Context, entry *Entry, replayer Replayer, result *RecoveryResult) {
	if time.Since(entry.CreatedAt) > j.opts.EntryTTL || entry.Attempts >= j.opts.MaxAttempts {
		logging.Warn().
			Str("entry_id", entry.ID).
			Int("attempts", entry.Attempts).
			Time("created_at", entry.CreatedAt).
			Str("last_error", entry.LastError).
			Msg("Ingest journal recovery: dropping entry")
		if err := j.delete(entry.ID); err != nil {
			logging.Error().Err(err).Str("entry_id", entry.ID).Msg("Ingest journal recovery: failed to drop entry")
		}
		result.Dropped++
		return
	}

	if err := replayer.Replay(ctx, entry); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("Ingest journal recovery: replay failed")
		if markErr := j.MarkAttempt(ctx, entry.ID, err.Error()); markErr != nil && !errors.Is(markErr, ErrEntryNotFound) {
			logging.Error().Err(markErr).Str("entry_id", entry.ID).Msg("Ingest journal recovery: failed to record attempt")
		}
		result.Failed++
		return
	}

	if err := j.Confirm(ctx, entry.ID); err != nil && !errors.Is(err, ErrEntryNotFound) {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("Ingest journal recovery: failed to confirm entry")
		result.Failed++
		return
	}
	result.Recovered++
}

func sortByCreated(entries []*Entry) {
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].CreatedAt.Before(entries[b].CreatedAt)
	})
}
