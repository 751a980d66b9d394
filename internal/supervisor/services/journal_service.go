// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package services

import (
	"context"
	"time"

	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/wal"
)

// PendingReplayer replays journaled ingest batches that were never confirmed.
type PendingReplayer interface {
	Recover(ctx context.Context) (*wal.RecoveryResult, error)
}

// JournalMaintainer is the maintenance surface of *wal.Journal.
type JournalMaintainer interface {
	RunGC() error
	Stats() wal.Stats
}

// JournalService retries ingest batches left pending after a failed store
// write and reclaims journal space. Startup recovery runs before the tree
// starts; this service handles entries that fail later.
type JournalService struct {
	replayer PendingReplayer
	journal  JournalMaintainer
	interval time.Duration
	name     string
}

// NewJournalService creates the maintenance loop. A non-positive interval means 1m.
func NewJournalService(replayer PendingReplayer, journal JournalMaintainer, interval time.Duration) *JournalService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JournalService{
		replayer: replayer,
		journal:  journal,
		interval: interval,
		name:     "ingest-journal",
	}
}

// Serve implements suture.Service.
func (s *JournalService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.maintain(ctx)
		}
	}
}

func (s *JournalService) maintain(ctx context.Context) {
	logger := logging.WithComponent("journal")

	if s.journal.Stats().PendingCount > 0 {
		result, err := s.replayer.Recover(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Pending batch replay failed")
		} else if result.Recovered > 0 || result.Failed > 0 || result.Dropped > 0 {
			logger.Info().
				Int("recovered", result.Recovered).
				Int("failed", result.Failed).
				Int("dropped", result.Dropped).
				Msg("Replayed pending ingest batches")
		}
	}

	if err := s.journal.RunGC(); err != nil {
		logger.Warn().Err(err).Msg("Journal GC failed")
	}
}

func (s *JournalService) String() string {
	return s.name
}
