// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package reportimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
	"github.com/tomtom215/siriustracker/internal/models"
)

// Store is the subset of the play store an import needs.
type Store interface {
	PlayExistsAt(ctx context.Context, artist string, ts time.Time) (bool, error)
	UpsertPlay(ctx context.Context, play *models.Play) (bool, error)
}

// Options configures an import.
type Options struct {
	// Location interprets datetimes without an offset. Default: America/New_York.
	Location *time.Location

	// BatchSize is how many rows are read between progress lines. Default: 500.
	BatchSize int

	// DryRun counts what would be imported without writing.
	DryRun bool
}

// Importer loads report rows into the play store.
type Importer struct {
	store  Store
	mapper *Mapper
	opts   Options
}

// NewImporter creates an importer.
func NewImporter(store Store, opts Options) (*Importer, error) {
	if opts.Location == nil {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			return nil, fmt.Errorf("load default report timezone: %w", err)
		}
		opts.Location = loc
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	return &Importer{store: store, mapper: NewMapper(opts.Location), opts: opts}, nil
}

// Import reads the whole report. Invalid rows and rows whose (artist,
// second) already exists are skipped; store errors are counted and the
// import continues. A CSV syntax error or a canceled context stops it.
func (i *Importer) Import(ctx context.Context, r io.Reader) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), DryRun: i.opts.DryRun}
	defer func() { stats.EndTime = time.Now() }()

	reader, err := NewReader(r)
	if err != nil {
		return stats, err
	}

	logger := logging.WithComponent("import")
	logger.Info().
		Str("timezone", i.opts.Location.String()).
		Bool("dry_run", i.opts.DryRun).
		Msg("Starting report import")

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		batch, readErr := reader.ReadBatch(i.opts.BatchSize)
		if errors.Is(readErr, io.EOF) {
			break
		}
		i.processBatch(ctx, batch, stats)
		if readErr != nil {
			return stats, readErr
		}

		logger.Info().
			Int("rows", stats.Rows).
			Int("imported", stats.Imported).
			Int("existing", stats.Existing).
			Int("invalid", stats.Invalid).
			Msg("Import progress")
	}

	if !i.opts.DryRun {
		metrics.RecordIngest(stats.Imported, stats.Existing, stats.Errors)
	}

	logger.Info().
		Int("rows", stats.Rows).
		Int("imported", stats.Imported).
		Int("existing", stats.Existing).
		Int("invalid", stats.Invalid).
		Int("errors", stats.Errors).
		Dur("duration", stats.Duration()).
		Float64("rows_per_second", stats.RowsPerSecond()).
		Msg("Report import completed")

	return stats, nil
}

func (i *Importer) processBatch(ctx context.Context, batch []Record, stats *Stats) {
	for _, rec := range batch {
		stats.Rows++

		play, err := i.mapper.ToPlay(rec)
		if err != nil {
			logging.Warn().Err(err).Msg("Skipping report row")
			stats.Invalid++
			continue
		}

		exists, err := i.store.PlayExistsAt(ctx, play.ArtistName(), play.Timestamp)
		if err != nil {
			logging.Error().Err(err).Int("line", rec.Line).Msg("Failed to check for existing play")
			stats.Errors++
			continue
		}
		if exists {
			stats.Existing++
			continue
		}

		if i.opts.DryRun {
			stats.Imported++
			continue
		}
		if _, err := i.store.UpsertPlay(ctx, &play); err != nil {
			logging.Error().Err(err).Int("line", rec.Line).Msg("Failed to store play")
			stats.Errors++
			continue
		}
		stats.Imported++
	}
}
