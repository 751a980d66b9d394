// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
	"github.com/tomtom215/siriustracker/internal/models"
	"github.com/tomtom215/siriustracker/internal/xmplaylist"
)

// RunSummary totals one pass over all stations.
type RunSummary struct {
	Stations   int           `json:"stations"`
	Failed     int           `json:"failed"`
	Received   int           `json:"received"`
	Skipped    int           `json:"skipped"`
	Recent     int           `json:"recent"`
	Inserted   int           `json:"inserted"`
	Duplicates int           `json:"duplicates"`
	FirstPlays int           `json:"first_plays"`
	Duration   time.Duration `json:"duration"`
}

// stationResult is the outcome for a single station.
type stationResult struct {
	channel    string
	received   int
	skipped    int
	recent     int
	inserted   int
	duplicates int
	firstPlays int
	span       time.Duration
}

// runPass visits every station in order. Caller holds syncMu.
func (m *Manager) runPass(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	ctx = logging.ContextWithNewCorrelationID(ctx)

	stations := m.resolveStations(ctx)
	summary := RunSummary{}

	if len(stations) == 0 {
		logging.Ctx(ctx).Warn().Msg("No stations configured, nothing to poll")
	}

	for _, station := range stations {
		if err := m.limiter.Wait(ctx); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}

		summary.Stations++
		stationCtx := logging.ContextWithStation(ctx, station)
		res, err := m.pollStation(stationCtx, station)
		if err != nil {
			summary.Failed++
			metrics.RecordStationError(station)
			logStationError(stationCtx, err)
			if ctx.Err() != nil {
				summary.Duration = time.Since(start)
				return summary, ctx.Err()
			}
			continue
		}

		summary.Received += res.received
		summary.Skipped += res.skipped
		summary.Recent += res.recent
		summary.Inserted += res.inserted
		summary.Duplicates += res.duplicates
		summary.FirstPlays += res.firstPlays
	}

	summary.Duration = time.Since(start)
	metrics.RecordPollRun(summary.Duration)

	m.mu.Lock()
	m.lastSync = time.Now()
	m.lastSummary = summary
	callback := m.onSyncCompleted
	m.mu.Unlock()

	logging.Ctx(ctx).Info().
		Int("stations", summary.Stations).
		Int("failed", summary.Failed).
		Int("received", summary.Received).
		Int("inserted", summary.Inserted).
		Int("duplicates", summary.Duplicates).
		Int("first_plays", summary.FirstPlays).
		Dur("duration", summary.Duration).
		Msg("Poll pass complete")

	if callback != nil {
		callback(summary)
	}
	return summary, nil
}

// resolveStations prefers the stored station list and falls back to config.
func (m *Manager) resolveStations(ctx context.Context) []string {
	if m.stations != nil {
		stations, err := m.stations.TrackedStations(ctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to load tracked stations, using configured list")
		} else if len(stations) > 0 {
			return stations
		}
	}
	return m.cfg.Stations
}

func (m *Manager) pollStation(ctx context.Context, station string) (stationResult, error) {
	resp, err := m.fetcher.FetchStation(ctx, station)
	if err != nil {
		return stationResult{}, err
	}

	raws, skipped := toRawPlays(ctx, station, resp)
	res := stationResult{
		channel:  resp.Channel.Name,
		received: len(resp.Results),
		skipped:  skipped,
		span:     timeSpan(resp.Results),
	}

	logging.Ctx(ctx).Info().Str("channel", res.channel).Int("received", res.received).Msg("Tracks received")

	raws, res.recent = m.dropRecent(raws)

	summary, err := m.ingester.Ingest(ctx, raws)
	if err != nil {
		return res, fmt.Errorf("ingest station %s: %w", station, err)
	}
	if m.seen != nil && summary.Failed() == 0 {
		ids := make([]string, len(raws))
		for i := range raws {
			ids[i] = raws[i].ID
		}
		m.seen.Add(ids...)
	}
	res.inserted = summary.Inserted
	res.duplicates = summary.Duplicates
	res.firstPlays = summary.Detection.Recorded

	logging.Ctx(ctx).Info().
		Str("channel", res.channel).
		Int("added", res.inserted).
		Int("duplicates", res.duplicates).
		Int("recent", res.recent).
		Int("skipped", res.skipped+summary.Invalid).
		Str("time_span", formatSpan(res.span)).
		Msg("Tracks added")

	return res, nil
}

// dropRecent removes plays this process already ingested successfully.
func (m *Manager) dropRecent(raws []models.RawPlay) ([]models.RawPlay, int) {
	if m.seen == nil {
		return raws, 0
	}
	kept := raws[:0]
	for _, raw := range raws {
		if !m.seen.Contains(raw.ID) {
			kept = append(kept, raw)
		}
	}
	return kept, len(raws) - len(kept)
}

func logStationError(ctx context.Context, err error) {
	if xmplaylist.IsOpen(err) {
		logging.Ctx(ctx).Warn().Err(err).Msg("Playlist circuit open, skipping station")
		return
	}
	logging.Ctx(ctx).Error().Err(err).Msg("Failed to poll station")
}
