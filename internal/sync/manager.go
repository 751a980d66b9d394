// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
manager.go - Sync Manager Lifecycle

Manager Components:
  - Fetcher: playlist client, normally xmplaylist.CircuitBreakerClient
  - StationSource: tracked_stations table, with config fallback
  - Ingester: ingest.Service

Lifecycle Methods:
  - NewManager(): wire dependencies
  - Start(): poll immediately, then every poller.interval
  - Stop(): stop the loop and wait for an in-flight pass
  - TriggerSync(): manual pass, rejected while another pass runs
  - PollOnce(): blocking pass used by the CLI
  - LastSyncTime(): completion time of the last pass

Thread Safety:
  - syncMu: one pass at a time
  - mu: protects running, lastSync, lastSummary
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/siriustracker/internal/cache"
	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/ingest"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/models"
	"github.com/tomtom215/siriustracker/internal/xmplaylist"
)

// ErrSyncInProgress is returned by TriggerSync while a pass is running.
var ErrSyncInProgress = errors.New("sync already in progress")

// StationSource lists the stations to poll.
type StationSource interface {
	TrackedStations(ctx context.Context) ([]string, error)
}

// Ingester stores a station's batch.
type Ingester interface {
	Ingest(ctx context.Context, raws []models.RawPlay) (ingest.Summary, error)
}

// Manager polls every tracked station and feeds the results to ingestion.
type Manager struct {
	fetcher  xmplaylist.Fetcher
	stations StationSource
	ingester Ingester
	cfg      *config.PollerConfig
	limiter  *rate.Limiter

	lastSync    time.Time
	lastSummary RunSummary
	running     bool
	mu          sync.RWMutex
	syncMu      sync.Mutex
	stopChan    chan struct{}
	wg          sync.WaitGroup

	onSyncCompleted func(RunSummary)

	// seen filters plays ingested by an earlier pass; nil disables it.
	seen *cache.SeenSet
}

// NewManager creates a sync manager. stations may be nil, in which case
// only poller.stations from config is used.
func NewManager(fetcher xmplaylist.Fetcher, stations StationSource, ingester Ingester, cfg *config.PollerConfig) *Manager {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	logging.Info().
		Dur("interval", cfg.Interval).
		Float64("requests_per_second", rps).
		Strs("fallback_stations", cfg.Stations).
		Msg("Sync manager config loaded")

	return &Manager{
		fetcher:  fetcher,
		stations: stations,
		ingester: ingester,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SetSeenCache enables skipping play IDs that an earlier pass already
// ingested without errors. Call it before Start.
func (m *Manager) SetSeenCache(seen *cache.SeenSet) {
	m.seen = seen
}

// SetOnSyncCompleted sets a callback invoked after every completed pass.
func (m *Manager) SetOnSyncCompleted(callback func(RunSummary)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSyncCompleted = callback
}

// Start begins periodic polling. The first pass runs immediately in the
// background so server startup is not blocked.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.running = true
	m.stopChan = make(chan struct{})
	m.mu.Unlock()

	logging.Info().Msg("Starting sync manager...")

	m.wg.Add(1)
	go m.syncLoop(ctx)
	return nil
}

// Stop stops polling and waits for an in-flight pass to finish.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")
	return nil
}

// LastSyncTime returns when the last pass completed.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// LastSummary returns the totals of the last completed pass.
func (m *Manager) LastSummary() RunSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSummary
}

// TriggerSync runs one pass now. It returns ErrSyncInProgress instead of
// queueing behind a pass that is already running.
func (m *Manager) TriggerSync(ctx context.Context) (RunSummary, error) {
	if !m.syncMu.TryLock() {
		return RunSummary{}, ErrSyncInProgress
	}
	defer m.syncMu.Unlock()
	return m.runPass(ctx)
}

// PollOnce runs one pass, waiting for any running pass to finish first.
func (m *Manager) PollOnce(ctx context.Context) (RunSummary, error) {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()
	return m.runPass(ctx)
}

func (m *Manager) syncLoop(ctx context.Context) {
	defer m.wg.Done()

	m.mu.RLock()
	stop := m.stopChan
	m.mu.RUnlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	m.tick(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick runs a scheduled pass unless a manual one is already running.
func (m *Manager) tick(ctx context.Context) {
	if !m.syncMu.TryLock() {
		logging.Debug().Msg("Skipping scheduled poll, a pass is already running")
		return
	}
	defer m.syncMu.Unlock()

	if _, err := m.runPass(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Poll pass failed")
	}
}
