// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/logging"
)

const (
	defaultBufferSize = 256
	cleanupInterval   = 24 * time.Hour
	writeTimeout      = 5 * time.Second
)

// Logger buffers events and writes them to a Store on its own goroutine.
// A nil *Logger accepts and discards events.
type Logger struct {
	store     Store
	events    chan *Event
	retention time.Duration
	interval  time.Duration

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewLogger starts the async writer. Close flushes it.
func NewLogger(store Store, cfg config.AuditConfig) *Logger {
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}

	l := &Logger{
		store:     store,
		events:    make(chan *Event, size),
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  cleanupInterval,
		done:      make(chan struct{}),
		now:       time.Now,
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

// Log queues an event without blocking.
func (l *Logger) Log(event *Event) {
	if l == nil || event == nil {
		return
	}

	select {
	case <-l.done:
		return
	default:
	}

	select {
	case l.events <- event:
	default:
		logging.Warn().
			Str("type", string(event.Type)).
			Str("actor", event.Actor).
			Msg("Audit buffer full, dropping event")
	}
}

// Query reads events back from the store.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Close stops the writer after draining queued events.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.closeOnce.Do(func() {
		close(l.done)
		l.wg.Wait()
	})
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.done:
			for {
				select {
				case event := <-l.events:
					l.write(event)
				default:
					return
				}
			}
		case event := <-l.events:
			l.write(event)
		}
	}
}

func (l *Logger) write(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to save audit event")
	}
}

// Cleanup deletes events older than the retention window.
// A zero retention keeps everything.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	if l.retention <= 0 {
		return 0, nil
	}
	return l.store.Delete(ctx, l.now().Add(-l.retention))
}

// Serve implements suture.Service by running Cleanup at start and then daily.
func (l *Logger) Serve(ctx context.Context) error {
	logger := logging.WithComponent("audit")

	cleanup := func() {
		n, err := l.Cleanup(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Warn().Err(err).Msg("Audit retention cleanup failed")
		case n > 0:
			logger.Info().Int64("deleted", n).Msg("Expired audit events deleted")
		}
	}
	cleanup()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cleanup()
		}
	}
}

func (l *Logger) String() string {
	return "audit-retention"
}
