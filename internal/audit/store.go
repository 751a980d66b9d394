// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package audit

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps the most recent events in memory. It backs the logger
// in tests and when no database is available.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
	max    int
}

// NewMemoryStore creates a store that keeps at most maxEvents (default 1000).
func NewMemoryStore(maxEvents int) *MemoryStore {
	if maxEvents <= 0 {
		maxEvents = 1000
	}
	return &MemoryStore{max: maxEvents}
}

// Save appends the event, evicting the oldest one when full.
func (s *MemoryStore) Save(_ context.Context, event *Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) >= s.max {
		s.events = s.events[1:]
	}
	s.events = append(s.events, *event)
	return nil
}

// Query filters in memory and returns newest first.
func (s *MemoryStore) Query(_ context.Context, f QueryFilter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if !matches(e, f) {
			continue
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b Event) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit := f.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete drops events older than the cutoff.
func (s *MemoryStore) Delete(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	for _, e := range s.events {
		if !e.Timestamp.Before(olderThan) {
			kept = append(kept, e)
		}
	}
	removed := int64(len(s.events) - len(kept))
	s.events = kept
	return removed, nil
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func matches(e Event, f QueryFilter) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, e.Type) {
		return false
	}
	if len(f.Outcomes) > 0 && !slices.Contains(f.Outcomes, e.Outcome) {
		return false
	}
	if f.Actor != "" && !strings.EqualFold(f.Actor, e.Actor) {
		return false
	}
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.Timestamp.After(*f.Until) {
		return false
	}
	return true
}
