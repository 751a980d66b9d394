// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
	"github.com/tomtom215/siriustracker/internal/models"
)

// Source loads the tracked catalog. *database.DB satisfies it.
type Source interface {
	TrackedArtists(ctx context.Context) ([]models.TrackedArtist, error)
}

type pair struct {
	artist string
	title  string
}

// snapshot is immutable once published.
type snapshot struct {
	artists []models.TrackedArtist
	pairs   map[pair]struct{}
	loaded  time.Time
}

// Service is an in-memory, reloadable view of the tracked catalog.
// Lookups read the current snapshot under a read lock; Reload builds a new
// snapshot and swaps it in. A failed reload keeps the previous snapshot.
type Service struct {
	source Source

	mu   sync.RWMutex
	snap *snapshot
}

// New creates an empty catalog backed by source. Call Reload to load it.
func New(source Source) *Service {
	return &Service{
		source: source,
		snap:   &snapshot{pairs: map[pair]struct{}{}},
	}
}

// NewStatic creates a catalog preloaded with artists and no source.
// Reload on a static catalog is a no-op.
func NewStatic(artists []models.TrackedArtist) *Service {
	s := &Service{}
	s.swap(artists, time.Now())
	return s
}

// Reload replaces the snapshot with the source's current catalog.
func (s *Service) Reload(ctx context.Context) error {
	if s.source == nil {
		return nil
	}

	artists, err := s.source.TrackedArtists(ctx)
	if err != nil {
		logging.Warn().Err(err).Int("pairs", s.Pairs()).Msg("Catalog reload failed, keeping previous snapshot")
		return fmt.Errorf("failed to load tracked catalog: %w", err)
	}

	now := time.Now()
	n := s.swap(artists, now)
	metrics.RecordCatalogRefresh(n, now)

	logging.Info().
		Int("artists", len(artists)).
		Int("pairs", n).
		Msg("Catalog reloaded")
	return nil
}

func (s *Service) swap(artists []models.TrackedArtist, at time.Time) int {
	next := &snapshot{
		artists: cloneArtists(artists),
		pairs:   make(map[pair]struct{}),
		loaded:  at,
	}
	for _, a := range artists {
		for _, t := range a.Tracks {
			next.pairs[pair{artist: a.Artist, title: t}] = struct{}{}
		}
	}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
	return len(next.pairs)
}

func (s *Service) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// IsTracked reports whether (artist, title) is in the catalog. The match is
// exact and case-sensitive; titles are normalized on both sides before they
// get here.
func (s *Service) IsTracked(artist, title string) bool {
	_, ok := s.current().pairs[pair{artist: artist, title: title}]
	return ok
}

// Artists returns a copy of the catalog.
func (s *Service) Artists() []models.TrackedArtist {
	return cloneArtists(s.current().artists)
}

// Pairs returns the number of tracked (artist, title) pairs.
func (s *Service) Pairs() int {
	return len(s.current().pairs)
}

// LastRefresh returns when the current snapshot was loaded, or the zero
// time if nothing has been loaded yet.
func (s *Service) LastRefresh() time.Time {
	return s.current().loaded
}

func cloneArtists(in []models.TrackedArtist) []models.TrackedArtist {
	out := make([]models.TrackedArtist, len(in))
	for i, a := range in {
		out[i] = models.TrackedArtist{Artist: a.Artist, Tracks: append([]string(nil), a.Tracks...)}
	}
	return out
}
