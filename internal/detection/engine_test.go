// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package detection

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/siriustracker/internal/catalog"
	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/models"
	"github.com/tomtom215/siriustracker/internal/retry"
)

// memStore mimics the unique (artist, title) index.
type memStore struct {
	mu        sync.Mutex
	rows      map[[2]string]models.FirstPlay
	hasErr    error
	insertErr error
	// skipCheck makes HasFirstPlay always report false, forcing the race path.
	skipCheck bool
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[[2]string]models.FirstPlay)}
}

func (s *memStore) HasFirstPlay(ctx context.Context, artist, title string) (bool, error) {
	if s.hasErr != nil {
		return false, s.hasErr
	}
	if s.skipCheck {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[[2]string{artist, title}]
	return ok, nil
}

func (s *memStore) InsertFirstPlay(ctx context.Context, fp *models.FirstPlay) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{fp.Artist, fp.Title}
	if _, ok := s.rows[key]; ok {
		return database.ErrFirstPlayExists
	}
	s.rows[key] = *fp
	return nil
}

type countingNotifier struct {
	calls atomic.Int32
	mu    sync.Mutex
	got   []models.FirstPlay
}

func (n *countingNotifier) Notify(ctx context.Context, fp models.FirstPlay) {
	n.calls.Add(1)
	n.mu.Lock()
	n.got = append(n.got, fp)
	n.mu.Unlock()
}

func janeCatalog() *catalog.Service {
	return catalog.NewStatic([]models.TrackedArtist{
		{Artist: "Jane Doe", Tracks: []string{"Bit About Cats"}},
	})
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func play(id, artist, title, channel string, ts time.Time) models.Play {
	p := models.Play{ID: id, Title: title, Channel: channel, Timestamp: ts}
	if artist != "" {
		p.Artist = models.StringPtr(artist)
	}
	return p
}

func TestProcessBatch_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		plays []models.Play
		want  Result
	}{
		{
			name:  "tracked new pair",
			plays: []models.Play{play("x1", "Jane Doe", "Bit About Cats", "Laugh Channel", t0)},
			want:  Result{Processed: 1, Recorded: 1},
		},
		{
			name:  "untracked title",
			plays: []models.Play{play("x2", "Jane Doe", "Unknown Bit", "Laugh Channel", t0)},
			want:  Result{Processed: 1, Untracked: 1},
		},
		{
			name:  "case differs from catalog",
			plays: []models.Play{play("x3", "jane doe", "Bit About Cats", "Laugh Channel", t0)},
			want:  Result{Processed: 1, Untracked: 1},
		},
		{
			name:  "missing artist",
			plays: []models.Play{play("x4", "", "Bit About Cats", "Laugh Channel", t0)},
			want:  Result{Processed: 1, Incomplete: 1},
		},
		{
			name:  "missing channel",
			plays: []models.Play{play("x5", "Jane Doe", "Bit About Cats", "", t0)},
			want:  Result{Processed: 1, Incomplete: 1},
		},
		{
			name: "same pair twice in one batch",
			plays: []models.Play{
				play("x6", "Jane Doe", "Bit About Cats", "Laugh Channel", t0),
				play("x7", "Jane Doe", "Bit About Cats", "Comedy Greats", t0.Add(time.Hour)),
			},
			want: Result{Processed: 2, Recorded: 1, AlreadyRecorded: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			notifier := &countingNotifier{}
			d := New(janeCatalog(), newMemStore(), notifier)

			got := d.ProcessBatch(context.Background(), tt.plays)
			if len(got.FirstPlays) != tt.want.Recorded {
				t.Errorf("len(FirstPlays) = %d, want %d", len(got.FirstPlays), tt.want.Recorded)
			}
			got.FirstPlays = nil
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ProcessBatch() = %+v, want %+v", got, tt.want)
			}
			if int(notifier.calls.Load()) != tt.want.Recorded {
				t.Errorf("notifications = %d, want %d", notifier.calls.Load(), tt.want.Recorded)
			}
		})
	}
}

func TestProcessBatch_FirstPlayFields(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	notifier := &countingNotifier{}
	d := New(janeCatalog(), store, notifier)
	fixedNow := time.Date(2024, 2, 2, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixedNow }

	res := d.ProcessBatch(context.Background(), []models.Play{
		play("x1", "Jane Doe", "Bit About Cats", "Laugh Channel", t0),
	})
	if len(res.FirstPlays) != 1 {
		t.Fatalf("FirstPlays = %d, want 1", len(res.FirstPlays))
	}

	fp := store.rows[[2]string{"Jane Doe", "Bit About Cats"}]
	if !fp.FirstPlayDate.Equal(fixedNow) {
		t.Errorf("FirstPlayDate = %v, want %v", fp.FirstPlayDate, fixedNow)
	}
	if fp.Channel != "Laugh Channel" || !fp.Timestamp.Equal(t0) {
		t.Errorf("FirstPlay = %+v, channel/timestamp not copied from play", fp)
	}
	if notifier.got[0] != fp {
		t.Errorf("notified %+v, want %+v", notifier.got[0], fp)
	}
}

func TestProcessBatch_ReplayAcrossBatches(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	notifier := &countingNotifier{}
	d := New(janeCatalog(), store, notifier)

	batch := []models.Play{play("x1", "Jane Doe", "Bit About Cats", "Laugh Channel", t0)}
	first := d.ProcessBatch(context.Background(), batch)
	second := d.ProcessBatch(context.Background(), batch)

	if first.Recorded != 1 || second.Recorded != 0 || second.AlreadyRecorded != 1 {
		t.Errorf("first = %+v, second = %+v", first, second)
	}
	if notifier.calls.Load() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.calls.Load())
	}
	if got := d.Stats().FirstPlays; got != 1 {
		t.Errorf("Stats().FirstPlays = %d, want 1", got)
	}
}

func TestProcessBatch_StoreErrorsContinue(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.hasErr = errors.New("connection reset")
	d := New(janeCatalog(), store, nil)

	res := d.ProcessBatch(context.Background(), []models.Play{
		play("x1", "Jane Doe", "Bit About Cats", "Laugh Channel", t0),
		play("x2", "Jane Doe", "Other", "Laugh Channel", t0),
	})
	if res.Processed != 2 || res.Errors != 1 || res.Untracked != 1 {
		t.Errorf("ProcessBatch() = %+v", res)
	}

	store.hasErr = nil
	store.insertErr = errors.New("disk full")
	res = d.ProcessBatch(context.Background(), []models.Play{
		play("x1", "Jane Doe", "Bit About Cats", "Laugh Channel", t0),
	})
	if res.Errors != 1 || res.Recorded != 0 {
		t.Errorf("ProcessBatch() = %+v", res)
	}
}

func TestProcessBatch_RaceSwallowsDuplicate(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.skipCheck = true
	notifier := &countingNotifier{}
	d := New(janeCatalog(), store, notifier)

	p := play("x1", "Jane Doe", "Bit About Cats", "Laugh Channel", t0)
	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.ProcessBatch(context.Background(), []models.Play{p})
		}(i)
	}
	wg.Wait()

	var recorded, already, errs int
	for _, r := range results {
		recorded += r.Recorded
		already += r.AlreadyRecorded
		errs += r.Errors
	}
	if recorded != 1 || already != 15 || errs != 0 {
		t.Errorf("recorded=%d already=%d errors=%d, want 1/15/0", recorded, already, errs)
	}
	if notifier.calls.Load() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.calls.Load())
	}
}

func TestProcessBatch_ConcurrentDuckDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping DuckDB test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, &config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"}, retry.Policy{MaxAttempts: 1})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	notifier := &countingNotifier{}
	d := New(janeCatalog(), db, notifier)
	p := play("x1", "Jane Doe", "Bit About Cats", "Laugh Channel", t0)

	var wg sync.WaitGroup
	var recorded, errs atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := d.ProcessBatch(ctx, []models.Play{p})
			recorded.Add(int32(r.Recorded))
			errs.Add(int32(r.Errors))
		}()
	}
	wg.Wait()

	if recorded.Load() != 1 || errs.Load() != 0 {
		t.Errorf("recorded=%d errors=%d, want 1/0", recorded.Load(), errs.Load())
	}
	if notifier.calls.Load() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.calls.Load())
	}
	fps, err := db.ListFirstPlays(ctx)
	if err != nil || len(fps) != 1 {
		t.Errorf("ListFirstPlays() = %d rows, err %v; want 1", len(fps), err)
	}
}

func TestProcessBatch_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(janeCatalog(), newMemStore(), nil)
	res := d.ProcessBatch(ctx, []models.Play{play("x1", "Jane Doe", "Bit About Cats", "Laugh Channel", t0)})
	if res.Processed != 0 {
		t.Errorf("Processed = %d, want 0 on canceled context", res.Processed)
	}
}
