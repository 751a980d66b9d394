// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/siriustracker/internal/catalog"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/detection"
	"github.com/tomtom215/siriustracker/internal/models"
	"github.com/tomtom215/siriustracker/internal/testinfra"
	"github.com/tomtom215/siriustracker/internal/wal"
)

type recordingNotifier struct {
	mu  sync.Mutex
	got []models.FirstPlay
}

func (n *recordingNotifier) Notify(ctx context.Context, fp models.FirstPlay) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, fp)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.got)
}

type pipeline struct {
	db       *database.DB
	notifier *recordingNotifier
	svc      *Service
}

func newPipeline(t *testing.T, journal Journal) *pipeline {
	t.Helper()
	db := testinfra.NewTestDB(t)
	cat := catalog.NewStatic([]models.TrackedArtist{
		{Artist: "Jane Doe", Tracks: []string{"Bit About Cats"}},
	})
	notifier := &recordingNotifier{}
	det := detection.New(cat, db, notifier)
	return &pipeline{db: db, notifier: notifier, svc: NewService(db, det, journal)}
}

func janePlay() models.RawPlay {
	return models.RawPlay{
		ID:        "x1",
		Artist:    models.StringPtr("Jane Doe"),
		Title:     "Bit About Cats",
		Channel:   "Laugh Channel",
		Timestamp: "2024-01-01T00:00:00Z",
	}
}

func TestIngest_SameBatchTwice(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, nil)
	ctx := context.Background()

	first, err := p.svc.Ingest(ctx, []models.RawPlay{janePlay()})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	second, err := p.svc.Ingest(ctx, []models.RawPlay{janePlay()})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if first.Inserted != 1 || first.Detection.Recorded != 1 {
		t.Errorf("first = %+v", first)
	}
	if second.Inserted != 0 || second.Duplicates != 1 || second.Detection.Recorded != 0 {
		t.Errorf("second = %+v", second)
	}

	if n, _ := p.db.CountPlays(ctx); n != 1 {
		t.Errorf("CountPlays() = %d, want 1", n)
	}
	fps, err := p.db.ListFirstPlays(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fps) != 1 || fps[0].Artist != "Jane Doe" || fps[0].Title != "Bit About Cats" {
		t.Errorf("first plays = %+v", fps)
	}
	if p.notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", p.notifier.count())
	}
}

func TestIngest_UntrackedTitle(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, nil)
	ctx := context.Background()

	raw := janePlay()
	raw.ID = "x2"
	raw.Title = "unknown bit"
	summary, err := p.svc.Ingest(ctx, []models.RawPlay{raw})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Inserted != 1 || summary.Detection.Untracked != 1 {
		t.Errorf("summary = %+v", summary)
	}

	play, err := p.db.GetPlay(ctx, "x2")
	if err != nil {
		t.Fatal(err)
	}
	if play.Title != "Unknown Bit" {
		t.Errorf("stored title = %q, want normalized", play.Title)
	}
	if fps, _ := p.db.ListFirstPlays(ctx); len(fps) != 0 {
		t.Errorf("first plays = %+v, want none", fps)
	}
}

func TestIngest_TitleNormalizedBeforeMatch(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, nil)

	raw := janePlay()
	raw.Title = "bit  about CATS"
	summary, err := p.svc.Ingest(context.Background(), []models.RawPlay{raw})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Detection.Recorded != 1 {
		t.Errorf("summary = %+v, want normalized title to match the catalog", summary)
	}
}

func TestIngest_InvalidRecordsSkipped(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, nil)

	bad := janePlay()
	bad.ID = ""
	badTime := janePlay()
	badTime.ID = "x9"
	badTime.Timestamp = "last tuesday"

	summary, err := p.svc.Ingest(context.Background(), []models.RawPlay{bad, badTime, janePlay()})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Received != 3 || summary.Invalid != 2 || summary.Inserted != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestIngest_NullArtistStored(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, nil)
	ctx := context.Background()

	raw := janePlay()
	raw.ID = "n1"
	raw.Artist = nil
	summary, err := p.svc.Ingest(ctx, []models.RawPlay{raw})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Inserted != 1 || summary.Detection.Incomplete != 1 {
		t.Errorf("summary = %+v", summary)
	}
	play, err := p.db.GetPlay(ctx, "n1")
	if err != nil {
		t.Fatal(err)
	}
	if play.Artist != nil {
		t.Errorf("artist = %q, want NULL", *play.Artist)
	}
}

func TestIngest_ConcurrentBatches(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.svc.Ingest(ctx, []models.RawPlay{janePlay()}); err != nil {
				t.Errorf("Ingest() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if fps, _ := p.db.ListFirstPlays(ctx); len(fps) != 1 {
		t.Errorf("first plays = %d, want 1", len(fps))
	}
	if p.notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", p.notifier.count())
	}
}

func openJournal(t *testing.T) *wal.Journal {
	t.Helper()
	j, err := wal.Open(wal.Options{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestIngest_JournalConfirmed(t *testing.T) {
	t.Parallel()
	journal := openJournal(t)
	p := newPipeline(t, journal)

	if _, err := p.svc.Ingest(context.Background(), []models.RawPlay{janePlay()}); err != nil {
		t.Fatal(err)
	}
	if n := journal.Stats().PendingCount; n != 0 {
		t.Errorf("pending = %d, want 0 after successful ingest", n)
	}
}

func TestRecover_ReplaysInterruptedBatch(t *testing.T) {
	t.Parallel()
	journal := openJournal(t)
	p := newPipeline(t, journal)
	ctx := context.Background()

	// A batch journaled by a run that died before processing it.
	if _, err := journal.Write(ctx, journalBatch{Plays: []models.RawPlay{janePlay()}}); err != nil {
		t.Fatal(err)
	}

	result, err := p.svc.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if result.Recovered != 1 {
		t.Errorf("Recover() = %+v", result)
	}
	if n, _ := p.db.CountPlays(ctx); n != 1 {
		t.Errorf("CountPlays() = %d, want 1", n)
	}
	if p.notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", p.notifier.count())
	}

	// Replaying again is harmless.
	if _, err := journal.Write(ctx, journalBatch{Plays: []models.RawPlay{janePlay()}}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.svc.Recover(ctx); err != nil {
		t.Fatal(err)
	}
	if p.notifier.count() != 1 {
		t.Errorf("notifications after replay = %d, want 1", p.notifier.count())
	}
}

type failingJournal struct{ Journal }

func (failingJournal) Write(ctx context.Context, payload interface{}) (string, error) {
	return "", wal.ErrWALClosed
}

func TestIngest_JournalWriteFailure(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, failingJournal{})

	_, err := p.svc.Ingest(context.Background(), []models.RawPlay{janePlay()})
	if !errors.Is(err, wal.ErrWALClosed) {
		t.Fatalf("Ingest() error = %v, want ErrWALClosed", err)
	}
	if n, _ := p.db.CountPlays(context.Background()); n != 0 {
		t.Errorf("CountPlays() = %d, want 0 when the batch could not be journaled", n)
	}
}

func TestRecover_NoJournal(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := p.svc.Recover(ctx)
	if err != nil || result.TotalPending != 0 {
		t.Errorf("Recover() = %+v, %v", result, err)
	}
}

// flakyFirstPlays fails the first n InsertFirstPlay calls.
type flakyFirstPlays struct {
	*database.DB

	mu       sync.Mutex
	failures int
}

func (f *flakyFirstPlays) InsertFirstPlay(ctx context.Context, fp *models.FirstPlay) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return errors.New("connection reset")
	}
	f.mu.Unlock()
	return f.DB.InsertFirstPlay(ctx, fp)
}

func TestIngest_DetectionFailureLeavesJournalPending(t *testing.T) {
	t.Parallel()
	journal := openJournal(t)
	db := testinfra.NewTestDB(t)
	cat := catalog.NewStatic([]models.TrackedArtist{
		{Artist: "Jane Doe", Tracks: []string{"Bit About Cats"}},
	})
	notifier := &recordingNotifier{}
	store := &flakyFirstPlays{DB: db, failures: 1}
	svc := NewService(db, detection.New(cat, store, notifier), journal)
	ctx := context.Background()

	summary, err := svc.Ingest(ctx, []models.RawPlay{janePlay()})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if summary.Inserted != 1 || summary.Detection.Errors != 1 || summary.Failed() != 1 {
		t.Fatalf("summary = %+v, want 1 inserted and 1 detection error", summary)
	}
	if n := journal.Stats().PendingCount; n != 1 {
		t.Fatalf("pending = %d, want 1 after a failed first-play insert", n)
	}

	result, err := svc.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if result.Recovered != 1 {
		t.Errorf("Recover() = %+v, want 1 recovered", result)
	}
	if fps, _ := db.ListFirstPlays(ctx); len(fps) != 1 {
		t.Errorf("first plays = %d, want 1", len(fps))
	}
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}
	if n := journal.Stats().PendingCount; n != 0 {
		t.Errorf("pending = %d, want 0 after recovery", n)
	}
}

func TestRecover_DetectionFailureKeepsEntry(t *testing.T) {
	t.Parallel()
	journal := openJournal(t)
	db := testinfra.NewTestDB(t)
	cat := catalog.NewStatic([]models.TrackedArtist{
		{Artist: "Jane Doe", Tracks: []string{"Bit About Cats"}},
	})
	store := &flakyFirstPlays{DB: db, failures: 1}
	svc := NewService(db, detection.New(cat, store, nil), journal)
	ctx := context.Background()

	if _, err := journal.Write(ctx, journalBatch{Plays: []models.RawPlay{janePlay()}}); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Recover(ctx)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if result.Failed != 1 || result.Recovered != 0 {
		t.Errorf("Recover() = %+v, want 1 failed", result)
	}
	if n := journal.Stats().PendingCount; n != 1 {
		t.Errorf("pending = %d, want 1 until the first play is recorded", n)
	}
}

// callJournal records calls and keeps nothing.
type callJournal struct {
	mu    sync.Mutex
	calls []string
}

func (j *callJournal) record(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, name)
}

func (j *callJournal) Write(context.Context, interface{}) (string, error) {
	j.record("write")
	return "entry-1", nil
}

func (j *callJournal) Confirm(context.Context, string) error {
	j.record("confirm")
	return nil
}

func (j *callJournal) RecoverPending(context.Context, wal.Replayer) (*wal.RecoveryResult, error) {
	j.record("recover")
	return &wal.RecoveryResult{}, nil
}

func TestIngest_JournalCallsPerBatch(t *testing.T) {
	t.Parallel()
	journal := &callJournal{}
	p := newPipeline(t, journal)

	if _, err := p.svc.Ingest(context.Background(), []models.RawPlay{janePlay()}); err != nil {
		t.Fatal(err)
	}

	journal.mu.Lock()
	defer journal.mu.Unlock()
	want := []string{"write", "confirm"}
	if len(journal.calls) != len(want) || journal.calls[0] != want[0] || journal.calls[1] != want[1] {
		t.Errorf("journal calls = %v, want %v", journal.calls, want)
	}
}
