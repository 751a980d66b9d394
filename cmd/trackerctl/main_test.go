// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/models"
	"github.com/tomtom215/siriustracker/internal/testinfra"
)

// cliEnv points configuration at a temp directory. Commands share the
// process environment, so these tests do not run in parallel.
type cliEnv struct {
	dir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.DotenvPathEnvVar, filepath.Join(dir, "missing.env"))
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Setenv("DUCKDB_PATH", filepath.Join(dir, "siriustracker.duckdb"))
	t.Setenv("BACKUP_DIR", filepath.Join(dir, "backups"))
	t.Setenv("BACKUP_RETAIN", "2")
	t.Setenv("POLL_STATIONS", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("LOG_LEVEL", "error")
	return &cliEnv{dir: dir}
}

func (e *cliEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes trackerctl and decodes its stdout into out when non-nil.
func (e *cliEnv) run(t *testing.T, out interface{}, args ...string) error {
	t.Helper()
	var buf bytes.Buffer
	err := newApp(&buf).RunContext(context.Background(), append([]string{"trackerctl"}, args...))
	if err == nil && out != nil {
		if jerr := json.Unmarshal(buf.Bytes(), out); jerr != nil {
			t.Fatalf("trackerctl %s: decode %q: %v", strings.Join(args, " "), buf.String(), jerr)
		}
	}
	return err
}

func (e *cliEnv) mustRun(t *testing.T, out interface{}, args ...string) {
	t.Helper()
	if err := e.run(t, out, args...); err != nil {
		t.Fatalf("trackerctl %s: %v", strings.Join(args, " "), err)
	}
}

const testCatalog = `{"Jane Doe": ["bit about cats", "Bit About Dogs"], "John Roe": ["airport story"]}`

const testReport = "\ufeffdatetime,artist,song,channel\n" +
	"2024-03-01 12:00:00,Jane Doe,bit about cats,siriusxm:Laugh USA\n" +
	"2024-03-02 12:00:00,Jane Doe,Bit About Cats,Laugh USA\n" +
	"2024-03-01 13:00:00,John Roe,Untracked Bit,Raw Dog\n" +
	"not a date,Jane Doe,Bit About Dogs,Laugh USA\n"

func TestCatalogAndStations(t *testing.T) {
	env := newCLIEnv(t)
	path := env.write(t, "tracked_artists.json", testCatalog)

	var imported map[string]int
	env.mustRun(t, &imported, "catalog", "import", path)
	if imported["artists"] != 2 || imported["pairs"] != 3 {
		t.Errorf("catalog import = %v, want 2 artists, 3 pairs", imported)
	}

	var artists []models.TrackedArtist
	env.mustRun(t, &artists, "catalog", "list")
	if len(artists) != 2 {
		t.Errorf("catalog list = %+v", artists)
	}

	if err := env.run(t, nil, "stations", "set", "laughusa", "bad station"); err == nil {
		t.Error("expected invalid station to be rejected")
	}

	var stations []string
	env.mustRun(t, &stations, "stations", "set", "laughusa", "rawdog")
	if len(stations) != 2 {
		t.Errorf("stations set = %v", stations)
	}
	stations = nil
	env.mustRun(t, &stations, "stations", "list")
	if len(stations) != 2 {
		t.Errorf("stations list = %v", stations)
	}
}

func TestCatalogImport_MissingArgument(t *testing.T) {
	newCLIEnv(t)
	if err := newApp(&bytes.Buffer{}).Run([]string{"trackerctl", "catalog", "import"}); err == nil {
		t.Error("expected usage error")
	}
}

func TestImportReportThenBackfill(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, nil, "catalog", "import", env.write(t, "tracked_artists.json", testCatalog))
	report := env.write(t, "report.csv", testReport)

	var dry struct {
		Imported int  `json:"imported"`
		Invalid  int  `json:"invalid"`
		DryRun   bool `json:"dry_run"`
	}
	env.mustRun(t, &dry, "import-report", "--dry-run", report)
	if !dry.DryRun || dry.Imported != 3 || dry.Invalid != 1 {
		t.Errorf("dry run = %+v, want 3 imported, 1 invalid", dry)
	}

	var stats struct {
		Imported int `json:"imported"`
		Existing int `json:"existing"`
	}
	env.mustRun(t, &stats, "import-report", report)
	if stats.Imported != 3 {
		t.Errorf("import = %+v, want 3 imported", stats)
	}
	env.mustRun(t, &stats, "import-report", report)
	if stats.Imported != 0 || stats.Existing != 3 {
		t.Errorf("re-import = %+v, want 3 existing", stats)
	}

	var plays []models.Play
	env.mustRun(t, &plays, "plays", "list", "--artist", "jane doe", "--channel", "Laugh USA")
	if len(plays) != 2 {
		t.Fatalf("plays list = %+v, want 2", plays)
	}
	if plays[0].Timestamp.Before(plays[1].Timestamp) {
		t.Error("plays should be newest first")
	}

	var preview backfillResult
	env.mustRun(t, &preview, "first-plays", "backfill", "--dry-run")
	if preview.Recorded != 1 {
		t.Errorf("backfill dry run = %+v, want 1", preview)
	}

	var res backfillResult
	env.mustRun(t, &res, "first-plays", "backfill")
	if res.Recorded != 1 || res.Existing != 0 {
		t.Fatalf("backfill = %+v, want 1 recorded", res)
	}
	fp := res.FirstPlays[0]
	want := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	if fp.Artist != "Jane Doe" || fp.Title != "Bit About Cats" || !fp.Timestamp.Equal(want) || fp.Channel != "Laugh USA" {
		t.Errorf("first play = %+v", fp)
	}

	env.mustRun(t, &res, "first-plays", "backfill")
	if res.Recorded != 0 || res.Existing != 1 {
		t.Errorf("second backfill = %+v, want 1 existing", res)
	}

	var listed []models.FirstPlay
	env.mustRun(t, &listed, "first-plays", "list")
	if len(listed) != 1 {
		t.Errorf("first-plays list = %+v", listed)
	}
}

func TestPoll(t *testing.T) {
	env := newCLIEnv(t)
	server := testinfra.NewMockPlaylistServer(t)
	t.Setenv("XMPLAYLIST_BASE_URL", server.BaseURL())
	server.SetStation("laughusa", "Laugh USA",
		testinfra.PlaylistItem{ID: "p1", Timestamp: "2024-03-01T12:00:00Z", Title: "Bit About Cats", Artists: []string{"Jane Doe"}},
		testinfra.PlaylistItem{ID: "p2", Timestamp: "2024-03-01T12:30:00Z", Title: "Other Bit", Artists: []string{"Someone Else"}},
	)

	env.mustRun(t, nil, "catalog", "import", env.write(t, "tracked_artists.json", testCatalog))
	env.mustRun(t, nil, "stations", "set", "laughusa")

	var summary struct {
		Stations   int `json:"stations"`
		Inserted   int `json:"inserted"`
		FirstPlays int `json:"first_plays"`
	}
	env.mustRun(t, &summary, "poll", "--no-notify")
	if summary.Stations != 1 || summary.Inserted != 2 || summary.FirstPlays != 1 {
		t.Errorf("poll = %+v, want 1 station, 2 inserted, 1 first play", summary)
	}
}

func TestBackupLifecycle(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, nil, "catalog", "import", env.write(t, "tracked_artists.json", testCatalog))

	var ids []string
	for i := 0; i < 3; i++ {
		var created backupSummary
		env.mustRun(t, &created, "backup", "create", "--notes", "test")
		ids = append(ids, created.ID)
		// Archive names carry millisecond timestamps.
		time.Sleep(5 * time.Millisecond)
	}

	var listed []backupSummary
	env.mustRun(t, &listed, "backup", "list")
	if len(listed) != 2 {
		t.Fatalf("backup list = %+v, want 2 after retention", listed)
	}
	if listed[0].ID != ids[2] {
		t.Errorf("newest = %s, want %s", listed[0].ID, ids[2])
	}

	var result struct {
		Valid bool `json:"valid"`
	}
	env.mustRun(t, &result, "backup", "validate", ids[2])
	if !result.Valid {
		t.Error("fresh backup should validate")
	}

	dest := filepath.Join(env.dir, "restored", "siriustracker.duckdb")
	env.mustRun(t, nil, "backup", "restore", ids[2], "--to", dest)
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("restored file missing: %v", err)
	}
	if err := env.run(t, nil, "backup", "restore", ids[2], "--to", dest); err == nil {
		t.Error("restore over an existing file without --force should fail")
	}

	if err := env.run(t, nil, "backup", "validate", "missing-id"); err == nil {
		t.Error("validate of an unknown backup should fail")
	}
}

// fakeBackfillStore records InsertFirstPlay calls.
type fakeBackfillStore struct {
	candidates []models.FirstPlay
	existing   map[string]bool
	inserted   []models.FirstPlay
	failOn     string
}

func (f *fakeBackfillStore) EarliestTrackedPlays(context.Context) ([]models.FirstPlay, error) {
	return f.candidates, nil
}

func (f *fakeBackfillStore) HasFirstPlay(_ context.Context, artist, title string) (bool, error) {
	return f.existing[artist+"/"+title], nil
}

func (f *fakeBackfillStore) InsertFirstPlay(_ context.Context, fp *models.FirstPlay) error {
	key := fp.Artist + "/" + fp.Title
	if key == f.failOn {
		return errors.New("disk full")
	}
	if f.existing[key] {
		return database.ErrFirstPlayExists
	}
	f.inserted = append(f.inserted, *fp)
	return nil
}

func TestBackfillFirstPlays(t *testing.T) {
	t.Parallel()

	candidates := []models.FirstPlay{
		{Artist: "Jane Doe", Title: "Bit About Cats"},
		{Artist: "John Roe", Title: "Airport Story"},
	}

	tests := []struct {
		name         string
		dryRun       bool
		existing     map[string]bool
		failOn       string
		wantRecorded int
		wantExisting int
		wantInserted int
		wantErr      bool
	}{
		{"all new", false, nil, "", 2, 0, 2, false},
		{"one existing", false, map[string]bool{"Jane Doe/Bit About Cats": true}, "", 1, 1, 1, false},
		{"dry run writes nothing", true, map[string]bool{"John Roe/Airport Story": true}, "", 1, 1, 0, false},
		{"store error stops", false, nil, "John Roe/Airport Story", 1, 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &fakeBackfillStore{candidates: candidates, existing: tt.existing, failOn: tt.failOn}
			res, err := backfillFirstPlays(context.Background(), store, tt.dryRun)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if res.Recorded != tt.wantRecorded || res.Existing != tt.wantExisting {
				t.Errorf("result = %+v", res)
			}
			if len(store.inserted) != tt.wantInserted {
				t.Errorf("inserted = %d, want %d", len(store.inserted), tt.wantInserted)
			}
		})
	}
}
