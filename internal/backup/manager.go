// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/logging"
)

// ErrBackupNotFound is returned when an archive name does not resolve to a
// file in the backup directory.
var ErrBackupNotFound = errors.New("backup not found")

// Source is the database being backed up.
type Source interface {
	// Path returns the database file path.
	Path() string
	// Checkpoint flushes the DuckDB WAL into the main file.
	Checkpoint(ctx context.Context) error
	CountPlays(ctx context.Context) (int64, error)
}

// Manager creates and maintains archives in one directory.
type Manager struct {
	dir    string
	retain int
	db     Source

	// Serializes Create and Prune so retention never races a new archive.
	mu  sync.Mutex
	now func() time.Time
}

// NewManager creates the backup directory if needed.
func NewManager(cfg config.BackupConfig, db Source) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	retain := cfg.Retain
	if retain < 1 {
		retain = 1
	}
	return &Manager{
		dir:    cfg.Dir,
		retain: retain,
		db:     db,
		now:    time.Now,
	}, nil
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Create checkpoints the database and writes a new archive.
func (m *Manager) Create(ctx context.Context, notes string) (*Backup, error) {
	if m.db == nil {
		return nil, fmt.Errorf("database connection not available")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	start := m.now().UTC()
	b := &Backup{
		ID:         uuid.NewString(),
		CreatedAt:  start,
		AppVersion: AppVersion,
		Notes:      notes,
	}
	b.FilePath = filepath.Join(m.dir, archiveName(start, b.ID))

	if err := m.writeArchive(ctx, b); err != nil {
		_ = os.Remove(b.FilePath) //nolint:errcheck // partial archive
		logging.Error().Err(err).Str("path", b.FilePath).Msg("Backup failed")
		return nil, err
	}

	b.Size = getFileSize(b.FilePath)
	logging.Info().
		Str("backup_id", b.ID).
		Str("path", b.FilePath).
		Int64("size", b.Size).
		Int64("plays", b.PlayCount).
		Dur("duration", time.Since(start)).
		Msg("Backup created")
	return b, nil
}

// List returns every readable archive in the directory, newest first.
// Archives whose metadata cannot be read are logged and skipped.
func (m *Manager) List() ([]*Backup, error) {
	paths, err := m.archivePaths()
	if err != nil {
		return nil, err
	}

	backups := make([]*Backup, 0, len(paths))
	for _, p := range paths {
		b, err := readMetadata(p)
		if err != nil {
			logging.Warn().Err(err).Str("path", p).Msg("Skipping unreadable backup")
			continue
		}
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Resolve maps an archive file name, a path inside the directory, or a
// backup ID to the archive path.
func (m *Manager) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", ErrBackupNotFound
	}
	candidate := filepath.Join(m.dir, filepath.Base(ref))
	if fileExists(candidate) {
		return candidate, nil
	}

	paths, err := m.archivePaths()
	if err != nil {
		return "", err
	}
	short := shortID(ref)
	for _, p := range paths {
		if strings.HasSuffix(filepath.Base(p), "-"+short+archiveSuffix) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrBackupNotFound, ref)
}

// Prune removes all but the newest retain archives. Archives with unreadable
// metadata are ordered by file name and count toward the limit.
func (m *Manager) Prune() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	paths, err := m.archivePaths()
	if err != nil {
		return nil, err
	}
	if len(paths) <= m.retain {
		return nil, nil
	}

	// Names embed the UTC creation time, so reverse lexical order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))

	var removed []string
	for _, p := range paths[m.retain:] {
		if err := os.Remove(p); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", p, err)
		}
		removed = append(removed, p)
	}

	logging.Info().Int("removed", len(removed)).Int("retained", m.retain).Msg("Pruned backups")
	return removed, nil
}

func (m *Manager) archivePaths() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
			continue
		}
		paths = append(paths, filepath.Join(m.dir, name))
	}
	return paths, nil
}

func archiveName(t time.Time, id string) string {
	return archivePrefix + t.Format("20060102T150405.000Z") + "-" + shortID(id) + archiveSuffix
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func getFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
