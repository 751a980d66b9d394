// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package backup

import (
	"fmt"
	"time"
)

// AppVersion is set at build time
var AppVersion = "dev"

const (
	archivePrefix   = "siriustracker-"
	archiveSuffix   = ".tar.gz"
	metadataName    = "backup-metadata.json"
	databaseEntry   = "database/siriustracker.duckdb"
	databaseWALName = "database/siriustracker.duckdb.wal"
)

// Backup describes one archive. It is written into the archive itself, so
// the backup directory needs no separate index.
type Backup struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	AppVersion string    `json:"app_version"`
	Notes      string    `json:"notes,omitempty"`

	// PlayCount is the number of rows in plays at checkpoint time.
	PlayCount int64  `json:"play_count"`
	Files     []File `json:"files"`

	// Set from the filesystem when listing, not serialized.
	FilePath string `json:"-"`
	Size     int64  `json:"-"`
}

// File is one archived file.
type File struct {
	Path         string    `json:"path"`
	OriginalPath string    `json:"original_path"`
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"mod_time"`
	Checksum     string    `json:"checksum"`
}

// ValidationResult reports the outcome of Validate.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Backup  *Backup  `json:"backup,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Checked int      `json:"checked"`
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
