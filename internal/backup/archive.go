// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/siriustracker/internal/logging"
)

// archiveWriters holds the writer chain file -> gzip -> tar.
type archiveWriters struct {
	tarWriter *tar.Writer
	closers   []io.Closer
}

// Close closes all writers in reverse order, returning the first error encountered
func (aw *archiveWriters) Close() error {
	var firstErr error
	for i := len(aw.closers) - 1; i >= 0; i-- {
		if err := aw.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

//nolint:gosec // G304: filePath is built from the configured backup directory
func newArchiveWriters(filePath string) (*archiveWriters, error) {
	outFile, err := os.OpenFile(filePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup file: %w", err)
	}
	gzWriter, err := gzip.NewWriterLevel(outFile, gzip.DefaultCompression)
	if err != nil {
		outFile.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	tw := tar.NewWriter(gzWriter)
	return &archiveWriters{
		tarWriter: tw,
		closers:   []io.Closer{outFile, gzWriter, tw},
	}, nil
}

func (m *Manager) writeArchive(ctx context.Context, b *Backup) (err error) {
	aw, err := newArchiveWriters(b.FilePath)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := aw.Close()
		if err == nil {
			err = closeErr
		}
	}()

	if err := m.db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint failed, backup may miss recent writes")
	}

	if n, err := m.db.CountPlays(ctx); err == nil {
		b.PlayCount = n
	}

	dbPath := m.db.Path()
	if err := addFile(aw.tarWriter, dbPath, databaseEntry, b); err != nil {
		return fmt.Errorf("failed to add database file: %w", err)
	}
	if walPath := dbPath + ".wal"; fileExists(walPath) {
		if err := addFile(aw.tarWriter, walPath, databaseWALName, b); err != nil {
			return fmt.Errorf("failed to add WAL file: %w", err)
		}
	}

	return addMetadata(aw.tarWriter, b)
}

//nolint:gosec // G304: srcPath is the configured database path
func addFile(tw *tar.Writer, srcPath, destPath string, b *Backup) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer file.Close() //nolint:errcheck // read-only

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to create tar header for %s: %w", srcPath, err)
	}
	header.Name = destPath

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", srcPath, err)
	}

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tw, hasher), file); err != nil {
		return fmt.Errorf("failed to copy %s to archive: %w", srcPath, err)
	}

	b.Files = append(b.Files, File{
		Path:         destPath,
		OriginalPath: srcPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
	})
	return nil
}

func addMetadata(tw *tar.Writer, b *Backup) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup metadata: %w", err)
	}

	header := &tar.Header{
		Name:    metadataName,
		Size:    int64(len(data)),
		Mode:    0o640,
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write metadata header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// archiveReader walks the entries of a tar.gz archive.
type archiveReader struct {
	*tar.Reader
	closers []io.Closer
}

//nolint:gosec // G304: path is resolved inside the backup directory
func openArchive(path string) (*archiveReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	return &archiveReader{Reader: tar.NewReader(gz), closers: []io.Closer{gz, file}}, nil
}

func (r *archiveReader) Close() {
	for _, c := range r.closers {
		c.Close() //nolint:errcheck // read-only
	}
}

// readMetadata scans an archive for its metadata entry.
func readMetadata(path string) (*Backup, error) {
	r, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s has no %s", filepath.Base(path), metadataName)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Name != metadataName {
			continue
		}

		var b Backup
		if err := json.NewDecoder(r).Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode backup metadata: %w", err)
		}
		b.FilePath = path
		b.Size = getFileSize(path)
		return &b, nil
	}
}

// Validate re-reads an archive and checks every file against the checksum
// recorded in its metadata.
func (m *Manager) Validate(ref string) (*ValidationResult, error) {
	path, err := m.Resolve(ref)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{Valid: true}
	b, err := readMetadata(path)
	if err != nil {
		result.fail("%v", err)
		return result, nil
	}
	result.Backup = b

	sums, err := checksumEntries(path)
	if err != nil {
		result.fail("%v", err)
		return result, nil
	}

	hasDatabase := false
	for _, f := range b.Files {
		if f.Path == databaseEntry {
			hasDatabase = true
		}
		got, ok := sums[f.Path]
		switch {
		case !ok:
			result.fail("missing file %s", f.Path)
		case got != f.Checksum:
			result.fail("checksum mismatch for %s", f.Path)
		default:
			result.Checked++
		}
	}
	if !hasDatabase {
		result.fail("archive does not contain %s", databaseEntry)
	}
	return result, nil
}

func checksumEntries(path string) (map[string]string, error) {
	r, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sums := make(map[string]string)
	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			return sums, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}
		if header.Name == metadataName {
			continue
		}
		hasher := sha256.New()
		if _, err := io.Copy(hasher, r); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		sums[header.Name] = hex.EncodeToString(hasher.Sum(nil))
	}
}

// Restore validates an archive and extracts its database file (and WAL,
// when archived) to dest. An existing dest is only replaced when overwrite
// is set. The database must not be open while restoring over it.
func (m *Manager) Restore(ref, dest string, overwrite bool) (*Backup, error) {
	result, err := m.Validate(ref)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("backup failed validation: %s", strings.Join(result.Errors, "; "))
	}
	if fileExists(dest) && !overwrite {
		return nil, fmt.Errorf("%s already exists", dest)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	targets := map[string]string{
		databaseEntry:   dest,
		databaseWALName: dest + ".wal",
	}

	// A stale WAL next to a restored file would be replayed over it.
	if err := os.Remove(dest + ".wal"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale WAL: %w", err)
	}

	r, err := openArchive(result.Backup.FilePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar entry: %w", err)
		}
		target, ok := targets[header.Name]
		if !ok {
			continue
		}
		if err := extractTo(r, target); err != nil {
			return nil, err
		}
	}

	logging.Info().
		Str("backup_id", result.Backup.ID).
		Str("dest", dest).
		Msg("Backup restored")
	return result.Backup, nil
}

// extractTo writes through a temp file and renames it into place.
func extractTo(r io.Reader, target string) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".restore-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	//nolint:gosec // G110: archives are produced by Create and checksum-validated
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("failed to extract %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move restored file into place: %w", err)
	}
	return nil
}
