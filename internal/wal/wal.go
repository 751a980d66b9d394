// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
)

const prefixPending = "pending:"

// Options tunes a Journal beyond what config.WALConfig carries.
type Options struct {
	// Path is the badger directory; ignored when InMemory is set.
	Path string

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// MaxAttempts is how many failed replays an entry survives before it is dropped.
	MaxAttempts int

	// EntryTTL drops entries older than this during recovery.
	EntryTTL time.Duration
}

// OptionsFromConfig builds Options from the application config.
func OptionsFromConfig(cfg config.WALConfig) Options {
	return Options{Path: cfg.Path, SyncWrites: cfg.SyncWrites}
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 10
	}
	if o.EntryTTL <= 0 {
		o.EntryTTL = 7 * 24 * time.Hour
	}
	return o
}

// Entry is one journaled payload.
type Entry struct {
	ID            string          `json:"id"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt time.Time       `json:"last_attempt_at,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
}

// UnmarshalPayload decodes the payload into v.
func (e *Entry) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Stats contains journal metrics.
type Stats struct {
	PendingCount  int64 `json:"pending_count"`
	TotalWrites   int64 `json:"total_writes"`
	TotalConfirms int64 `json:"total_confirms"`
	TotalRetries  int64 `json:"total_retries"`
	DBSizeBytes   int64 `json:"db_size_bytes"`
}

// Journal is a badger-backed write-ahead log. A payload is written before
// it is processed and confirmed (deleted) after; whatever is still pending
// at startup was interrupted and is replayed.
type Journal struct {
	db   *badger.DB
	opts Options

	totalWrites   atomic.Int64
	totalConfirms atomic.Int64
	totalRetries  atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the journal.
func Open(opts Options) (*Journal, error) {
	opts = opts.withDefaults()

	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("wal: path is required")
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	j := &Journal{db: db, opts: opts}
	logging.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Msg("Ingest journal opened")
	return j, nil
}

func (j *Journal) checkOpen() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrWALClosed
	}
	return nil
}

// Write persists payload and returns its entry ID.
func (j *Journal) Write(ctx context.Context, payload interface{}) (string, error) {
	if err := j.checkOpen(); err != nil {
		return "", err
	}
	if payload == nil {
		return "", ErrNilPayload
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	entry := Entry{
		ID:        uuid.New().String(),
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	if err := j.put(&entry); err != nil {
		return "", fmt.Errorf("write to BadgerDB: %w", err)
	}

	j.totalWrites.Add(1)
	return entry.ID, nil
}

func (j *Journal) put(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixPending+entry.ID), data)
	})
}

// Confirm removes an entry after it was processed.
func (j *Journal) Confirm(ctx context.Context, entryID string) error {
	if err := j.checkOpen(); err != nil {
		return err
	}
	if entryID == "" {
		return ErrEmptyEntryID
	}

	key := []byte(prefixPending + entryID)
	err := j.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("get pending entry: %w", err)
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	j.totalConfirms.Add(1)
	return nil
}

// MarkAttempt records a failed replay of an entry.
func (j *Journal) MarkAttempt(ctx context.Context, entryID, lastError string) error {
	if err := j.checkOpen(); err != nil {
		return err
	}

	key := []byte(prefixPending + entryID)
	err := j.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}

		var entry Entry
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &entry) }); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}
		entry.Attempts++
		entry.LastAttemptAt = time.Now().UTC()
		entry.LastError = lastError

		data, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	j.totalRetries.Add(1)
	return nil
}

// Pending returns every unconfirmed entry, oldest write first.
func (j *Journal) Pending(ctx context.Context) ([]*Entry, error) {
	if err := j.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()

			var entry Entry
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &entry) }); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Ingest journal: skipping unreadable entry")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}

	sortByCreated(entries)
	return entries, nil
}

func (j *Journal) delete(entryID string) error {
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixPending + entryID))
	})
}

// Stats returns journal statistics and refreshes the pending gauge.
func (j *Journal) Stats() Stats {
	if j.checkOpen() != nil {
		return Stats{}
	}

	var pending int64
	if err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			pending++
		}
		return nil
	}); err != nil {
		logging.Warn().Err(err).Msg("Ingest journal: failed to count entries")
	}

	lsm, vlog := j.db.Size()
	metrics.SetWALPending(pending)

	return Stats{
		PendingCount:  pending,
		TotalWrites:   j.totalWrites.Load(),
		TotalConfirms: j.totalConfirms.Load(),
		TotalRetries:  j.totalRetries.Load(),
		DBSizeBytes:   lsm + vlog,
	}
}

// RunGC reclaims value log space. badger.ErrNoRewrite means there was
// nothing to collect and is not reported.
func (j *Journal) RunGC() error {
	if err := j.checkOpen(); err != nil {
		return err
	}
	if j.opts.InMemory {
		return nil
	}
	err := j.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return fmt.Errorf("value log GC: %w", err)
	}
	return nil
}

// Close closes the journal. Calling it twice is safe.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Ingest journal closed")
	return nil
}
