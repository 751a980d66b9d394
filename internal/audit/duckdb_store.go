// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/siriustracker/internal/database/query"
	"github.com/tomtom215/siriustracker/internal/logging"
)

// DuckDBStore implements Store on the tracker database.
type DuckDBStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewDuckDBStore creates a store on an open connection. Call CreateTable
// before the first Save.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the audit_events table and its index if missing.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			type TEXT NOT NULL,
			outcome TEXT NOT NULL,
			actor TEXT,
			source_ip TEXT,
			action TEXT,
			description TEXT,
			metadata TEXT,
			request_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_type ON audit_events(type)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute audit schema statement: %w", err)
		}
	}
	return nil
}

// Save inserts one event.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, timestamp, type, outcome, actor, source_ip, action, description, metadata, request_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Timestamp.UTC(),
		string(event.Type),
		string(event.Outcome),
		nullString(event.Actor),
		nullString(event.SourceIP),
		nullString(event.Action),
		nullString(event.Description),
		nullString(string(event.Metadata)),
		nullString(event.RequestID),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// Query returns matching events, newest first.
func (s *DuckDBStore) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	types := make([]string, len(f.Types))
	for i, t := range f.Types {
		types[i] = string(t)
	}
	outcomes := make([]string, len(f.Outcomes))
	for i, o := range f.Outcomes {
		outcomes[i] = string(o)
	}

	where, args := query.NewWhereBuilder().
		AddTimeRange("timestamp", f.Since, f.Until).
		AddIn("type", types).
		AddIn("outcome", outcomes).
		AddEqualFold("actor", f.Actor).
		BuildWithPrefix()
	args = append(args, f.limit())

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, type, outcome, actor, source_ip, action, description, metadata, request_id
		FROM audit_events `+where+`
		ORDER BY timestamp DESC, id
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close audit rows")
		}
	}()

	var events []Event
	for rows.Next() {
		var e Event
		var eventType, outcome string
		var actor, ip, action, desc, meta, reqID sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &eventType, &outcome,
			&actor, &ip, &action, &desc, &meta, &reqID); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		e.Type = EventType(eventType)
		e.Outcome = Outcome(outcome)
		e.Actor = actor.String
		e.SourceIP = ip.String
		e.Action = action.String
		e.Description = desc.String
		e.RequestID = reqID.String
		if meta.Valid && meta.String != "" {
			e.Metadata = []byte(meta.String)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}
	return events, nil
}

// Delete removes events older than the cutoff.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < ?`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted audit events: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
