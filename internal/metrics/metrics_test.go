// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		wantType  string
	}{
		{"successful insert", "insert", "plays", nil, ""},
		{"duplicate", "insert", "first_plays", errors.New("Constraint Error: Duplicate key \"artist: a\""), "constraint"},
		{"conflict", "insert", "first_plays", errors.New("TransactionContext Error: Transaction conflict"), "conflict"},
		{"timeout", "select", "plays", errors.New("context deadline exceeded"), "timeout"},
		{"closed", "select", "plays", errors.New("sql: database is closed"), "connection"},
		{"other", "select", "plays", errors.New("Binder Error"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before float64
			if tt.wantType != "" {
				before = testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.wantType))
			}

			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)

			if tt.wantType != "" {
				after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.wantType))
				if after != before+1 {
					t.Errorf("error counter for %s = %v, want %v", tt.wantType, after, before+1)
				}
			}
		})
	}
}

func TestRecordIngest(t *testing.T) {
	inserted := testutil.ToFloat64(PlaysIngested.WithLabelValues("inserted"))
	dupes := testutil.ToFloat64(PlaysIngested.WithLabelValues("duplicate"))

	RecordIngest(3, 2, 0)

	if got := testutil.ToFloat64(PlaysIngested.WithLabelValues("inserted")); got != inserted+3 {
		t.Errorf("inserted = %v, want %v", got, inserted+3)
	}
	if got := testutil.ToFloat64(PlaysIngested.WithLabelValues("duplicate")); got != dupes+2 {
		t.Errorf("duplicate = %v, want %v", got, dupes+2)
	}
}

func TestRecordNotification(t *testing.T) {
	for _, result := range []string{"sent", "failed", "skipped"} {
		before := testutil.ToFloat64(Notifications.WithLabelValues(result))
		RecordNotification(result)
		if got := testutil.ToFloat64(Notifications.WithLabelValues(result)); got != before+1 {
			t.Errorf("notifications{%s} = %v, want %v", result, got, before+1)
		}
	}
}

func TestRecordPollRun(t *testing.T) {
	before := testutil.ToFloat64(PollRuns)
	RecordPollRun(2 * time.Second)
	if got := testutil.ToFloat64(PollRuns); got != before+1 {
		t.Errorf("poll_runs_total = %v, want %v", got, before+1)
	}
	if testutil.ToFloat64(PollLastSuccess) == 0 {
		t.Error("poll last success timestamp not set")
	}
}

func TestCatalogAndWALGauges(t *testing.T) {
	at := time.Unix(1700000000, 0)
	RecordCatalogRefresh(42, at)
	if got := testutil.ToFloat64(CatalogTrackedPairs); got != 42 {
		t.Errorf("catalog_tracked_pairs = %v, want 42", got)
	}
	if got := testutil.ToFloat64(CatalogLastRefresh); got != 1700000000 {
		t.Errorf("catalog_last_refresh = %v", got)
	}

	SetWALPending(7)
	if got := testutil.ToFloat64(WALPendingEntries); got != 7 {
		t.Errorf("wal_pending_entries = %v, want 7", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	SetCircuitBreakerState("xmplaylist", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("xmplaylist")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}

	before := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("xmplaylist", "closed", "open"))
	RecordCircuitBreakerTransition("xmplaylist", "closed", "open")
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("xmplaylist", "closed", "open")); got != before+1 {
		t.Errorf("transitions = %v, want %v", got, before+1)
	}
}
