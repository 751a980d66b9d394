// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package testinfra

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/database"
	"github.com/tomtom215/siriustracker/internal/retry"
)

// duckDBSemaphore bounds concurrent in-memory databases across parallel tests.
var duckDBSemaphore = make(chan struct{}, 4)

// NewTestDB opens an in-memory DuckDB with the full schema. It is closed on
// test cleanup.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()

	duckDBSemaphore <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	}, retry.Policy{MaxAttempts: 1})
	if err != nil {
		<-duckDBSemaphore
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
		<-duckDBSemaphore
	})
	return db
}
