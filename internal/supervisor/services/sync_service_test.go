// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeManager struct {
	started  chan struct{}
	stopped  atomic.Bool
	startErr error
	stopErr  error
}

func newFakeManager() *fakeManager {
	return &fakeManager{started: make(chan struct{})}
}

func (m *fakeManager) Start(context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}
	close(m.started)
	return nil
}

func (m *fakeManager) Stop() error {
	m.stopped.Store(true)
	return m.stopErr
}

func TestSyncService_Lifecycle(t *testing.T) {
	t.Parallel()

	mgr := newFakeManager()
	svc := NewSyncService(mgr)
	if svc.String() != "playlist-poller" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-mgr.started:
	case <-time.After(time.Second):
		t.Fatal("manager was not started")
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if !mgr.stopped.Load() {
		t.Error("manager was not stopped")
	}
}

func TestSyncService_Errors(t *testing.T) {
	t.Parallel()

	startErr := errors.New("already running")
	mgr := newFakeManager()
	mgr.startErr = startErr
	if err := NewSyncService(mgr).Serve(context.Background()); !errors.Is(err, startErr) {
		t.Errorf("Serve() = %v, want start error", err)
	}
	if mgr.stopped.Load() {
		t.Error("Stop should not run after a failed Start")
	}

	stopErr := errors.New("not running")
	mgr = newFakeManager()
	mgr.stopErr = stopErr
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewSyncService(mgr).Serve(ctx); !errors.Is(err, stopErr) {
		t.Errorf("Serve() = %v, want stop error", err)
	}
}
