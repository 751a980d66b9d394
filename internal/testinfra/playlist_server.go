// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// PlaylistItem is one entry served by MockPlaylistServer.
type PlaylistItem struct {
	ID        string
	Timestamp string
	Title     string
	Artists   []string
}

// PlaylistRequest is a captured request.
type PlaylistRequest struct {
	Station string
	Headers http.Header
}

// MockPlaylistServer serves GET /api/station/{station} in the xmplaylist
// response shape. Unknown stations answer 404.
type MockPlaylistServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	stations map[string]mockStation
	failures map[string]int
	requests []PlaylistRequest
}

type mockStation struct {
	channel string
	items   []PlaylistItem
	raw     string
}

// NewMockPlaylistServer starts the server and closes it on test cleanup.
func NewMockPlaylistServer(t *testing.T) *MockPlaylistServer {
	t.Helper()

	m := &MockPlaylistServer{
		stations: make(map[string]mockStation),
		failures: make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)
	return m
}

// BaseURL returns the URL stations are appended to.
func (m *MockPlaylistServer) BaseURL() string {
	return m.Server.URL + "/api/station/"
}

// SetStation serves items for station under the channel display name.
func (m *MockPlaylistServer) SetStation(station, channel string, items ...PlaylistItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[station] = mockStation{channel: channel, items: items}
}

// SetRawStation serves body verbatim for station.
func (m *MockPlaylistServer) SetRawStation(station, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations[station] = mockStation{raw: body}
}

// FailStation makes the next n requests for station answer 500.
func (m *MockPlaylistServer) FailStation(station string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[station] = n
}

// Requests returns the captured requests in order.
func (m *MockPlaylistServer) Requests() []PlaylistRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlaylistRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockPlaylistServer) handle(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	station := strings.TrimPrefix(r.URL.Path, "/api/station/")

	m.mu.Lock()
	m.requests = append(m.requests, PlaylistRequest{Station: station, Headers: r.Header.Clone()})
	if n := m.failures[station]; n > 0 {
		m.failures[station] = n - 1
		m.mu.Unlock()
		http.Error(w, "upstream unavailable", http.StatusInternalServerError)
		return
	}
	st, ok := m.stations[station]
	m.mu.Unlock()

	if !ok {
		http.Error(w, `{"error":"station not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if st.raw != "" {
		_, _ = w.Write([]byte(st.raw))
		return
	}
	_ = json.NewEncoder(w).Encode(buildStationBody(station, st))
}

func buildStationBody(station string, st mockStation) map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(st.items))
	for _, item := range st.items {
		artists := item.Artists
		if artists == nil {
			artists = []string{}
		}
		results = append(results, map[string]interface{}{
			"id":        item.ID,
			"timestamp": item.Timestamp,
			"track": map[string]interface{}{
				"title":   item.Title,
				"artists": artists,
			},
		})
	}
	return map[string]interface{}{
		"channel": map[string]interface{}{"id": station, "name": st.channel},
		"results": results,
	}
}
