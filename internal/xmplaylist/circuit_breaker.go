// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package xmplaylist

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/siriustracker/internal/logging"
	"github.com/tomtom215/siriustracker/internal/metrics"
)

// BreakerName labels the breaker in logs and metrics.
const BreakerName = "xmplaylist-api"

// CircuitBreakerClient wraps a Fetcher with a circuit breaker so a failing
// provider is not hammered every poll.
//
// Configuration:
//   - opens at >= 60% failures with at least 10 requests in the window
//   - stays open for 60s, then allows 3 half-open probes
//   - 4xx responses other than 429 are successes for the breaker: the
//     provider answered, the request was wrong
type CircuitBreakerClient struct {
	client Fetcher
	cb     *gobreaker.CircuitBreaker[*StationResponse]
	name   string
}

// BreakerSettings tunes the breaker; zero values use the defaults above.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
	HalfOpenMax  uint32
	Interval     time.Duration
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 60 * time.Second
	}
	if s.HalfOpenMax == 0 {
		s.HalfOpenMax = 3
	}
	if s.Interval == 0 {
		s.Interval = 10 * time.Minute
	}
	return s
}

// NewCircuitBreakerClient wraps client with default breaker settings.
func NewCircuitBreakerClient(client Fetcher) *CircuitBreakerClient {
	return NewCircuitBreakerClientWithSettings(client, BreakerSettings{})
}

// NewCircuitBreakerClientWithSettings wraps client with custom breaker settings.
func NewCircuitBreakerClientWithSettings(client Fetcher, settings BreakerSettings) *CircuitBreakerClient {
	s := settings.withDefaults()
	name := BreakerName

	metrics.SetCircuitBreakerState(name, 0)

	cb := gobreaker.NewCircuitBreaker[*StationResponse](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.HalfOpenMax,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRatio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Uint32("requests", counts.Requests).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err) || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.SetCircuitBreakerState(name, stateToFloat(to))
			metrics.RecordCircuitBreakerTransition(name, fromStr, toStr)
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: name}
}

// FetchStation fetches through the breaker. When the circuit is open it
// fails fast with gobreaker.ErrOpenState.
func (c *CircuitBreakerClient) FetchStation(ctx context.Context, station string) (*StationResponse, error) {
	result, err := c.cb.Execute(func() (*StationResponse, error) {
		return c.client.FetchStation(ctx, station)
	})

	switch {
	case err == nil:
		metrics.RecordCircuitBreakerRequest(c.name, "success")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerRequest(c.name, "rejected")
	default:
		metrics.RecordCircuitBreakerRequest(c.name, "failure")
	}
	return result, err
}

// State returns the breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.cb.State()
}

// IsOpen reports whether err means the breaker rejected the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
