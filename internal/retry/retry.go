// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package retry provides the bounded retry-with-backoff used by every startup
// connection path (store open, schema and index creation).
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tomtom215/siriustracker/internal/config"
	"github.com/tomtom215/siriustracker/internal/logging"
)

// Policy describes how many attempts to make and how long to wait between them.
// Waits grow geometrically: InitialInterval, InitialInterval*Multiplier, ...
// capped at MaxInterval. There is no jitter so the schedule is predictable
// (5s, 10s, 20s with the defaults).
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
}

// DefaultPolicy returns 3 attempts starting at 5s and doubling.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 5 * time.Second,
		Multiplier:      2,
		MaxInterval:     20 * time.Second,
	}
}

// FromConfig converts the retry section of the application config.
func FromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: cfg.InitialInterval,
		Multiplier:      cfg.Multiplier,
		MaxInterval:     cfg.MaxInterval,
	}
}

// Permanent marks err as not worth retrying; Do returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.Multiplier = p.Multiplier
	exp.MaxInterval = p.MaxInterval
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	// WithMaxRetries counts retries, not attempts.
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Do runs fn until it succeeds, returns a Permanent error, the attempts are
// exhausted, or ctx is canceled. Waits between attempts are cancellable.
// Each failed attempt is logged with the operation name.
func Do(ctx context.Context, p Policy, operation string, fn func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		attempt++
		return fn(ctx)
	}

	notify := func(err error, wait time.Duration) {
		logging.Warn().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt).
			Int("max_attempts", p.MaxAttempts).
			Dur("retry_in", wait).
			Msg("Attempt failed, retrying")
	}

	result, err := backoff.RetryNotifyWithData(op, p.backOff(ctx), notify)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%s: %w", operation, ctxErr)
		}
		return result, fmt.Errorf("%s failed after %d attempts: %w", operation, attempt, err)
	}
	return result, nil
}
