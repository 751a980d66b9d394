// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// scope is the set of log fields carried in a context. It is copied on
// every With call, never mutated in place.
type scope struct {
	requestID     string
	correlationID string
	station       string
}

type scopeKey struct{}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, update func(*scope)) context.Context {
	s := scopeFrom(ctx)
	update(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// NewRequestID returns a full UUID for an API request.
func NewRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID tags ctx with the API request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.requestID = id })
}

// RequestIDFromContext returns the request ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// ContextWithNewCorrelationID starts a new unit of work: one API request or
// one poll pass. The ID is the first 8 characters of a UUID, which is enough
// to group the lines of a single pass.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return withCorrelationID(ctx, uuid.New().String()[:8])
}

func withCorrelationID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.correlationID = id })
}

// CorrelationIDFromContext returns the correlation ID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

// ContextWithStation tags ctx with the station being polled.
func ContextWithStation(ctx context.Context, station string) context.Context {
	return withScope(ctx, func(s *scope) { s.station = station })
}

// Ctx returns the global logger with the context's request, correlation
// and station fields attached.
//
//	logging.Ctx(ctx).Info().Int("received", n).Msg("Tracks received")
func Ctx(ctx context.Context) *zerolog.Logger {
	s := scopeFrom(ctx)
	logCtx := Logger().With()

	if s.correlationID != "" {
		logCtx = logCtx.Str("correlation_id", s.correlationID)
	}
	if s.requestID != "" {
		logCtx = logCtx.Str("request_id", s.requestID)
	}
	if s.station != "" {
		logCtx = logCtx.Str("station", s.station)
	}

	l := logCtx.Logger()
	return &l
}
