// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package audit

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/siriustracker/internal/logging"
)

// EventType categorizes audit events.
type EventType string

const (
	// Dashboard sign-in
	EventTypeSignInAllowed EventType = "auth.signin_allowed"
	EventTypeSignInDenied  EventType = "auth.signin_denied"
	EventTypeSignInFailed  EventType = "auth.signin_failed"

	// Machine endpoints
	EventTypeTokenRejected EventType = "auth.token_rejected"
	EventTypeIngest        EventType = "data.ingest"

	// Administration
	EventTypeCatalogReplaced  EventType = "admin.catalog_replaced"
	EventTypeCatalogReloaded  EventType = "admin.catalog_reloaded"
	EventTypeStationsReplaced EventType = "admin.stations_replaced"
	EventTypePollTriggered    EventType = "admin.poll_triggered"
)

// Outcome is the result of the audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeDenied  Outcome = "denied"
)

// Event is one audit record.
type Event struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Type        EventType       `json:"type"`
	Outcome     Outcome         `json:"outcome"`
	Actor       string          `json:"actor,omitempty"`
	SourceIP    string          `json:"source_ip,omitempty"`
	Action      string          `json:"action,omitempty"`
	Description string          `json:"description,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
}

// NewEvent starts an event for an HTTP request. Action is "METHOD /path",
// the source IP comes from RemoteAddr (already rewritten by RealIP) and the
// request ID from the logging context.
func NewEvent(r *http.Request, eventType EventType, outcome Outcome) *Event {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Outcome:   outcome,
		SourceIP:  ip,
		Action:    r.Method + " " + r.URL.Path,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
}

// WithActor sets the actor and returns the event.
func (e *Event) WithActor(actor string) *Event {
	e.Actor = actor
	return e
}

// WithDescription sets the description and returns the event.
func (e *Event) WithDescription(description string) *Event {
	e.Description = description
	return e
}

// WithMetadata attaches v as JSON. A value that cannot be marshaled is
// dropped rather than failing the event.
func (e *Event) WithMetadata(v any) *Event {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Warn().Err(err).Str("type", string(e.Type)).Msg("Dropping unmarshalable audit metadata")
		return e
	}
	e.Metadata = data
	return e
}

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
)

// QueryFilter narrows Query. Zero fields are ignored.
type QueryFilter struct {
	Types    []EventType
	Outcomes []Outcome

	// Actor matches case-insensitively.
	Actor string

	Since *time.Time
	Until *time.Time

	// Limit defaults to 100 and is capped at 1000.
	Limit int
}

func (f QueryFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultQueryLimit
	case f.Limit > maxQueryLimit:
		return maxQueryLimit
	default:
		return f.Limit
	}
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error

	// Query returns matching events, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)

	// Delete removes events older than the cutoff and reports how many went.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}
