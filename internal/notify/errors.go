// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package notify

import (
	"errors"
	"net/textproto"
	"strings"
)

// Error codes attached to failed deliveries in logs.
const (
	ErrorCodeAuthFailed        = "auth_failed"
	ErrorCodeConnectionFailed  = "connection_failed"
	ErrorCodeTimeout           = "timeout"
	ErrorCodeRecipientNotFound = "recipient_not_found"
	ErrorCodeRateLimited       = "rate_limited"
	ErrorCodeServerError       = "server_error"
	ErrorCodeUnknown           = "unknown"
)

// classifyEmailError maps an SMTP failure to an error code. Protocol
// replies are classified by status code first, then by message text.
func classifyEmailError(err error) string {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch {
		case protoErr.Code == 535 || protoErr.Code == 534:
			return ErrorCodeAuthFailed
		case protoErr.Code == 550 || protoErr.Code == 551 || protoErr.Code == 553:
			return ErrorCodeRecipientNotFound
		case protoErr.Code == 421 || protoErr.Code == 450 || protoErr.Code == 451 || protoErr.Code == 452:
			return ErrorCodeServerError
		}
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "authentication") || strings.Contains(errStr, "auth"):
		return ErrorCodeAuthFailed
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return ErrorCodeTimeout
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "connect"):
		return ErrorCodeConnectionFailed
	case strings.Contains(errStr, "recipient") || strings.Contains(errStr, "mailbox"):
		return ErrorCodeRecipientNotFound
	case strings.Contains(errStr, "rate") || strings.Contains(errStr, "limit"):
		return ErrorCodeRateLimited
	}

	return ErrorCodeUnknown
}

// isTransientEmailError reports whether a later attempt could succeed.
func isTransientEmailError(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeRateLimited, ErrorCodeServerError:
		return true
	default:
		return false
	}
}
