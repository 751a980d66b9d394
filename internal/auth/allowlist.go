// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package auth

import "strings"

// AllowList is a case-insensitive set of email addresses.
type AllowList struct {
	emails map[string]struct{}
}

// NewAllowList trims and lowercases each address; blanks are dropped.
func NewAllowList(emails []string) *AllowList {
	l := &AllowList{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			l.emails[e] = struct{}{}
		}
	}
	return l
}

// Contains reports whether email is on the list.
func (l *AllowList) Contains(email string) bool {
	_, ok := l.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Len returns the number of distinct addresses.
func (l *AllowList) Len() int {
	return len(l.emails)
}
