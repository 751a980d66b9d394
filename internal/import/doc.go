// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

/*
Package reportimport loads historical plays from exported playlist reports.

Two CSV layouts are accepted, matched on header names case-insensitively:

	datetime,Artist,Song,Channel
	timestamp,artist,title,channel

Datetimes without an offset are local to the report's timezone
(America/New_York unless overridden) and are stored as UTC truncated to
the second. Channel values such as "SiriusXM: Laugh USA" keep only the
part after the last colon. Each row gets a random UUID as its play id, so
re-importing the same report relies on the (artist, second) check to skip
rows that are already stored.

Imports bypass first-play detection. Run "trackerctl first-plays backfill"
afterwards to derive first plays without sending notifications.
*/
package reportimport
