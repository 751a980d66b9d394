// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

// Package query builds parameterized SQL WHERE clauses for the database
// package.
//
// Filters with empty values are skipped, so optional query parameters can
// be passed straight through:
//
//	wb := query.NewWhereBuilder()
//	wb.AddTimeRange("timestamp", filter.Start, filter.End)
//	wb.AddEqualFold("artist", filter.Artist)
//	wb.AddIn("channel", filter.Channels)
//	whereClause, args := wb.BuildWithPrefix()
//	rows, err := conn.QueryContext(ctx, "SELECT ... FROM plays "+whereClause, args...)
package query
