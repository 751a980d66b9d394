// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
//
// Column names are interpolated into the SQL and must be constants from
// the caller, never user input. Values are always bound as arguments.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddTimeRange("timestamp", &start, &end)
//	wb.AddEqualFold("artist", "Jane Doe")
//	whereClause, args := wb.Build()
//	// timestamp >= ? AND timestamp <= ? AND lower(artist) = lower(?)
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
// This is useful for custom conditions not covered by helper methods.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddTimeRange adds inclusive start and/or end bounds on column.
// Nil bounds are skipped. Times are bound in UTC.
func (wb *WhereBuilder) AddTimeRange(column string, start, end *time.Time) *WhereBuilder {
	if start != nil {
		wb.clauses = append(wb.clauses, column+" >= ?")
		wb.args = append(wb.args, start.UTC())
	}
	if end != nil {
		wb.clauses = append(wb.clauses, column+" <= ?")
		wb.args = append(wb.args, end.UTC())
	}
	return wb
}

// AddIn adds "column IN (?, ...)". An empty slice is skipped.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// AddEqualFold adds a case-insensitive equality filter. An empty value is skipped.
func (wb *WhereBuilder) AddEqualFold(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("lower(%s) = lower(?)", column))
	wb.args = append(wb.args, value)
	return wb
}

// AddContainsFold adds a case-insensitive substring filter. An empty value
// is skipped. LIKE wildcards in value are matched literally.
func (wb *WhereBuilder) AddContainsFold(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
	wb.clauses = append(wb.clauses, fmt.Sprintf(`%s ILIKE ? ESCAPE '\'`, column))
	wb.args = append(wb.args, "%"+escaped+"%")
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
