// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package reportimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("report is missing a required column")

// columnAliases maps each field to the header names that may carry it.
var columnAliases = map[string][]string{
	"datetime": {"datetime", "timestamp"},
	"artist":   {"artist"},
	"title":    {"song", "title"},
	"channel":  {"channel"},
}

// Reader streams Records from a CSV report.
type Reader struct {
	csv  *csv.Reader
	cols map[string]int
	line int
}

// NewReader reads the header row and resolves column positions.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[name] = i
	}

	cols := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				cols[field] = i
				break
			}
		}
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, field)
		}
	}

	return &Reader{csv: cr, cols: cols, line: 1}, nil
}

// ReadBatch returns up to n records. It returns io.EOF once the report is
// exhausted and no records were read.
func (r *Reader) ReadBatch(n int) ([]Record, error) {
	batch := make([]Record, 0, n)
	for len(batch) < n {
		fields, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		r.line++
		if err != nil {
			return batch, fmt.Errorf("line %d: %w", r.line, err)
		}
		if isBlank(fields) {
			continue
		}
		batch = append(batch, Record{
			Line:     r.line,
			DateTime: r.field(fields, "datetime"),
			Artist:   r.field(fields, "artist"),
			Title:    r.field(fields, "title"),
			Channel:  r.field(fields, "channel"),
		})
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

func (r *Reader) field(fields []string, name string) string {
	i := r.cols[name]
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
