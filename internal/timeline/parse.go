// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package timeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("timeline: no header row")

// timeLayouts are the timestamp formats accepted in the _time column.
// The first two are what the capture and processing tools write.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Parse reads a sensor log with a header row and returns its records in
// file order. Cells are coerced to numbers where possible; anything else
// leaves the field NaN and is kept verbatim in Record.Raw.
func Parse(r io.Reader) ([]imu.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("timeline: read header: %w", err)
	}

	cols := make([]column, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		f, ok := imu.FieldByName(name)
		cols[i] = column{name: name, field: f, known: ok}
	}

	var records []imu.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("timeline: row %d: %w", len(records)+1, err)
		}
		records = append(records, decodeRow(cols, row))
	}
	return records, nil
}

type column struct {
	name  string
	field imu.Field
	known bool
}

func decodeRow(cols []column, row []string) imu.Record {
	rec := imu.NewRecord()
	for i, cell := range row {
		if i >= len(cols) {
			break
		}
		c := cols[i]
		cell = strings.TrimSpace(cell)
		if !c.known {
			keepRaw(&rec, c.name, cell)
			continue
		}
		v, ok := coerce(c.field, cell)
		if !ok {
			if cell != "" {
				keepRaw(&rec, c.name, cell)
			}
			continue
		}
		rec.Set(c.field, v)
	}
	return rec
}

func coerce(f imu.Field, cell string) (float64, bool) {
	if cell == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v, true
	}
	if f == imu.Time {
		if t, ok := parseTime(cell); ok {
			return float64(t.UnixNano()) / 1e9, true
		}
	}
	return 0, false
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func keepRaw(rec *imu.Record, name, value string) {
	if rec.Raw == nil {
		rec.Raw = make(map[string]string)
	}
	rec.Raw[name] = value
}
