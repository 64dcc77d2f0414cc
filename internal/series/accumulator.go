// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package series accumulates visited records into parallel chart series.
package series

import (
	"slices"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// Accumulator holds the ten channel buffers and the time buffer. All
// eleven always have the same length. It is owned by one goroutine.
type Accumulator struct {
	channels [10][]float64
	time     []float64
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

// Append pushes one value of rec onto every buffer, in imu.SeriesFields
// order. There is no deduplication.
func (a *Accumulator) Append(rec imu.Record) {
	for i, f := range imu.SeriesFields {
		a.channels[i] = append(a.channels[i], rec.Value(f))
	}
	a.time = append(a.time, rec.Time)
}

// Len is the number of records appended so far.
func (a *Accumulator) Len() int {
	return len(a.time)
}

// Reset empties every buffer. Only called when a new timeline replaces
// the old one.
func (a *Accumulator) Reset() {
	for i := range a.channels {
		a.channels[i] = nil
	}
	a.time = nil
}

// Snapshot copies the current buffers.
func (a *Accumulator) Snapshot() Snapshot {
	s := Snapshot{Time: slices.Clone(a.time)}
	for i := range a.channels {
		s.channels[i] = slices.Clone(a.channels[i])
	}
	return s
}

// Snapshot is a read-only copy of the accumulated series.
type Snapshot struct {
	Time     []float64
	channels [10][]float64
}

// Len is the number of points in every series.
func (s Snapshot) Len() int {
	return len(s.Time)
}

// Series returns the buffer of field f, or nil for a field that is not
// charted.
func (s Snapshot) Series(f imu.Field) []float64 {
	if f == imu.Time {
		return s.Time
	}
	for i, sf := range imu.SeriesFields {
		if sf == f {
			return s.channels[i]
		}
	}
	return nil
}

// Map returns every series keyed by column name, time included.
func (s Snapshot) Map() map[string][]float64 {
	m := make(map[string][]float64, len(imu.SeriesFields)+1)
	for i, f := range imu.SeriesFields {
		m[f.String()] = s.channels[i]
	}
	m[imu.Time.String()] = s.Time
	return m
}
