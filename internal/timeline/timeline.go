// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package timeline

import (
	"io"
	"log"
	"sync"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// Timeline is an ordered, immutable-once-loaded sequence of records.
// A load either replaces the whole sequence or appends to it.
type Timeline struct {
	mu      sync.RWMutex
	records []imu.Record
}

// Replace discards the current records and installs recs.
func (t *Timeline) Replace(recs []imu.Record) {
	t.mu.Lock()
	t.records = recs
	t.mu.Unlock()
}

// Append adds recs after the current records.
func (t *Timeline) Append(recs []imu.Record) {
	t.mu.Lock()
	// Full slice expression so earlier Records() views never alias.
	t.records = append(t.records[:len(t.records):len(t.records)], recs...)
	t.mu.Unlock()
}

// Records returns the current sequence. The slice must not be modified.
func (t *Timeline) Records() []imu.Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.records
}

// Len returns the number of records.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// LoadFunc receives each successfully parsed batch of records.
type LoadFunc func(recs []imu.Record, appendMode bool)

// Source is the Row Source: it parses user-supplied logs, hands the
// records to the timeline and signals readiness after the first success.
type Source struct {
	timeline   *Timeline
	appendMode bool
	onLoad     LoadFunc

	readyOnce sync.Once
	ready     chan struct{}
}

// NewSource returns a Source feeding tl. With appendMode set, every load
// is concatenated to the existing records instead of replacing them.
func NewSource(tl *Timeline, appendMode bool) *Source {
	return &Source{
		timeline:   tl,
		appendMode: appendMode,
		ready:      make(chan struct{}),
	}
}

// OnLoad registers fn to be called after every successful load.
func (s *Source) OnLoad(fn LoadFunc) {
	s.onLoad = fn
}

// Ready is closed after the first successful load.
func (s *Source) Ready() <-chan struct{} {
	return s.ready
}

// IsReady reports whether a load has succeeded.
func (s *Source) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Load parses r. A parse failure is logged and returned; the timeline and
// the readiness state are left untouched.
func (s *Source) Load(r io.Reader) (int, error) {
	recs, err := Parse(r)
	if err != nil {
		log.Printf("timeline: error reading log: %v", err)
		return 0, err
	}
	return s.LoadRecords(recs), nil
}

// LoadRecords hands already parsed records over exactly as Load does.
func (s *Source) LoadRecords(recs []imu.Record) int {
	if s.appendMode {
		s.timeline.Append(recs)
	} else {
		s.timeline.Replace(recs)
	}
	log.Printf("timeline: log processed (%d rows, total %d)", len(recs), s.timeline.Len())

	if s.onLoad != nil {
		s.onLoad(recs, s.appendMode)
	}
	s.readyOnce.Do(func() { close(s.ready) })
	return len(recs)
}
