// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package playback

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/inertial_replay/internal/imu"
	"github.com/relabs-tech/inertial_replay/internal/orientation"
	"github.com/relabs-tech/inertial_replay/internal/series"
	"github.com/relabs-tech/inertial_replay/internal/timeline"
)

// DefaultFrameInterval approximates a 60 Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Options configure a Scheduler.
type Options struct {
	Timeline *timeline.Timeline
	Renderer Renderer
	Charts   ChartRenderer // optional

	// VisitLastRow makes a pass cover every record and pace each one by
	// its own time_diff. When false the cursor wraps after consuming the
	// second-to-last record and waits on the record after next, which is
	// how recorded logs have always been replayed.
	VisitLastRow bool

	FrameInterval time.Duration
}

// Scheduler is the playback loop. One goroutine (Run, or a test calling
// Tick) owns the cursor, scene and series; other goroutines talk to it
// through Start, SetModelReady and Load, which are applied at the next
// tick. Ticks replay the records taken from the timeline by the last Load,
// so a timeline change is seen together with its cursor reset.
type Scheduler struct {
	timeline      *timeline.Timeline
	renderer      Renderer
	charts        ChartRenderer
	visitLast     bool
	frameInterval time.Duration

	cmds chan func()

	recs       []imu.Record
	acc        *series.Accumulator
	cursor     Cursor
	scene      orientation.Scene
	started    bool
	modelReady bool
	pass       int
	advances   int
	progress   Progress // as of the last advance

	mu     sync.RWMutex
	status Status
}

// NewScheduler returns a Scheduler at row 0, awaiting its first apply.
func NewScheduler(opts Options) *Scheduler {
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	tl := opts.Timeline
	if tl == nil {
		tl = &timeline.Timeline{}
	}
	s := &Scheduler{
		timeline:      tl,
		renderer:      opts.Renderer,
		charts:        opts.Charts,
		visitLast:     opts.VisitLastRow,
		frameInterval: interval,
		cmds:          make(chan func(), 64),
		recs:          tl.Records(),
		acc:           series.New(),
		cursor:        NewCursor(),
		scene:         orientation.NewScene(),
	}
	s.publishStatus(len(s.recs))
	return s
}

// Start enables advancing. Calling it again has no effect.
func (s *Scheduler) Start() {
	s.cmds <- func() {
		if !s.started {
			log.Println("replay: playback started")
		}
		s.started = true
	}
}

// SetModelReady records whether the 3D model has been loaded.
func (s *Scheduler) SetModelReady(ready bool) {
	s.cmds <- func() { s.modelReady = ready }
}

// Load tells the scheduler the timeline received recs. The scheduler
// switches to the timeline's records at the next tick. A replacement
// restarts playback at row 0 with empty series; an append keeps the cursor
// and the series. It has the timeline.LoadFunc signature so a Source can
// call it directly.
func (s *Scheduler) Load(_ []imu.Record, appendMode bool) {
	s.cmds <- func() {
		s.recs = s.timeline.Records()
		if appendMode {
			return
		}
		s.cursor = NewCursor()
		s.acc.Reset()
		s.pass = 0
		s.progress = Progress{}
		if s.charts != nil {
			s.charts.Redraw(s.acc.Snapshot())
		}
	}
}

// Run ticks the scheduler every frame interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	var lastTick time.Time
	for {
		select {
		case <-ctx.Done():
			log.Println("replay: playback loop stopped")
			return ctx.Err()
		case t := <-ticker.C:
			dt := s.frameInterval
			if !lastTick.IsZero() {
				dt = t.Sub(lastTick)
			}
			lastTick = t
			s.Tick(dt)
		}
	}
}

// Tick performs one scheduling step; dt is the wall time since the
// previous tick. The scene is redrawn on every tick, whatever the phase.
func (s *Scheduler) Tick(dt time.Duration) {
	s.drain()

	if s.renderer != nil {
		s.renderer.Render(RenderContinuous, s.scene)
	}

	recs := s.recs
	n := len(recs)
	defer s.publishStatus(n)

	if !s.ready(n) {
		return
	}

	if s.cursor.Phase == AwaitingApply && s.cursor.Row < n {
		s.advance(recs)
	}

	s.cursor.ElapsedSinceApply += dt.Seconds()

	if s.cursor.Phase == AwaitingDelay {
		next, ok := s.pacingRow(n)
		// NaN time_diff never compares true, so playback holds
		if ok && s.cursor.ElapsedSinceApply >= recs[next].TimeDiff {
			s.renderer.Render(RenderPaced, s.scene)
			s.cursor.ElapsedSinceApply = 0
			s.cursor.Phase = AwaitingApply
		}
	}
}

func (s *Scheduler) drain() {
	for {
		select {
		case fn := <-s.cmds:
			fn()
		default:
			return
		}
	}
}

func (s *Scheduler) ready(n int) bool {
	return s.started && s.modelReady && s.renderer != nil && n > 0
}

func (s *Scheduler) advance(recs []imu.Record) {
	n := len(recs)
	row := s.cursor.Row
	rec := recs[row]

	s.scene = orientation.Apply(s.scene, rec)
	s.acc.Append(rec)
	s.advances++

	s.cursor.Row++
	s.cursor.Phase = AwaitingDelay
	s.progress = newProgress(s.cursor.Row, n)

	s.renderer.Apply(Advance{
		Row:      row,
		Pass:     s.pass,
		Record:   rec,
		Scene:    s.scene,
		Progress: s.progress,
	})
	if s.charts != nil {
		s.charts.Redraw(s.acc.Snapshot())
	}

	if s.visitLast {
		if s.cursor.Row == n {
			s.wrap()
		}
		return
	}
	if s.cursor.Row == n-1 {
		s.wrap()
		s.cursor.Phase = AwaitingApply
	}
}

// wrapLogEvery thins the wrap log for short logs that loop many times a
// second.
const wrapLogEvery = 1000

func (s *Scheduler) wrap() {
	s.cursor.Row = 0
	s.pass++
	if s.pass == 1 || s.pass%wrapLogEvery == 0 {
		log.Printf("replay: pass %d complete, restarting from row 0", s.pass)
	}
}

// pacingRow is the record whose time_diff gates the next apply.
func (s *Scheduler) pacingRow(n int) (int, bool) {
	if s.visitLast {
		return s.cursor.Row, s.cursor.Row < n
	}
	next := s.cursor.Row + 1
	return next, next < n
}

func (s *Scheduler) publishStatus(n int) {
	st := Status{
		State:      s.cursor.Phase,
		Cursor:     s.cursor,
		Total:      n,
		Pass:       s.pass,
		Advances:   s.advances,
		Points:     s.acc.Len(),
		Started:    s.started,
		ModelReady: s.modelReady,
	}
	if !s.ready(n) || s.advances == 0 {
		st.State = Idle
	}
	if n > 0 && s.advances > 0 {
		// the cursor is back at 0 after a wrap; report the row just played
		st.Progress = s.progress
		if st.Progress.Total != n {
			st.Progress = newProgress(s.progress.Row, n)
		}
	}

	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Status returns the state as of the last tick.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
