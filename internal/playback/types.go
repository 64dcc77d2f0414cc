package playback

import (
	"fmt"

	"github.com/relabs-tech/inertial_replay/internal/imu"
	"github.com/relabs-tech/inertial_replay/internal/orientation"
	"github.com/relabs-tech/inertial_replay/internal/series"
)

// Phase is the scheduler state.
type Phase int

const (
	// Idle: no data, model or start signal yet, or nothing visited.
	Idle Phase = iota
	// AwaitingApply: the record at the cursor is applied on the next tick.
	AwaitingApply
	// AwaitingDelay: waiting for elapsed time to reach the pacing delay.
	AwaitingDelay
)

var phaseNames = [...]string{"idle", "awaiting_apply", "awaiting_delay"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Cursor is the playback position.
type Cursor struct {
	Row               int     `json:"row"`
	Phase             Phase   `json:"phase"`
	ElapsedSinceApply float64 `json:"elapsed_since_apply"` // seconds
}

// NewCursor returns the cursor at the start of a pass.
func NewCursor() Cursor {
	return Cursor{Row: 0, Phase: AwaitingApply}
}

// Progress is what the progress bar shows.
type Progress struct {
	Row      int     `json:"row"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
	Percent  int     `json:"percent"`
}

func newProgress(row, total int) Progress {
	f := float64(row) / float64(total)
	return Progress{Row: row, Total: total, Fraction: f, Percent: int(f*100 + 0.5)}
}

// Advance describes one accepted advance.
type Advance struct {
	Row      int               // index of the applied record
	Pass     int               // completed passes before this one
	Record   imu.Record        // the applied record
	Scene    orientation.Scene // scene after applying it
	Progress Progress
}

// RenderReason says why a frame is rendered.
type RenderReason int

const (
	// RenderContinuous is the per-tick redraw, independent of pacing.
	RenderContinuous RenderReason = iota
	// RenderPaced follows a completed pacing delay.
	RenderPaced
)

func (r RenderReason) String() string {
	if r == RenderPaced {
		return "paced"
	}
	return "continuous"
}

// Renderer is the 3D view.
type Renderer interface {
	// Apply receives the new scene and progress of an accepted advance.
	Apply(a Advance)
	// Render draws the current scene.
	Render(reason RenderReason, scene orientation.Scene)
}

// ChartRenderer redraws the charts from the full accumulated series.
type ChartRenderer interface {
	Redraw(s series.Snapshot)
}

// Renderers fans every call out to each renderer in order.
type Renderers []Renderer

func (rs Renderers) Apply(a Advance) {
	for _, r := range rs {
		r.Apply(a)
	}
}

func (rs Renderers) Render(reason RenderReason, scene orientation.Scene) {
	for _, r := range rs {
		r.Render(reason, scene)
	}
}

// ChartRenderers fans redraws out to each chart renderer.
type ChartRenderers []ChartRenderer

func (cs ChartRenderers) Redraw(s series.Snapshot) {
	for _, c := range cs {
		c.Redraw(s)
	}
}

// Status is a snapshot of the scheduler for status endpoints.
type Status struct {
	State      Phase    `json:"state"`
	Cursor     Cursor   `json:"cursor"`
	Total      int      `json:"total"`
	Pass       int      `json:"pass"`
	Advances   int      `json:"advances"`
	Points     int      `json:"points"`
	Started    bool     `json:"started"`
	ModelReady bool     `json:"model_ready"`
	Progress   Progress `json:"progress"`
}
