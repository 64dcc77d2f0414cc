package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/relabs-tech/inertial_replay/internal/series"
)

// Value is a float that encodes NaN and ±Inf as JSON null, so malformed
// records still reach the client.
type Value float64

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// UnmarshalJSON reads null back as NaN.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("chart: value %s: %w", b, err)
	}
	*v = Value(f)
	return nil
}

// Values converts a float slice for the wire.
func Values(fs []float64) []Value {
	out := make([]Value, len(fs))
	for i, f := range fs {
		out[i] = Value(f)
	}
	return out
}

// Trace is one line of a plot.
type Trace struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	X    []Value `json:"x"`
	Y    []Value `json:"y"`
}

// Line styles a shape.
type Line struct {
	Color string `json:"color"`
	Width int    `json:"width"`
	Dash  string `json:"dash"`
}

// Shape is a reference line spanning the plotted time range.
type Shape struct {
	Type string `json:"type"`
	X0   Value  `json:"x0"`
	X1   Value  `json:"x1"`
	Y0   Value  `json:"y0"`
	Y1   Value  `json:"y1"`
	Line Line   `json:"line"`
}

// Axis carries an axis title.
type Axis struct {
	Title string `json:"title"`
}

// Layout is the non-data part of a plot.
type Layout struct {
	Title  string  `json:"title"`
	XAxis  Axis    `json:"xaxis"`
	YAxis  Axis    `json:"yaxis"`
	Shapes []Shape `json:"shapes,omitempty"`
}

// Plot is a complete chart, replaced wholesale on every redraw.
type Plot struct {
	ID     string  `json:"id"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Build makes the plot of spec from snap. Threshold lines run from the
// first to the last time value; with no points they are omitted.
func Build(spec Spec, snap series.Snapshot) Plot {
	p := Plot{
		ID: spec.ID,
		Layout: Layout{
			Title: spec.Title,
			XAxis: Axis{Title: "time"},
			YAxis: Axis{Title: spec.YAxis},
		},
	}

	x := Values(snap.Time)
	for _, f := range spec.Fields {
		p.Data = append(p.Data, Trace{
			Name: f.String(),
			Type: "scatter",
			X:    x,
			Y:    Values(snap.Series(f)),
		})
	}

	if n := snap.Len(); n > 0 {
		x0, x1 := Value(snap.Time[0]), Value(snap.Time[n-1])
		for _, th := range spec.Thresholds {
			p.Layout.Shapes = append(p.Layout.Shapes, Shape{
				Type: "line",
				X0:   x0,
				X1:   x1,
				Y0:   Value(th.Y),
				Y1:   Value(th.Y),
				Line: Line{Color: th.Color, Width: 1, Dash: "dash"},
			})
		}
	}
	return p
}

// BuildAll builds every enabled chart.
func BuildAll(snap series.Snapshot) []Plot {
	specs := Enabled()
	plots := make([]Plot, 0, len(specs))
	for _, s := range specs {
		plots = append(plots, Build(s, snap))
	}
	return plots
}
