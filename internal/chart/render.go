package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/relabs-tech/inertial_replay/internal/series"
)

// ErrNoPoints is returned when there is nothing finite to draw.
var ErrNoPoints = errors.New("chart: no points to draw")

// Size is the output size of a rendered chart in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the browser chart aspect.
var DefaultSize = Size{Width: 1024, Height: 400}

var traceColors = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
}

var thresholdColors = map[string]drawing.Color{
	"red":  drawing.ColorRed,
	"blue": drawing.ColorBlue,
}

// RenderPNG draws plot as a PNG with a point-count caption in the corner.
func RenderPNG(w io.Writer, p Plot, size Size) error {
	ch, err := newChart(p, size)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return fmt.Errorf("chart %s: render png: %w", p.ID, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return fmt.Errorf("chart %s: decode png: %w", p.ID, err)
	}
	return png.Encode(w, drawCaption(img, caption(p)))
}

// RenderSVG draws plot as an SVG document.
func RenderSVG(w io.Writer, p Plot, size Size) error {
	ch, err := newChart(p, size)
	if err != nil {
		return err
	}
	if err := ch.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("chart %s: render svg: %w", p.ID, err)
	}
	return nil
}

// Render builds and draws the chart spec from snap in one step.
func Render(w io.Writer, spec Spec, snap series.Snapshot, size Size, svg bool) error {
	p := Build(spec, snap)
	if svg {
		return RenderSVG(w, p, size)
	}
	return RenderPNG(w, p, size)
}

func newChart(p Plot, size Size) (*gochart.Chart, error) {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}

	xr, yr := newRange(), newRange()
	var out []gochart.Series
	for i, tr := range p.Data {
		xs, ys := finitePoints(tr.X, tr.Y)
		if len(xs) == 0 {
			continue
		}
		for j := range xs {
			xr.add(xs[j])
			yr.add(ys[j])
		}
		col := traceColors[i%len(traceColors)]
		out = append(out, gochart.ContinuousSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: col,
				StrokeWidth: 1.5,
				DotColor:    col,
				DotWidth:    2,
			},
		})
	}
	if len(out) == 0 {
		return nil, ErrNoPoints
	}

	for _, sh := range p.Layout.Shapes {
		y := float64(sh.Y0)
		yr.add(y)
		col, ok := thresholdColors[sh.Line.Color]
		if !ok {
			col = drawing.ColorFromHex(sh.Line.Color)
		}
		out = append(out, gochart.ContinuousSeries{
			Name:    fmt.Sprintf("%g", y),
			XValues: []float64{float64(sh.X0), float64(sh.X1)},
			YValues: []float64{y, y},
			Style: gochart.Style{
				StrokeColor:     col,
				StrokeWidth:     float64(sh.Line.Width),
				StrokeDashArray: []float64{5, 5},
			},
		})
	}

	ch := &gochart.Chart{
		Title:      p.Layout.Title,
		Width:      size.Width,
		Height:     size.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: p.Layout.XAxis.Title, Range: xr.padded(0)},
		YAxis:      gochart.YAxis{Name: p.Layout.YAxis.Title, Range: yr.padded(0.05)},
		Series:     out,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}
	return ch, nil
}

// finitePoints drops points where either coordinate is NaN or infinite.
func finitePoints(x, y []Value) ([]float64, []float64) {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		xv, yv := float64(x[i]), float64(y[i])
		if !finite(xv) || !finite(yv) {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}
	return xs, ys
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

type valueRange struct {
	min, max float64
}

func newRange() *valueRange {
	return &valueRange{min: math.Inf(1), max: math.Inf(-1)}
}

func (r *valueRange) add(v float64) {
	if !finite(v) {
		return
	}
	r.min = math.Min(r.min, v)
	r.max = math.Max(r.max, v)
}

// padded widens the range by frac of its span. A degenerate range (a
// single point) gets one unit either side since go-chart rejects zero
// width ranges.
func (r *valueRange) padded(frac float64) *gochart.ContinuousRange {
	lo, hi := r.min, r.max
	if hi-lo == 0 {
		return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * frac
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func caption(p Plot) string {
	n := 0
	if len(p.Data) > 0 {
		n = len(p.Data[0].X)
	}
	return fmt.Sprintf("%s: %d points", p.ID, n)
}

// drawCaption writes text at the top-left corner of img.
func drawCaption(img image.Image, text string) image.Image {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(color.RGBA{R: 80, G: 80, B: 80, A: 255}),
		Face: face,
		Dot:  fixed.P(b.Min.X+8, b.Min.Y+face.Metrics().Ascent.Ceil()+4),
	}
	dr.DrawString(text)
	return rgba
}
