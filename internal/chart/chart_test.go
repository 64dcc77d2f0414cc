package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/relabs-tech/inertial_replay/internal/imu"
	"github.com/relabs-tech/inertial_replay/internal/series"
)

func snapshotOf(recs ...imu.Record) series.Snapshot {
	acc := series.New()
	for _, r := range recs {
		acc.Append(r)
	}
	return acc.Snapshot()
}

func rec(t, ax, gx float64) imu.Record {
	r := imu.NewRecord()
	r.Time = t
	r.AccelX, r.AccelY, r.AccelZ = ax, ax/2, 1
	r.GyroX, r.GyroY, r.GyroZ = gx, 0, -gx
	return r
}

func TestEnabledCharts(t *testing.T) {
	var ids []string
	for _, s := range Enabled() {
		ids = append(ids, s.ID)
	}
	if strings.Join(ids, ",") != "accelerometer,gyroscope" {
		t.Errorf("enabled charts = %v", ids)
	}
	if q, ok := Lookup("quaternions"); !ok || q.Enabled {
		t.Errorf("quaternions chart = %+v, %v; want defined and disabled", q, ok)
	}
}

func TestBuildAccelerometer(t *testing.T) {
	spec, _ := Lookup("accelerometer")
	p := Build(spec, snapshotOf(rec(10, 0.5, 1), rec(11, 1.5, 2), rec(12.5, -1, 3)))

	if len(p.Data) != 3 {
		t.Fatalf("traces = %d, want 3", len(p.Data))
	}
	if p.Data[0].Name != "accel_x" || p.Data[2].Name != "accel_z" {
		t.Errorf("trace names = %q, %q", p.Data[0].Name, p.Data[2].Name)
	}
	if got := p.Data[0].Y[1]; got != 1.5 {
		t.Errorf("accel_x[1] = %v, want 1.5", got)
	}
	if p.Layout.XAxis.Title != "time" || p.Layout.YAxis.Title != "Acceleration (g)" {
		t.Errorf("axes = %+v", p.Layout)
	}

	if len(p.Layout.Shapes) != 2 {
		t.Fatalf("shapes = %d, want 2", len(p.Layout.Shapes))
	}
	for i, want := range []struct {
		y     Value
		color string
	}{{2, "red"}, {-2, "blue"}} {
		sh := p.Layout.Shapes[i]
		if sh.X0 != 10 || sh.X1 != 12.5 {
			t.Errorf("shape %d spans %v..%v, want 10..12.5", i, sh.X0, sh.X1)
		}
		if sh.Y0 != want.y || sh.Y1 != want.y || sh.Line.Color != want.color || sh.Line.Dash != "dash" {
			t.Errorf("shape %d = %+v", i, sh)
		}
	}
}

func TestBuildEmptyHasNoShapes(t *testing.T) {
	spec, _ := Lookup("gyroscope")
	p := Build(spec, series.New().Snapshot())
	if len(p.Layout.Shapes) != 0 {
		t.Errorf("shapes = %d, want 0", len(p.Layout.Shapes))
	}
	if len(p.Data) != 3 || len(p.Data[0].X) != 0 {
		t.Errorf("empty plot data = %+v", p.Data)
	}
}

func TestBuildAll(t *testing.T) {
	plots := BuildAll(snapshotOf(rec(0, 1, 1)))
	if len(plots) != 2 {
		t.Fatalf("plots = %d, want 2", len(plots))
	}
	if plots[1].Layout.Shapes[0].Y0 != 400 {
		t.Errorf("gyroscope upper threshold = %v, want 400", plots[1].Layout.Shapes[0].Y0)
	}
}

func TestValueMarshalsNaNAsNull(t *testing.T) {
	b, err := json.Marshal(Values([]float64{1.5, math.NaN(), math.Inf(1), -2}))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != "[1.5,null,null,-2]" {
		t.Errorf("Marshal() = %s", b)
	}
}

func TestValueUnmarshalNull(t *testing.T) {
	var vs []Value
	if err := json.Unmarshal([]byte(`[0.25,null]`), &vs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(vs) != 2 || vs[0] != 0.25 || !math.IsNaN(float64(vs[1])) {
		t.Errorf("Unmarshal() = %v", vs)
	}
}

func TestPlotJSONWithMalformedRecord(t *testing.T) {
	spec, _ := Lookup("accelerometer")
	p := Build(spec, snapshotOf(rec(0, 1, 1), imu.NewRecord()))
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(b), `"x":[0,null]`) {
		t.Errorf("json = %s", b)
	}
}

func TestRenderPNG(t *testing.T) {
	spec, _ := Lookup("accelerometer")
	var buf bytes.Buffer
	err := Render(&buf, spec, snapshotOf(rec(0, 0.5, 1), rec(1, 1, 2), rec(2, math.NaN(), 3)), Size{Width: 320, Height: 200}, false)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("image size = %v, want 320x200", b)
	}
}

func TestRenderSVGSinglePoint(t *testing.T) {
	spec, _ := Lookup("gyroscope")
	var buf bytes.Buffer
	if err := Render(&buf, spec, snapshotOf(rec(3, 0, 5)), DefaultSize, true); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Errorf("output is not svg: %.60q", buf.String())
	}
}

func TestRenderNoPoints(t *testing.T) {
	spec, _ := Lookup("accelerometer")
	err := Render(&bytes.Buffer{}, spec, series.New().Snapshot(), DefaultSize, false)
	if !errors.Is(err, ErrNoPoints) {
		t.Errorf("Render() error = %v, want ErrNoPoints", err)
	}
}
