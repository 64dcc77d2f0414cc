package timeline

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

const sampleLog = `_time,accel_x,accel_y,accel_z,gyro_x,gyro_y,gyro_z,quat_x,quat_y,quat_z,quat_w,time_diff
0,0.1,0.2,1.0,1,2,3,0,0,0,1,0
1,0.3,0.4,0.9,4,5,6,1,0,0,0,1
2,0.5,0.6,0.8,7,8,9,0,1,0,0,2
`

func TestParse(t *testing.T) {
	recs, err := Parse(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}

	r := recs[1]
	if r.AccelX != 0.3 || r.GyroZ != 6 || r.QuatX != 1 || r.QuatW != 0 {
		t.Errorf("record 1 = %+v", r)
	}
	if r.TimeDiff != 1 || r.Time != 1 {
		t.Errorf("record 1 timing = (%v, %v), want (1, 1)", r.TimeDiff, r.Time)
	}
	if recs[2].TimeDiff != 2 {
		t.Errorf("record 2 time_diff = %v, want 2", recs[2].TimeDiff)
	}
}

func TestParseNoHeader(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if !errors.Is(err, ErrNoHeader) {
		t.Fatalf("err = %v, want ErrNoHeader", err)
	}
}

func TestParseMalformedQuoting(t *testing.T) {
	_, err := Parse(strings.NewReader("_time,quat_x\n1,a\"b\n"))
	if err == nil {
		t.Fatal("expected error for bare quote")
	}
}

func TestParseNonNumericAndMissing(t *testing.T) {
	in := "quat_x,quat_y,packet_id,accel_x\nabc,0.5,17\n"
	recs, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	r := recs[0]
	if !math.IsNaN(r.QuatX) {
		t.Errorf("QuatX = %v, want NaN", r.QuatX)
	}
	if r.Raw["quat_x"] != "abc" {
		t.Errorf("Raw[quat_x] = %q, want abc", r.Raw["quat_x"])
	}
	if r.QuatY != 0.5 {
		t.Errorf("QuatY = %v, want 0.5", r.QuatY)
	}
	if r.Raw["packet_id"] != "17" {
		t.Errorf("Raw[packet_id] = %q, want 17", r.Raw["packet_id"])
	}
	// short row: accel_x absent
	if !math.IsNaN(r.AccelX) || !math.IsNaN(r.TimeDiff) {
		t.Errorf("missing fields should be NaN, got accel_x=%v time_diff=%v", r.AccelX, r.TimeDiff)
	}
}

func TestParseTimestampColumn(t *testing.T) {
	in := "_time,time_diff\n2023-12-05 10:00:00.500000,0\n"
	recs, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := float64(time.Date(2023, 12, 5, 10, 0, 0, 500_000_000, time.UTC).UnixNano()) / 1e9
	if recs[0].Time != want {
		t.Errorf("Time = %v, want %v", recs[0].Time, want)
	}
}

func TestSourceReplaceAndReady(t *testing.T) {
	tl := &Timeline{}
	src := NewSource(tl, false)

	var loads int
	src.OnLoad(func(recs []imu.Record, appendMode bool) {
		loads++
		if appendMode {
			t.Error("appendMode = true, want false")
		}
	})

	if src.IsReady() {
		t.Fatal("ready before any load")
	}
	if _, err := src.Load(strings.NewReader("")); err == nil {
		t.Fatal("expected error on empty input")
	}
	if src.IsReady() {
		t.Fatal("ready after failed load")
	}

	for i := 0; i < 2; i++ {
		n, err := src.Load(strings.NewReader(sampleLog))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if n != 3 {
			t.Fatalf("n = %d, want 3", n)
		}
	}
	select {
	case <-src.Ready():
	default:
		t.Fatal("Ready() not closed after successful load")
	}
	if tl.Len() != 3 {
		t.Errorf("Len = %d, want 3 after replace", tl.Len())
	}
	if loads != 2 {
		t.Errorf("loads = %d, want 2", loads)
	}
}

func TestSourceAppend(t *testing.T) {
	tl := &Timeline{}
	src := NewSource(tl, true)

	for i := 0; i < 2; i++ {
		if _, err := src.Load(strings.NewReader(sampleLog)); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}
	if tl.Len() != 6 {
		t.Errorf("Len = %d, want 6 after append", tl.Len())
	}
}

func TestProcess(t *testing.T) {
	raw := `_time,packet_id,gyro_x,gyro_y,gyro_z,accel_x,accel_y,accel_z,quat_x,quat_y,quat_z,quat_w
2023-12-05 10:00:00.000000,1,16.4,32.8,0,4096,-8192,0,0,0,0,1
2023-12-05 10:00:00.250000,2,0,0,0,0,0,4096,0,0,0,1
`
	var out bytes.Buffer
	n, err := Process(strings.NewReader(raw), &out, DefaultProcessOptions)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}

	recs, err := Parse(&out)
	if err != nil {
		t.Fatalf("Parse(processed) error = %v", err)
	}
	if recs[0].GyroX != 1 || recs[0].GyroY != 2 {
		t.Errorf("gyro = (%v, %v), want (1, 2)", recs[0].GyroX, recs[0].GyroY)
	}
	if recs[0].AccelX != 1 || recs[0].AccelY != -2 {
		t.Errorf("accel = (%v, %v), want (1, -2)", recs[0].AccelX, recs[0].AccelY)
	}
	if recs[0].TimeDiff != 0 || recs[1].TimeDiff != 0.25 {
		t.Errorf("time_diff = (%v, %v), want (0, 0.25)", recs[0].TimeDiff, recs[1].TimeDiff)
	}
	want := float64(time.Date(2023, 12, 5, 11, 0, 0, 0, time.UTC).Unix())
	if recs[0].Time != want {
		t.Errorf("_time = %v, want %v (shifted one hour)", recs[0].Time, want)
	}
}

func TestProcessRequiresTime(t *testing.T) {
	var out bytes.Buffer
	if _, err := Process(strings.NewReader("accel_x\n1\n"), &out, DefaultProcessOptions); err == nil {
		t.Fatal("expected error without _time column")
	}
}
