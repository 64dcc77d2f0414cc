package app

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/inertial_replay/internal/capture"
	"github.com/relabs-tech/inertial_replay/internal/chart"
	"github.com/relabs-tech/inertial_replay/internal/config"
	"github.com/relabs-tech/inertial_replay/internal/imu"
	"github.com/relabs-tech/inertial_replay/internal/orientation"
	"github.com/relabs-tech/inertial_replay/internal/series"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func TestRecordSamples(t *testing.T) {
	lines := strings.Join([]string{
		"1,G:16.4,0,0,A:4096,0,0,Q:0,0,0,1",
		"garbage",
		"2,G:0,16.4,0,A:0,4096,0,Q:0,0,0,1",
	}, "\n") + "\n"

	var out bytes.Buffer
	w, err := capture.NewWriter(nopCloser{&out}, 1)
	if err != nil {
		t.Fatal(err)
	}
	pub := &fakePublisher{}
	lr := capture.NewLineReader(strings.NewReader(lines))

	topic := captureTopic("capture", "ttyACM0")
	if err := recordSamples(lr, w, pub, topic); err != nil {
		t.Fatalf("recordSamples() error = %v", err)
	}
	w.Close()

	if w.Rows() != 2 || lr.Invalid() != 1 {
		t.Errorf("rows = %d invalid = %d, want 2 and 1", w.Rows(), lr.Invalid())
	}
	if len(pub.msgs) != 2 {
		t.Fatalf("published %d lines, want 2", len(pub.msgs))
	}
	if pub.msgs[0].topic != "capture/ttyACM0/movement_sensor_data" {
		t.Errorf("topic = %q", pub.msgs[0].topic)
	}
	if !strings.Contains(string(pub.msgs[1].payload), ",2,0,16.4,0,0,4096,0,0,0,0,1") {
		t.Errorf("payload = %q", pub.msgs[1].payload)
	}
	if got := strings.Count(out.String(), "\n"); got != 3 {
		t.Errorf("csv lines = %d, want header plus 2", got)
	}
}

type failingSource struct{ err error }

func (f failingSource) NextRaw() (imu.Raw, error) { return imu.Raw{}, f.err }

func TestRecordSamplesStops(t *testing.T) {
	w, _ := capture.NewWriter(nopCloser{io.Discard}, 1)
	if err := recordSamples(failingSource{os.ErrClosed}, w, nil, ""); err != nil {
		t.Errorf("closed port error = %v, want nil", err)
	}
	boom := errors.New("boom")
	if err := recordSamples(failingSource{boom}, w, nil, ""); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}

func TestProcessOptions(t *testing.T) {
	cfg := config.Default()
	cfg.TimeOffsetHours = 1.5
	opts := processOptions(cfg)
	if opts.AccelSensitivity != 4096 || opts.GyroSensitivity != 16.4 {
		t.Errorf("sensitivities = %v, %v", opts.AccelSensitivity, opts.GyroSensitivity)
	}
	if opts.TimeOffset != 90*time.Minute {
		t.Errorf("offset = %v, want 1h30m", opts.TimeOffset)
	}
}

func TestExportCharts(t *testing.T) {
	acc := series.New()
	for _, rec := range orientation.MockLog(20, 0.05) {
		acc.Append(rec)
	}
	dir := filepath.Join(t.TempDir(), "charts")

	paths, err := exportCharts(acc.Snapshot(), dir, chart.Size{Width: 300, Height: 200}, false)
	if err != nil {
		t.Fatalf("exportCharts() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 charts", paths)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("Stat(%s) error = %v", p, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
	}
	if filepath.Base(paths[0]) != "accelerometer.png" {
		t.Errorf("first chart = %s", paths[0])
	}
}

func TestExportChartsWithoutPoints(t *testing.T) {
	_, err := exportCharts(series.New().Snapshot(), t.TempDir(), chart.DefaultSize, true)
	if !errors.Is(err, chart.ErrNoPoints) {
		t.Errorf("error = %v, want ErrNoPoints", err)
	}
}

func TestServiceText(t *testing.T) {
	txt := strings.Join(serviceText(), ";")
	if !strings.Contains(txt, "ws=/ws") {
		t.Errorf("TXT record = %q", txt)
	}
}
