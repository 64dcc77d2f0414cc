package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/relabs-tech/inertial_replay/internal/chart"
	"github.com/relabs-tech/inertial_replay/internal/config"
	"github.com/relabs-tech/inertial_replay/internal/series"
	"github.com/relabs-tech/inertial_replay/internal/timeline"
)

// processOptions takes the unit conversion from cfg.
func processOptions(cfg *config.Config) timeline.ProcessOptions {
	return timeline.ProcessOptions{
		AccelSensitivity: cfg.AccelSensitivity,
		GyroSensitivity:  cfg.GyroSensitivity,
		TimeOffset:       time.Duration(cfg.TimeOffsetHours * float64(time.Hour)),
	}
}

// RunProcess converts the raw capture log in into the replayable log out.
func RunProcess(in, out string) error {
	cfg := config.Get()

	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return err
	}

	n, err := timeline.Process(src, dst, processOptions(cfg))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	log.Printf("process: %d rows written to %s", n, out)
	return nil
}

// exportCharts writes every enabled chart of snap to outDir as
// <id>.png (or .svg) and returns the paths written.
func exportCharts(snap series.Snapshot, outDir string, size chart.Size, svg bool) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	ext := ".png"
	if svg {
		ext = ".svg"
	}

	var paths []string
	for _, spec := range chart.Enabled() {
		path := filepath.Join(outDir, spec.ID+ext)
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		err = chart.Render(f, spec, snap, size, svg)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return paths, fmt.Errorf("chart %s: %w", spec.ID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// RunChartExport renders the charts of a whole log, as they look after one
// complete pass, into outDir.
func RunChartExport(path, outDir string, svg bool) error {
	cfg := config.Get()

	tl, err := loadTimeline(path)
	if err != nil {
		return err
	}

	acc := series.New()
	for _, rec := range tl.Records() {
		acc.Append(rec)
	}

	size := chart.Size{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
	paths, err := exportCharts(acc.Snapshot(), outDir, size, svg)
	for _, p := range paths {
		log.Printf("chart: wrote %s", p)
	}
	return err
}
