package timeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// ProcessOptions control the conversion of a raw capture log.
type ProcessOptions struct {
	AccelSensitivity float64       // LSB per g
	GyroSensitivity  float64       // LSB per deg/s
	TimeOffset       time.Duration // added to every _time value
}

// DefaultProcessOptions match the sensor datasheet values of the capture
// device (±8 g, ±2000 deg/s) and the UTC→local shift of the test site.
var DefaultProcessOptions = ProcessOptions{
	AccelSensitivity: 4096.0,
	GyroSensitivity:  16.4,
	TimeOffset:       time.Hour,
}

// processedTimeLayout is how _time is written back out.
const processedTimeLayout = "2006-01-02 15:04:05.000000"

// Process converts a raw capture log into a replayable one: accel and gyro
// are scaled to g and deg/s, _time is shifted, and a time_diff column with
// the seconds since the previous row (0 for the first) is appended.
// Columns it does not know are copied through. Returns the number of rows.
func Process(r io.Reader, w io.Writer, opts ProcessOptions) (int, error) {
	if opts.AccelSensitivity == 0 || opts.GyroSensitivity == 0 {
		return 0, fmt.Errorf("process: sensitivities must be non-zero")
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return 0, ErrNoHeader
	}
	if err != nil {
		return 0, fmt.Errorf("process: read header: %w", err)
	}

	timeCol := -1
	scale := make([]float64, len(header))
	outHeader := make([]string, 0, len(header)+1)
	hasDiff := false
	for i, name := range header {
		name = strings.TrimSpace(name)
		outHeader = append(outHeader, name)
		switch name {
		case imu.ColTime:
			timeCol = i
		case imu.ColAccelX, imu.ColAccelY, imu.ColAccelZ:
			scale[i] = opts.AccelSensitivity
		case imu.ColGyroX, imu.ColGyroY, imu.ColGyroZ:
			scale[i] = opts.GyroSensitivity
		case imu.ColTimeDiff:
			hasDiff = true
		}
	}
	if timeCol < 0 {
		return 0, fmt.Errorf("process: missing %s column", imu.ColTime)
	}
	if hasDiff {
		return 0, fmt.Errorf("process: log already has a %s column", imu.ColTimeDiff)
	}
	outHeader = append(outHeader, imu.ColTimeDiff)

	cw := csv.NewWriter(w)
	if err := cw.Write(outHeader); err != nil {
		return 0, fmt.Errorf("process: write header: %w", err)
	}

	var prev time.Time
	rows := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("process: row %d: %w", rows+1, err)
		}

		out := make([]string, len(header)+1)
		for i := range header {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			out[i] = cell
			if scale[i] == 0 || cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				// leave non-numeric cells as they are
				continue
			}
			out[i] = strconv.FormatFloat(v/scale[i], 'g', -1, 64)
		}

		diff := 0.0
		if timeCol < len(row) {
			if t, ok := parseTime(strings.TrimSpace(row[timeCol])); ok {
				t = t.Add(opts.TimeOffset)
				out[timeCol] = t.Format(processedTimeLayout)
				if !prev.IsZero() {
					diff = t.Sub(prev).Seconds()
				}
				prev = t
			}
		}
		out[len(header)] = strconv.FormatFloat(diff, 'f', -1, 64)

		if err := cw.Write(out); err != nil {
			return rows, fmt.Errorf("process: write row %d: %w", rows+1, err)
		}
		rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("process: flush: %w", err)
	}
	return rows, nil
}
