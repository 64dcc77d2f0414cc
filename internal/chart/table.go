// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package chart turns accumulated series into plots: a JSON plot model for
// browser clients and PNG/SVG renderings.
package chart

import "github.com/relabs-tech/inertial_replay/internal/imu"

// Threshold is a dashed horizontal reference line.
type Threshold struct {
	Y     float64
	Color string
}

// Spec describes one chart.
type Spec struct {
	ID         string
	Title      string
	YAxis      string
	Fields     []imu.Field
	Thresholds []Threshold
	Enabled    bool
}

// Table lists every chart the replay knows about. The quaternion chart
// is defined but off.
var Table = []Spec{
	{
		ID:     "accelerometer",
		Title:  "Accelerometer Data",
		YAxis:  "Acceleration (g)",
		Fields: []imu.Field{imu.AccelX, imu.AccelY, imu.AccelZ},
		Thresholds: []Threshold{
			{Y: 2, Color: "red"},
			{Y: -2, Color: "blue"},
		},
		Enabled: true,
	},
	{
		ID:     "gyroscope",
		Title:  "Gyroscope Data",
		YAxis:  "Angular velocity (deg/s)",
		Fields: []imu.Field{imu.GyroX, imu.GyroY, imu.GyroZ},
		Thresholds: []Threshold{
			{Y: 400, Color: "red"},
			{Y: -400, Color: "blue"},
		},
		Enabled: true,
	},
	{
		ID:      "quaternions",
		Title:   "Quaternions Data",
		YAxis:   "Quaternions",
		Fields:  []imu.Field{imu.QuatX, imu.QuatY, imu.QuatZ, imu.QuatW},
		Enabled: false,
	},
}

// Lookup returns the chart with the given id, enabled or not.
func Lookup(id string) (Spec, bool) {
	for _, s := range Table {
		if s.ID == id {
			return s, true
		}
	}
	return Spec{}, false
}

// Enabled returns the charts that are drawn on every redraw.
func Enabled() []Spec {
	var out []Spec
	for _, s := range Table {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
