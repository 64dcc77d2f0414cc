// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "math"

// Column names of a processed sensor log.
const (
	ColAccelX   = "accel_x"
	ColAccelY   = "accel_y"
	ColAccelZ   = "accel_z"
	ColGyroX    = "gyro_x"
	ColGyroY    = "gyro_y"
	ColGyroZ    = "gyro_z"
	ColQuatX    = "quat_x"
	ColQuatY    = "quat_y"
	ColQuatZ    = "quat_z"
	ColQuatW    = "quat_w"
	ColTimeDiff = "time_diff"
	ColTime     = "_time"
	ColPacketID = "packet_id"
)

// Record is one row of a sensor log.
//
// Fields are not validated: a column that is missing or not numeric is NaN,
// and the quaternion is used exactly as recorded.
type Record struct {
	AccelX float64 `json:"accel_x"` // g
	AccelY float64 `json:"accel_y"`
	AccelZ float64 `json:"accel_z"`

	GyroX float64 `json:"gyro_x"` // deg/s
	GyroY float64 `json:"gyro_y"`
	GyroZ float64 `json:"gyro_z"`

	QuatX float64 `json:"quat_x"`
	QuatY float64 `json:"quat_y"`
	QuatZ float64 `json:"quat_z"`
	QuatW float64 `json:"quat_w"`

	// TimeDiff is the delay in seconds that paces playback.
	TimeDiff float64 `json:"time_diff"`
	// Time is the chart x-axis value in seconds.
	Time float64 `json:"_time"`

	// Raw keeps text that could not be coerced to a number, plus any
	// column the log carries that Record has no field for.
	Raw map[string]string `json:"raw,omitempty"`
}

// NewRecord returns a Record with every numeric field set to NaN.
func NewRecord() Record {
	nan := math.NaN()
	return Record{
		AccelX: nan, AccelY: nan, AccelZ: nan,
		GyroX: nan, GyroY: nan, GyroZ: nan,
		QuatX: nan, QuatY: nan, QuatZ: nan, QuatW: nan,
		TimeDiff: nan,
		Time:     nan,
	}
}

// Field selects one numeric column of a Record.
type Field int

const (
	AccelX Field = iota
	AccelY
	AccelZ
	GyroX
	GyroY
	GyroZ
	QuatX
	QuatY
	QuatZ
	QuatW
	TimeDiff
	Time
)

// SeriesFields are the ten charted channels in their fixed order.
var SeriesFields = []Field{
	AccelX, AccelY, AccelZ,
	GyroX, GyroY, GyroZ,
	QuatX, QuatY, QuatZ, QuatW,
}

var fieldNames = [...]string{
	ColAccelX, ColAccelY, ColAccelZ,
	ColGyroX, ColGyroY, ColGyroZ,
	ColQuatX, ColQuatY, ColQuatZ, ColQuatW,
	ColTimeDiff, ColTime,
}

// String returns the column name of f.
func (f Field) String() string {
	if f >= 0 && int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return "unknown"
}

// FieldByName maps a column name to its Field.
func FieldByName(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// Value returns the value of field f.
func (r *Record) Value(f Field) float64 {
	switch f {
	case AccelX:
		return r.AccelX
	case AccelY:
		return r.AccelY
	case AccelZ:
		return r.AccelZ
	case GyroX:
		return r.GyroX
	case GyroY:
		return r.GyroY
	case GyroZ:
		return r.GyroZ
	case QuatX:
		return r.QuatX
	case QuatY:
		return r.QuatY
	case QuatZ:
		return r.QuatZ
	case QuatW:
		return r.QuatW
	case TimeDiff:
		return r.TimeDiff
	case Time:
		return r.Time
	}
	return math.NaN()
}

// Set assigns v to field f.
func (r *Record) Set(f Field, v float64) {
	switch f {
	case AccelX:
		r.AccelX = v
	case AccelY:
		r.AccelY = v
	case AccelZ:
		r.AccelZ = v
	case GyroX:
		r.GyroX = v
	case GyroY:
		r.GyroY = v
	case GyroZ:
		r.GyroZ = v
	case QuatX:
		r.QuatX = v
	case QuatY:
		r.QuatY = v
	case QuatZ:
		r.QuatZ = v
	case QuatW:
		r.QuatW = v
	case TimeDiff:
		r.TimeDiff = v
	case Time:
		r.Time = v
	}
}
