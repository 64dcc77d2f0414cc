// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package capture records device sample lines into raw capture logs.
package capture

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// ErrInvalidLine is returned for a line that is not a device sample.
var ErrInvalidLine = errors.New("capture: invalid data received")

// TimeLayout is how capture timestamps are written (UTC).
const TimeLayout = "2006-01-02 15:04:05.000000"

// Header is the column order of a raw capture log.
var Header = []string{
	imu.ColTime, imu.ColPacketID,
	imu.ColGyroX, imu.ColGyroY, imu.ColGyroZ,
	imu.ColAccelX, imu.ColAccelY, imu.ColAccelZ,
	imu.ColQuatX, imu.ColQuatY, imu.ColQuatZ, imu.ColQuatW,
}

// <packet_id>,G:gx,gy,gz,A:ax,ay,az,Q:qx,qy,qz,qw
var linePattern = regexp.MustCompile(`^(\d+),G:([\d.-]+),([\d.-]+),([\d.-]+),A:([\d.-]+),([\d.-]+),([\d.-]+),Q:([\d.-]+),([\d.-]+),([\d.-]+),([\d.-]+)`)

// ParseLine decodes one device line stamped with at.
func ParseLine(line string, at time.Time) (imu.Raw, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return imu.Raw{}, fmt.Errorf("%w: %q", ErrInvalidLine, line)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return imu.Raw{}, fmt.Errorf("%w: packet id %q", ErrInvalidLine, m[1])
	}

	var v [10]float64
	for i := range v {
		f, err := strconv.ParseFloat(m[i+2], 64)
		if err != nil {
			return imu.Raw{}, fmt.Errorf("%w: field %d %q", ErrInvalidLine, i+2, m[i+2])
		}
		v[i] = f
	}

	return imu.Raw{
		Time:     at.UTC(),
		PacketID: id,
		Gx:       v[0], Gy: v[1], Gz: v[2],
		Ax: v[3], Ay: v[4], Az: v[5],
		Qx: v[6], Qy: v[7], Qz: v[8], Qw: v[9],
	}, nil
}

// Fields formats r in Header order.
func Fields(r imu.Raw) []string {
	num := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	return []string{
		r.Time.UTC().Format(TimeLayout),
		strconv.Itoa(r.PacketID),
		num(r.Gx), num(r.Gy), num(r.Gz),
		num(r.Ax), num(r.Ay), num(r.Az),
		num(r.Qx), num(r.Qy), num(r.Qz), num(r.Qw),
	}
}
