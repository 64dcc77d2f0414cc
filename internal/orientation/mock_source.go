// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// MockLog generates n records of a smooth synthetic motion sampled every
// dt seconds: a slow yaw with a superimposed roll/pitch wobble, with the
// matching angular rates and a gravity-plus-wobble accelerometer.
func MockLog(n int, dt float64) []imu.Record {
	recs := make([]imu.Record, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) * dt

		roll := 20 * math.Sin(t) * math.Pi / 180
		pitch := 15 * math.Cos(t*0.7) * math.Pi / 180
		yaw := math.Mod(t*30, 360) * math.Pi / 180

		// ZYX Euler → quaternion
		cr, sr := math.Cos(roll/2), math.Sin(roll/2)
		cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
		cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)

		diff := dt
		if i == 0 {
			diff = 0
		}

		recs = append(recs, imu.Record{
			AccelX:   0.3 * math.Sin(t*2),
			AccelY:   0.3 * math.Cos(t*2),
			AccelZ:   1 + 0.1*math.Sin(t*5),
			GyroX:    20 * math.Cos(t),
			GyroY:    -15 * 0.7 * math.Sin(t*0.7),
			GyroZ:    30,
			QuatW:    cr*cp*cy + sr*sp*sy,
			QuatX:    sr*cp*cy - cr*sp*sy,
			QuatY:    cr*sp*cy + sr*cp*sy,
			QuatZ:    cr*cp*sy - sr*sp*cy,
			TimeDiff: diff,
			Time:     t,
		})
	}
	return recs
}
