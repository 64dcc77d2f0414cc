// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// Axis indicator geometry, in model units.
const (
	ArrowLength   = 70.0
	ArrowHeadSize = 4.0
)

// Vec3 is a point or direction in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Basis vectors the axis indicators point along before rotation.
var (
	UnitX = Vec3{X: 1}
	UnitY = Vec3{Y: 1}
	UnitZ = Vec3{Z: 1}
)

// Arrow is one axis indicator.
type Arrow struct {
	Origin    Vec3    `json:"origin"`
	Direction Vec3    `json:"direction"`
	Length    float64 `json:"length"`
	HeadSize  float64 `json:"head_size"`
	Color     string  `json:"color"`
}

// Model is the renderable object's transform.
type Model struct {
	Position    Vec3        `json:"position"`
	Orientation quat.Number `json:"-"`
}

// Scene is the renderer state the applier owns: the model transform and
// the x/y/z axis indicators.
type Scene struct {
	Model Model    `json:"model"`
	Axes  [3]Arrow `json:"axes"`
}

// NewScene returns the scene before any record is applied: identity
// orientation at the origin, indicators along the unrotated basis.
func NewScene() Scene {
	return Scene{
		Model: Model{Orientation: quat.Number{Real: 1}},
		Axes: [3]Arrow{
			{Direction: UnitX, Length: ArrowLength, HeadSize: ArrowHeadSize, Color: "#ff0000"},
			{Direction: UnitY, Length: ArrowLength, HeadSize: ArrowHeadSize, Color: "#00ff00"},
			{Direction: UnitZ, Length: ArrowLength, HeadSize: ArrowHeadSize, Color: "#0000ff"},
		},
	}
}

// Apply sets the model orientation to the record's quaternion (no
// interpolation from the previous one) and re-aims the axis indicators.
// The result depends only on prev's position and rec.
//
// Malformed quaternions are not rejected; an all-zero one gives NaN
// indicator directions.
func Apply(prev Scene, rec imu.Record) Scene {
	q := QuaternionOf(rec)

	next := prev
	next.Model.Orientation = q
	for i, basis := range [3]Vec3{UnitX, UnitY, UnitZ} {
		next.Axes[i].Origin = prev.Model.Position
		next.Axes[i].Direction = normalize(Rotate(q, basis))
	}
	return next
}

// Rotate computes q·v·q* for the pure quaternion v.
func Rotate(q quat.Number, v Vec3) Vec3 {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return Vec3{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

func normalize(v Vec3) Vec3 {
	n := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Quaternion is the JSON form of the model orientation.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// QuaternionJSON converts q for the wire.
func QuaternionJSON(q quat.Number) Quaternion {
	return Quaternion{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real}
}
