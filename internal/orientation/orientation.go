package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// Pose is the Euler form of an orientation, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// QuaternionOf returns the record's orientation exactly as recorded,
// without re-normalizing.
func QuaternionOf(rec imu.Record) quat.Number {
	return quat.Number{Real: rec.QuatW, Imag: rec.QuatX, Jmag: rec.QuatY, Kmag: rec.QuatZ}
}

// PoseFromQuaternion converts q to roll/pitch/yaw (ZYX convention).
// q is normalized first; a zero quaternion yields NaN angles.
//
//	roll  = atan2(2(wx + yz), 1 - 2(x² + y²))
//	pitch = asin(2(wy - zx))
//	yaw   = atan2(2(wz + xy), 1 - 2(y² + z²))
func PoseFromQuaternion(q quat.Number) Pose {
	n := quat.Abs(q)
	w, x, y, z := q.Real/n, q.Imag/n, q.Jmag/n, q.Kmag/n

	sinp := 2 * (w*y - z*x)
	// clamp for gimbal lock
	if sinp > 1 {
		sinp = 1
	} else if sinp < -1 {
		sinp = -1
	}

	rollRad := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	pitchRad := math.Asin(sinp)
	yawRad := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
		Yaw:   yawRad * 180.0 / math.Pi,
	}
}
