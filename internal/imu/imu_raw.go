package imu

import "time"

// Raw is one device line as captured, before unit conversion.
// Accel and gyro are in sensor counts (LSB).
type Raw struct {
	Time     time.Time `json:"time"`
	PacketID int       `json:"packet_id"`

	Gx float64 `json:"gx"` // gyro
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	Ax float64 `json:"ax"` // accel
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Qx float64 `json:"qx"` // orientation
	Qy float64 `json:"qy"`
	Qz float64 `json:"qz"`
	Qw float64 `json:"qw"`
}

// RawSource yields captured device samples one at a time.
type RawSource interface {
	NextRaw() (Raw, error)
}
