package app

import (
	"encoding/json"

	"github.com/relabs-tech/inertial_replay/internal/chart"
	"github.com/relabs-tech/inertial_replay/internal/imu"
	"github.com/relabs-tech/inertial_replay/internal/orientation"
	"github.com/relabs-tech/inertial_replay/internal/playback"
	"github.com/relabs-tech/inertial_replay/internal/series"
)

// Wire forms of replay state. Every float goes through chart.Value since a
// malformed record legitimately produces NaN.

type vec3 [3]chart.Value

func vecOf(v orientation.Vec3) vec3 {
	return vec3{chart.Value(v.X), chart.Value(v.Y), chart.Value(v.Z)}
}

type arrowMsg struct {
	Origin    vec3        `json:"origin"`
	Direction vec3        `json:"direction"`
	Length    chart.Value `json:"length"`
	HeadSize  chart.Value `json:"head_size"`
	Color     string      `json:"color"`
}

type sceneMsg struct {
	Position   vec3           `json:"position"`
	Quaternion [4]chart.Value `json:"quaternion"` // x, y, z, w
	Axes       [3]arrowMsg    `json:"axes"`
	Row        int            `json:"row"`
	Pass       int            `json:"pass"`
}

func sceneMessage(s orientation.Scene) sceneMsg {
	q := orientation.QuaternionJSON(s.Model.Orientation)
	m := sceneMsg{
		Position:   vecOf(s.Model.Position),
		Quaternion: [4]chart.Value{chart.Value(q.X), chart.Value(q.Y), chart.Value(q.Z), chart.Value(q.W)},
	}
	for i, a := range s.Axes {
		m.Axes[i] = arrowMsg{
			Origin:    vecOf(a.Origin),
			Direction: vecOf(a.Direction),
			Length:    chart.Value(a.Length),
			HeadSize:  chart.Value(a.HeadSize),
			Color:     a.Color,
		}
	}
	return m
}

// PoseMsg is the Euler pose published over MQTT and served by
// /api/orientation.
type PoseMsg struct {
	Row   int         `json:"row"`
	Roll  chart.Value `json:"roll"`
	Pitch chart.Value `json:"pitch"`
	Yaw   chart.Value `json:"yaw"`
}

func poseMessage(row int, p orientation.Pose) PoseMsg {
	return PoseMsg{Row: row, Roll: chart.Value(p.Roll), Pitch: chart.Value(p.Pitch), Yaw: chart.Value(p.Yaw)}
}

// FrameMsg describes one accepted advance.
type FrameMsg struct {
	Row      int               `json:"row"`
	Pass     int               `json:"pass"`
	Time     chart.Value       `json:"_time"`
	TimeDiff chart.Value       `json:"time_diff"`
	Accel    [3]chart.Value    `json:"accel"`
	Gyro     [3]chart.Value    `json:"gyro"`
	Quat     [4]chart.Value    `json:"quat"` // x, y, z, w
	Pose     PoseMsg           `json:"pose"`
	Progress playback.Progress `json:"progress"`
}

func frameMessage(a playback.Advance) FrameMsg {
	r := a.Record
	v := func(fs ...float64) []chart.Value { return chart.Values(fs) }
	f := FrameMsg{
		Row:      a.Row,
		Pass:     a.Pass,
		Time:     chart.Value(r.Time),
		TimeDiff: chart.Value(r.TimeDiff),
		Pose:     poseMessage(a.Row, orientation.PoseFromQuaternion(orientation.QuaternionOf(r))),
		Progress: a.Progress,
	}
	copy(f.Accel[:], v(r.AccelX, r.AccelY, r.AccelZ))
	copy(f.Gyro[:], v(r.GyroX, r.GyroY, r.GyroZ))
	copy(f.Quat[:], v(r.QuatX, r.QuatY, r.QuatZ, r.QuatW))
	return f
}

func seriesMessage(s series.Snapshot) map[string][]chart.Value {
	out := make(map[string][]chart.Value, len(imu.SeriesFields)+1)
	for k, vs := range s.Map() {
		out[k] = chart.Values(vs)
	}
	return out
}

// envelope is the websocket framing: {"type": ..., "data": ...}.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func encode(msgType string, data any) ([]byte, error) {
	return json.Marshal(envelope{Type: msgType, Data: data})
}
