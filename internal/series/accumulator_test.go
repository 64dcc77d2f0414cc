package series

import (
	"math"
	"testing"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

func record(i int) imu.Record {
	v := float64(i)
	return imu.Record{
		AccelX: v, AccelY: v + 0.1, AccelZ: v + 0.2,
		GyroX: 10 * v, GyroY: 10*v + 1, GyroZ: 10*v + 2,
		QuatX: 0, QuatY: 0, QuatZ: 0, QuatW: 1,
		TimeDiff: 0.5,
		Time:     v,
	}
}

func TestAppendKeepsBuffersEqual(t *testing.T) {
	a := New()
	for k := 1; k <= 5; k++ {
		a.Append(record(k))

		s := a.Snapshot()
		if s.Len() != k {
			t.Fatalf("after %d appends Len = %d", k, s.Len())
		}
		for _, f := range imu.SeriesFields {
			if got := len(s.Series(f)); got != k {
				t.Errorf("after %d appends %s has %d points", k, f, got)
			}
		}
	}
}

func TestSnapshotOrderAndValues(t *testing.T) {
	a := New()
	for i := 0; i < 3; i++ {
		a.Append(record(i))
	}
	s := a.Snapshot()

	for i := 0; i < 3; i++ {
		if s.Time[i] != float64(i) {
			t.Errorf("time[%d] = %v", i, s.Time[i])
		}
		if s.Series(imu.GyroZ)[i] != 10*float64(i)+2 {
			t.Errorf("gyro_z[%d] = %v", i, s.Series(imu.GyroZ)[i])
		}
	}
	if s.Series(imu.TimeDiff) != nil {
		t.Error("time_diff is not a charted series")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	a := New()
	a.Append(record(1))
	s := a.Snapshot()
	a.Append(record(2))
	s.Series(imu.AccelX)[0] = 99

	if s.Len() != 1 {
		t.Errorf("snapshot grew to %d", s.Len())
	}
	if a.Snapshot().Series(imu.AccelX)[0] != 1 {
		t.Error("mutating a snapshot changed the accumulator")
	}
}

func TestAppendNaNPassesThrough(t *testing.T) {
	a := New()
	a.Append(imu.NewRecord())
	s := a.Snapshot()
	if !math.IsNaN(s.Series(imu.QuatW)[0]) {
		t.Errorf("quat_w = %v, want NaN", s.Series(imu.QuatW)[0])
	}
}

func TestResetAndMap(t *testing.T) {
	a := New()
	a.Append(record(1))
	if m := a.Snapshot().Map(); len(m) != 11 || len(m["_time"]) != 1 {
		t.Errorf("Map() = %v", m)
	}
	a.Reset()
	if a.Len() != 0 || a.Snapshot().Len() != 0 {
		t.Errorf("Len after Reset = %d", a.Len())
	}
}
