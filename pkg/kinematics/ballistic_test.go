package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

func TestPositionAtZeroIsStart(t *testing.T) {
	start := vecmath.Vector3{X: -6, Y: 0, Z: 2.2}
	for _, v0 := range []vecmath.Vector3{{}, {X: 13.6, Z: 6.3}, {X: -1, Y: 4, Z: -7}} {
		assert.Equal(t, start, PositionAt(start, v0, 0))
	}
}

func TestVelocityAt(t *testing.T) {
	v0 := vecmath.Vector3{X: 3, Y: -1, Z: 5}
	v := VelocityAt(v0, 0.5)
	assert.Equal(t, 3.0, v.X)
	assert.Equal(t, -1.0, v.Y)
	assert.InDelta(t, 5-0.5*G, v.Z, 1e-12)
}

func TestVelocityFromAngles(t *testing.T) {
	v := VelocityFromAngles(15, 25, 0)
	assert.InDelta(t, 15*math.Cos(25*math.Pi/180), v.X, 1e-12)
	assert.InDelta(t, 0, v.Y, 1e-12)
	assert.InDelta(t, 15*math.Sin(25*math.Pi/180), v.Z, 1e-12)
	assert.InDelta(t, 15, v.Magnitude(), 1e-12)

	side := VelocityFromAngles(10, 0, 90)
	assert.InDelta(t, 0, side.X, 1e-12)
	assert.InDelta(t, 10, side.Y, 1e-12)
	assert.InDelta(t, 0, side.Z, 1e-12)
}

func TestApexIsHighestSample(t *testing.T) {
	start := vecmath.Vector3{X: -6, Y: 0, Z: 2.2}
	v0 := VelocityFromAngles(15, 25, 0)

	tApex, apex := Apex(start, v0)
	assert.InDelta(t, v0.Z/G, tApex, 1e-12)

	traj, err := Simulate(start, v0, 3.0, 0.001)
	require.NoError(t, err)
	for _, s := range traj {
		assert.LessOrEqual(t, s.Position.Z, apex.Z+1e-12, "t=%v", s.Time)
	}
	best, ok := traj.Highest()
	require.True(t, ok)
	assert.InDelta(t, apex.Z, best.Position.Z, 1e-5)
}

func TestApexClampedForDownwardLaunch(t *testing.T) {
	start := vecmath.Vector3{X: -1, Y: 2, Z: 3}
	for _, v0 := range []vecmath.Vector3{{X: 10, Z: -2}, {X: 10}} {
		tApex, apex := Apex(start, v0)
		assert.Equal(t, 0.0, tApex)
		assert.Equal(t, start, apex)
	}
}

func TestSolveV0RoundTrip(t *testing.T) {
	cases := []struct {
		start, target vecmath.Vector3
		tFlight       float64
	}{
		{vecmath.Vector3{X: -3, Z: 2.3}, vecmath.Vector3{X: -0.8, Y: 3.8, Z: 3.1}, 0.55},
		{vecmath.Vector3{X: -9, Y: -4.5, Z: 1.5}, vecmath.Vector3{X: 1, Y: 4.5, Z: 4}, 2.0},
		{vecmath.Vector3{X: -0.1, Y: 0, Z: 3.5}, vecmath.Vector3{X: -2.5, Y: -4.5, Z: 2.5}, 0.15},
	}
	for _, tc := range cases {
		v0 := SolveV0FromTarget(tc.start, tc.target, tc.tFlight)
		got := PositionAt(tc.start, v0, tc.tFlight)
		assert.InDelta(t, 0, got.Distance(tc.target), 1e-9)
	}
}

func TestSolveV0Checked(t *testing.T) {
	_, err := SolveV0FromTargetChecked(vecmath.Vector3{}, vecmath.Vector3{X: 1}, 0)
	assert.Error(t, err)
	_, err = SolveV0FromTargetChecked(vecmath.Vector3{}, vecmath.Vector3{X: 1}, -0.2)
	assert.Error(t, err)
	_, err = SolveV0FromTargetChecked(vecmath.Vector3{}, vecmath.Vector3{X: 1}, math.NaN())
	assert.Error(t, err)

	v0, err := SolveV0FromTargetChecked(vecmath.Vector3{}, vecmath.Vector3{X: 1}, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 2, v0.X, 1e-12)
}
