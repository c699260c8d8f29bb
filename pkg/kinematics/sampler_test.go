package kinematics

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

func TestSampleCountIncludesBoundary(t *testing.T) {
	start := vecmath.Vector3{X: -6, Y: 0, Z: 2.2}
	v0 := VelocityFromAngles(15, 25, 0)

	traj, err := Simulate(start, v0, 3.0, 0.02)
	require.NoError(t, err)
	require.Len(t, traj, 151)
	assert.Equal(t, 0.0, traj[0].Time)
	assert.Equal(t, start, traj[0].Position)
	assert.InDelta(t, 3.0, traj[len(traj)-1].Time, 1e-9)
}

func TestSampleStepsNeverExceedDt(t *testing.T) {
	for _, tc := range []struct{ tEnd, dt float64 }{
		{3.0, 0.02}, {0.85, 0.01}, {1.0, 0.3}, {0.5, 0.005}, {2.0, 0.03},
	} {
		traj, err := Simulate(vecmath.Vector3{Z: 2}, vecmath.Vector3{X: 5, Z: 3}, tc.tEnd, tc.dt)
		require.NoError(t, err)
		require.NotEmpty(t, traj)
		for i := 1; i < len(traj); i++ {
			step := traj[i].Time - traj[i-1].Time
			assert.Greater(t, step, 0.0)
			assert.LessOrEqual(t, step, tc.dt+1e-12)
		}
		last := traj[len(traj)-1].Time
		assert.LessOrEqual(t, last, tc.tEnd+1e-9)
		assert.Greater(t, last+tc.dt, tc.tEnd)
	}
}

func TestSamplerIsRestartable(t *testing.T) {
	s, err := NewSampler(vecmath.Vector3{Z: 2}, vecmath.Vector3{X: 4, Z: 4}, 1.0, 0.1)
	require.NoError(t, err)
	assert.Equal(t, s.Samples(), s.Samples())

	var n int
	s.Each(func(Sample) bool { n++; return n < 3 })
	assert.Equal(t, 3, n)
}

func TestSamplerRejectsBadStep(t *testing.T) {
	_, err := NewSampler(vecmath.Vector3{}, vecmath.Vector3{}, 1, 0)
	assert.Error(t, err)
	_, err = NewSampler(vecmath.Vector3{}, vecmath.Vector3{}, 1, -0.1)
	assert.Error(t, err)

	s, err := NewSampler(vecmath.Vector3{}, vecmath.Vector3{}, -1, 0.1)
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestSplitAtContact(t *testing.T) {
	traj, err := Simulate(vecmath.Vector3{X: -3, Z: 2.3}, vecmath.Vector3{X: 4, Z: 3}, 0.85, 0.01)
	require.NoError(t, err)
	require.Len(t, traj, 86)

	head, tail := traj.Split(0.55)
	assert.Len(t, head, 56)
	assert.Len(t, tail, 30)
	assert.InDelta(t, 0.55, head[len(head)-1].Time, 1e-9)

	all, none := traj.Split(10)
	assert.Len(t, all, 86)
	assert.Empty(t, none)
}

func TestJSONLStream(t *testing.T) {
	s, err := NewSampler(vecmath.Vector3{Z: 2}, vecmath.Vector3{X: 1}, 0.2, 0.1)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewJSONLSampleStream(&buf)
	require.NoError(t, s.Stream(w))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var got Sample
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &got))
	assert.InDelta(t, 0.2, got.Time, 1e-12)
}

func TestJSONLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	w, err := NewJSONLSampleWriter(path)
	require.NoError(t, err)

	s, err := NewSampler(vecmath.Vector3{}, vecmath.Vector3{Z: 1}, 0.1, 0.05)
	require.NoError(t, err)
	require.NoError(t, s.Stream(w))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
}
