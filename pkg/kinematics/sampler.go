package kinematics

import (
	"fmt"
	"math"

	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

// boundaryTolerance absorbs floating point noise when deciding whether the
// last step lands on tEnd.
const boundaryTolerance = 1e-9

// Sample is the ball position at a given time since launch.
type Sample struct {
	Time     float64         `json:"t"`
	Position vecmath.Vector3 `json:"position"`
}

// Trajectory is a time-ordered sequence of samples starting at t=0.
type Trajectory []Sample

// Sampler discretizes a closed-form flight at a fixed step. It holds no
// state besides its inputs, so Samples can be called any number of times.
type Sampler struct {
	Start vecmath.Vector3
	V0    vecmath.Vector3
	TEnd  float64
	Dt    float64
}

// NewSampler validates the step and returns a sampler.
func NewSampler(start, v0 vecmath.Vector3, tEnd, dt float64) (*Sampler, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("time step must be positive, got %v", dt)
	}
	if math.IsNaN(tEnd) || math.IsInf(tEnd, 0) {
		return nil, fmt.Errorf("end time must be finite, got %v", tEnd)
	}
	return &Sampler{Start: start, V0: v0, TEnd: tEnd, Dt: dt}, nil
}

// Len returns the number of samples: every t = i·dt with t <= tEnd,
// boundary included.
func (s *Sampler) Len() int {
	if s.TEnd < 0 {
		return 0
	}
	return int(math.Floor(s.TEnd/s.Dt+boundaryTolerance)) + 1
}

// At returns the i-th sample.
func (s *Sampler) At(i int) Sample {
	t := float64(i) * s.Dt
	return Sample{Time: t, Position: PositionAt(s.Start, s.V0, t)}
}

// Samples materializes the whole trajectory.
func (s *Sampler) Samples() Trajectory {
	n := s.Len()
	out := make(Trajectory, n)
	for i := 0; i < n; i++ {
		out[i] = s.At(i)
	}
	return out
}

// Each calls fn for every sample in order until fn returns false.
func (s *Sampler) Each(fn func(Sample) bool) {
	n := s.Len()
	for i := 0; i < n; i++ {
		if !fn(s.At(i)) {
			return
		}
	}
}

// Simulate samples the flight from start with velocity v0 up to tEnd.
func Simulate(start, v0 vecmath.Vector3, tEnd, dt float64) (Trajectory, error) {
	s, err := NewSampler(start, v0, tEnd, dt)
	if err != nil {
		return nil, err
	}
	return s.Samples(), nil
}

// Positions returns just the sample positions.
func (tr Trajectory) Positions() []vecmath.Vector3 {
	out := make([]vecmath.Vector3, len(tr))
	for i, s := range tr {
		out[i] = s.Position
	}
	return out
}

// Split partitions the trajectory at tSplit: samples with t <= tSplit
// (within tolerance) go to head, the rest to tail.
func (tr Trajectory) Split(tSplit float64) (head, tail Trajectory) {
	for i, s := range tr {
		if s.Time > tSplit+boundaryTolerance {
			return tr[:i], tr[i:]
		}
	}
	return tr, nil
}

// Highest returns the sample with the greatest height. ok is false for an
// empty trajectory.
func (tr Trajectory) Highest() (best Sample, ok bool) {
	for i, s := range tr {
		if i == 0 || s.Position.Z > best.Position.Z {
			best = s
			ok = true
		}
	}
	return best, ok
}
