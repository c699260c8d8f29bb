// Package kinematics implements drag-free ball flight under constant gravity.
package kinematics

import (
	"fmt"
	"math"

	"github.com/oxygene76/vb3d-sim/pkg/vecmath"
)

// G is the magnitude of gravitational acceleration in m/s².
const G = 9.81

// Gravity is the constant acceleration vector acting on the ball.
var Gravity = vecmath.Vector3{X: 0, Y: 0, Z: -G}

// PositionAt returns S + v0·t + ½·g·t².
func PositionAt(start, v0 vecmath.Vector3, t float64) vecmath.Vector3 {
	return start.
		Add(v0.Scale(t)).
		Add(Gravity.Scale(0.5 * t * t))
}

// VelocityAt returns v0 + g·t.
func VelocityAt(v0 vecmath.Vector3, t float64) vecmath.Vector3 {
	return v0.Add(Gravity.Scale(t))
}

// VelocityFromAngles decomposes a launch speed into a velocity vector.
// Elevation is measured from the horizontal plane, azimuth about the vertical
// axis starting from +X, both in degrees.
func VelocityFromAngles(speed, elevationDeg, azimuthDeg float64) vecmath.Vector3 {
	theta := elevationDeg * math.Pi / 180
	phi := azimuthDeg * math.Pi / 180

	horizontal := speed * math.Cos(theta)
	return vecmath.Vector3{
		X: horizontal * math.Cos(phi),
		Y: horizontal * math.Sin(phi),
		Z: speed * math.Sin(theta),
	}
}

// Apex returns the time and position of the highest point of the flight.
// A ball launched level or downwards peaks at the launch instant.
func Apex(start, v0 vecmath.Vector3) (float64, vecmath.Vector3) {
	tApex := math.Max(0, v0.Z/G)
	return tApex, PositionAt(start, v0, tApex)
}

// SolveV0FromTarget returns the launch velocity that carries the ball from
// start to target in exactly tFlight seconds. tFlight must be positive; the
// result is undefined (Inf/NaN components) when it is zero.
func SolveV0FromTarget(start, target vecmath.Vector3, tFlight float64) vecmath.Vector3 {
	return target.
		Sub(start).
		Sub(Gravity.Scale(0.5 * tFlight * tFlight)).
		Scale(1 / tFlight)
}

// SolveV0FromTargetChecked is SolveV0FromTarget with the flight time checked.
func SolveV0FromTargetChecked(start, target vecmath.Vector3, tFlight float64) (vecmath.Vector3, error) {
	if !(tFlight > 0) || math.IsInf(tFlight, 0) {
		return vecmath.Vector3{}, fmt.Errorf("flight time must be positive and finite, got %v", tFlight)
	}
	return SolveV0FromTarget(start, target, tFlight), nil
}
