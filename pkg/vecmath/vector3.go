package vecmath

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector3 is a point or direction in court coordinates (meters).
// X runs across the net (negative on the attacking side), Y is lateral, Z is up.
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Add returns the sum of two vectors
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub returns the difference between two vectors
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Scale returns the vector scaled by a scalar
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{
		X: v.X * s,
		Y: v.Y * s,
		Z: v.Z * s,
	}
}

// Dot returns the dot product of two vectors
func (v Vector3) Dot(other Vector3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Magnitude returns the length of the vector
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns a unit vector in the same direction
func (v Vector3) Normalize() Vector3 {
	mag := v.Magnitude()
	if mag == 0 {
		return v
	}
	return v.Scale(1.0 / mag)
}

// Distance returns the distance between two points
func (v Vector3) Distance(other Vector3) float64 {
	return v.Sub(other).Magnitude()
}

// Lerp returns the point a fraction s of the way from v to other.
func (v Vector3) Lerp(other Vector3, s float64) Vector3 {
	return v.Add(other.Sub(v).Scale(s))
}

// IsZero checks if the vector is zero
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
// n == 1 yields just lo, n <= 0 yields nil.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	vals := floats.Span(make([]float64, n), lo, hi)
	vals[n-1] = hi
	return vals
}

// Bounds returns the per-axis minimum and maximum of a point set.
func Bounds(points []Vector3) (lo, hi Vector3) {
	if len(points) == 0 {
		return Vector3{}, Vector3{}
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	zs := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	lo = Vector3{X: floats.Min(xs), Y: floats.Min(ys), Z: floats.Min(zs)}
	hi = Vector3{X: floats.Max(xs), Y: floats.Max(ys), Z: floats.Max(zs)}
	return lo, hi
}
