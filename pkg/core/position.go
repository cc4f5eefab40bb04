// pkg/core/position.go
package core

import "math"

// Position3D is a point or displacement in the planet-fixed (ECEF) frame,
// in meters. It doubles as a plain 3D vector so hot-path math stays on
// stack-allocated values.
type Position3D struct {
	X float64
	Y float64
	Z float64
}

// Add returns the component-wise sum.
func (p Position3D) Add(o Position3D) Position3D {
	return Position3D{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Sub returns the component-wise difference.
func (p Position3D) Sub(o Position3D) Position3D {
	return Position3D{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

// Scale returns the vector scaled by k.
func (p Position3D) Scale(k float64) Position3D {
	return Position3D{X: p.X * k, Y: p.Y * k, Z: p.Z * k}
}

// Dot returns the dot product.
func (p Position3D) Dot(o Position3D) float64 {
	return p.X*o.X + p.Y*o.Y + p.Z*o.Z
}

// Cross returns the cross product.
func (p Position3D) Cross(o Position3D) Position3D {
	return Position3D{
		X: p.Y*o.Z - p.Z*o.Y,
		Y: p.Z*o.X - p.X*o.Z,
		Z: p.X*o.Y - p.Y*o.X,
	}
}

// Norm returns the Euclidean length.
func (p Position3D) Norm() float64 {
	return math.Sqrt(p.Dot(p))
}

// Normalize returns a unit vector in the same direction, or the zero
// vector if the length is zero.
func (p Position3D) Normalize() Position3D {
	n := p.Norm()
	if n == 0 {
		return Position3D{}
	}
	return p.Scale(1 / n)
}
