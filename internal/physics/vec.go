package physics

import "math"

// Vec3 is a position, velocity, or direction in world space. Y is up.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) LengthSq() float64 {
	return v.Dot(v)
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// Normalized returns the unit vector in v's direction, or the zero vector
// when v is too short to carry a direction.
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length <= vecEpsilon {
		return Vec3{}
	}
	return v.Scale(1 / length)
}

// Horizontal drops the vertical component.
func (v Vec3) Horizontal() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// HorizontalLength is the speed over the ground plane.
func (v Vec3) HorizontalLength() float64 {
	return math.Sqrt(v.X*v.X + v.Z*v.Z)
}

const vecEpsilon = 1e-9
