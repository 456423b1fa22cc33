package types

import "math"

// Vector3 represents a point or direction in world space (y is up)
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) LengthSq() float64 {
	return v.Dot(v)
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// DistanceSq returns the squared 3D distance between two points
func (v Vector3) DistanceSq(o Vector3) float64 {
	return v.Sub(o).LengthSq()
}

// DistanceSqXZ returns the squared distance on the ground plane
func (v Vector3) DistanceSqXZ(o Vector3) float64 {
	dx := v.X - o.X
	dz := v.Z - o.Z
	return dx*dx + dz*dz
}

// Normalize returns the unit vector and false when v has zero length
func (v Vector3) Normalize() (Vector3, bool) {
	length := v.Length()
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return Vector3{}, false
	}
	return v.Scale(1 / length), true
}

func (v Vector3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Component returns v's coordinate along axis 0 (x), 1 (y) or 2 (z)
func (v Vector3) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Heading returns the unit ground direction for a rotation about the vertical axis
func Heading(rotY float64) Vector3 {
	return Vector3{X: math.Sin(rotY), Y: 0, Z: math.Cos(rotY)}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
