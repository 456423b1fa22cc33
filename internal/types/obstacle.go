package types

// Obstacle is a static axis-aligned box
type Obstacle struct {
	Min Vector3 `json:"min"`
	Max Vector3 `json:"max"`
}

// NewBuilding returns the box for a building footprint centered at (x, z)
func NewBuilding(x, z, width, depth, height float64) Obstacle {
	return Obstacle{
		Min: Vector3{X: x - width/2, Y: 0, Z: z - depth/2},
		Max: Vector3{X: x + width/2, Y: height, Z: z + depth/2},
	}
}

// Contains reports whether p lies strictly inside the box grown by
// clearance on x/z, below by marginBelow and above by marginAbove
func (o Obstacle) Contains(p Vector3, clearance, marginBelow, marginAbove float64) bool {
	return p.X > o.Min.X-clearance && p.X < o.Max.X+clearance &&
		p.Z > o.Min.Z-clearance && p.Z < o.Max.Z+clearance &&
		p.Y > o.Min.Y-marginBelow && p.Y < o.Max.Y+marginAbove
}

// Axis returns the min and max of the box along axis 0 (x), 1 (y) or 2 (z)
func (o Obstacle) Axis(axis int) (float64, float64) {
	switch axis {
	case 0:
		return o.Min.X, o.Max.X
	case 1:
		return o.Min.Y, o.Max.Y
	default:
		return o.Min.Z, o.Max.Z
	}
}
