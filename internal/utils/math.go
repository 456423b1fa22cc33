package utils

import (
	"math"

	"github.com/lukinoo0/Blazefield/internal/types"
)

// Directions smaller than this on an axis are treated as parallel to it
const parallelEpsilon = 1e-6

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// WrapAngle maps an angle difference onto [-Pi, Pi)
func WrapAngle(diff float64) float64 {
	wrapped := math.Mod(diff+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// LerpAngle moves a toward b by fraction t along the shortest arc
func LerpAngle(a, b, t float64) float64 {
	return a + WrapAngle(b-a)*t
}

// SegmentHitsBox runs the slab test for the segment origin + dir*[0, dist].
// dir must be normalized. An axis the ray runs parallel to only passes when
// the origin already lies inside that slab.
func SegmentHitsBox(origin, dir types.Vector3, dist float64, box types.Obstacle) bool {
	tmin, tmax := 0.0, dist

	for axis := range 3 {
		o := origin.Component(axis)
		d := dir.Component(axis)
		lo, hi := box.Axis(axis)

		if math.Abs(d) < parallelEpsilon {
			if o < lo || o > hi {
				return false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		tmin = math.Max(tmin, math.Min(t1, t2))
		tmax = math.Min(tmax, math.Max(t1, t2))
		if tmin > tmax {
			return false
		}
	}

	return tmin >= 0 && tmin <= dist
}

// RaySphere returns the entry distance of a normalized ray into a sphere,
// limited to (0, maxT]
func RaySphere(origin, dir, center types.Vector3, radius, maxT float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.LengthSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	return inRange(-b-math.Sqrt(disc), maxT)
}

// RayCapsule returns the entry distance of a normalized ray into the capsule
// around segment p1-p2 with radius r, limited to (0, maxT]
func RayCapsule(origin, dir, p1, p2 types.Vector3, r, maxT float64) (float64, bool) {
	ba := p2.Sub(p1)
	oa := origin.Sub(p1)
	baba := ba.Dot(ba)
	bard := ba.Dot(dir)
	baoa := ba.Dot(oa)
	rdoa := dir.Dot(oa)
	oaoa := oa.Dot(oa)

	a := baba - bard*bard
	b := baba*rdoa - baoa*bard
	c := baba*oaoa - baoa*baoa - r*r*baba
	h := b*b - a*c
	if h < 0 {
		return 0, false
	}

	// Cylinder body, skipped when the ray runs along the axis
	if a > parallelEpsilon {
		t := (-b - math.Sqrt(h)) / a
		y := baoa + t*bard
		if y > 0 && y < baba {
			return inRange(t, maxT)
		}
	}

	// End caps
	t1, ok1 := RaySphere(origin, dir, p1, r, maxT)
	t2, ok2 := RaySphere(origin, dir, p2, r, maxT)
	switch {
	case ok1 && ok2:
		return math.Min(t1, t2), true
	case ok1:
		return t1, true
	case ok2:
		return t2, true
	}
	return 0, false
}

func inRange(t, maxT float64) (float64, bool) {
	if t <= 0 || t > maxT || math.IsNaN(t) {
		return 0, false
	}
	return t, true
}
