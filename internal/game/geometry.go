package game

import (
	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/types"
	"github.com/lukinoo0/Blazefield/internal/utils"
)

// GeometryIndex answers collision and line-of-sight queries against the
// static obstacles. It is immutable after construction and safe for
// concurrent use.
type GeometryIndex struct {
	obstacles []types.Obstacle
}

// NewGeometryIndex copies the obstacle list
func NewGeometryIndex(obstacles []types.Obstacle) *GeometryIndex {
	return &GeometryIndex{obstacles: append([]types.Obstacle(nil), obstacles...)}
}

// BlocksRay reports whether any obstacle intersects origin + dir*[0, maxDistance].
// dir must be normalized.
func (g *GeometryIndex) BlocksRay(origin, dir types.Vector3, maxDistance float64) bool {
	for _, obstacle := range g.obstacles {
		if utils.SegmentHitsBox(origin, dir, maxDistance, obstacle) {
			return true
		}
	}
	return false
}

// HasLineOfSight reports whether the straight segment from -> to is clear
func (g *GeometryIndex) HasLineOfSight(from, to types.Vector3) bool {
	delta := to.Sub(from)
	dist := delta.Length()
	dir, ok := delta.Normalize()
	if !ok {
		return true
	}
	return !g.BlocksRay(from, dir, dist)
}

// OverlapsObstacle reports whether point lies inside any obstacle grown by
// clearance on the ground plane and by the fixed vertical margins
func (g *GeometryIndex) OverlapsObstacle(point types.Vector3, clearance float64) bool {
	for _, obstacle := range g.obstacles {
		if obstacle.Contains(point, clearance, config.ObstacleMarginBelow, config.ObstacleMarginAbove) {
			return true
		}
	}
	return false
}

// Collides is OverlapsObstacle with the standard movement clearance
func (g *GeometryIndex) Collides(point types.Vector3) bool {
	return g.OverlapsObstacle(point, config.ObstacleClearance)
}

func (g *GeometryIndex) Len() int {
	return len(g.obstacles)
}
