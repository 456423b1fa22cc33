package game

import (
	"math"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/types"
	"github.com/lukinoo0/Blazefield/internal/utils"
)

// Hitbox describes the head sphere and body capsule relative to an entity position
type Hitbox struct {
	HeadOffset     float64
	HeadRadius     float64
	BodyHalfHeight float64
	BodyRadius     float64
}

func DefaultHitbox() Hitbox {
	return Hitbox{
		HeadOffset:     config.HeadOffset,
		HeadRadius:     config.HeadRadius,
		BodyHalfHeight: config.BodyHalfHeight,
		BodyRadius:     config.BodyRadius,
	}
}

// Hit is the outcome of one resolved shot
type Hit struct {
	Target   *types.Entity
	Headshot bool
	Distance float64
	Damage   float64
}

// Resolver turns shot requests into hits against the store
type Resolver struct {
	MaxRange           float64
	HeadshotMultiplier float64
	Hitbox             Hitbox
}

func NewResolver(cfg config.GameConfig) *Resolver {
	return &Resolver{
		MaxRange:           cfg.MaxShotRange,
		HeadshotMultiplier: cfg.HeadshotMultiplier,
		Hitbox:             DefaultHitbox(),
	}
}

// Resolve finds the nearest entity struck by the shot, never the shooter.
// The shot direction is normalized here; a zero direction falls back to the
// shooter's facing, or +z when the shooter is gone.
func (r *Resolver) Resolve(store *Store, shot types.ShotRequest) (Hit, bool) {
	dir := r.direction(store, shot)

	var best Hit
	bestT := math.Inf(1)

	for _, target := range store.All() {
		if target.ID == shot.ShooterID {
			continue
		}

		t, head, ok := r.intersect(shot.Origin, dir, target.Position)
		if !ok || t >= bestT {
			continue
		}
		bestT = t
		best = Hit{Target: target, Headshot: head, Distance: t}
	}

	if best.Target == nil {
		return Hit{}, false
	}

	best.Damage = shot.Damage
	if best.Headshot {
		best.Damage *= r.HeadshotMultiplier
	}
	return best, true
}

// intersect tests the head sphere and body capsule of one entity. The head
// only wins when it is strictly closer than the body.
func (r *Resolver) intersect(origin, dir, position types.Vector3) (float64, bool, bool) {
	hb := r.Hitbox
	head := types.Vector3{X: position.X, Y: position.Y + hb.HeadOffset, Z: position.Z}
	bodyLow := types.Vector3{X: position.X, Y: position.Y - hb.BodyHalfHeight, Z: position.Z}
	bodyHigh := types.Vector3{X: position.X, Y: position.Y + hb.BodyHalfHeight, Z: position.Z}

	tHead, headOK := utils.RaySphere(origin, dir, head, hb.HeadRadius, r.MaxRange)
	tBody, bodyOK := utils.RayCapsule(origin, dir, bodyLow, bodyHigh, hb.BodyRadius, r.MaxRange)

	switch {
	case headOK && (!bodyOK || tHead < tBody):
		return tHead, true, true
	case bodyOK:
		return tBody, false, true
	}
	return 0, false, false
}

func (r *Resolver) direction(store *Store, shot types.ShotRequest) types.Vector3 {
	if dir, ok := shot.Direction.Normalize(); ok {
		return dir
	}
	if shooter, exists := store.Get(shot.ShooterID); exists {
		return types.Heading(shooter.RotY)
	}
	return types.Vector3{Z: 1}
}
