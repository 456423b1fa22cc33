package game

import (
	"math"
	"math/rand"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/types"
)

// Spawner picks respawn locations away from other entities
type Spawner struct {
	points []types.Vector3
	rng    *rand.Rand
}

func NewSpawner(points []types.Vector3, rng *rand.Rand) *Spawner {
	return &Spawner{points: append([]types.Vector3(nil), points...), rng: rng}
}

// Pick tries a bounded number of jittered spawn points and returns the first
// one with no entity other than exclude inside the clearance radius. When
// every try fails it returns the first spawn point.
func (s *Spawner) Pick(store *Store, exclude types.EntityID) types.Vector3 {
	if len(s.points) == 0 {
		return types.Vector3{Y: config.SpawnHeight}
	}

	for range config.RespawnTries {
		base := s.points[s.rng.Intn(len(s.points))]
		candidate := types.Vector3{
			X: base.X + (s.rng.Float64()-0.5)*2*config.RespawnJitter,
			Y: config.SpawnHeight,
			Z: base.Z + (s.rng.Float64()-0.5)*2*config.RespawnJitter,
		}
		if s.isClear(store, candidate, exclude) {
			return candidate
		}
	}

	return s.Fallback()
}

// Fallback is the deterministic spawn used when placement gives up
func (s *Spawner) Fallback() types.Vector3 {
	if len(s.points) == 0 {
		return types.Vector3{Y: config.SpawnHeight}
	}
	return types.Vector3{X: s.points[0].X, Y: config.SpawnHeight, Z: s.points[0].Z}
}

func (s *Spawner) isClear(store *Store, candidate types.Vector3, exclude types.EntityID) bool {
	minDistSq := config.RespawnClearance * config.RespawnClearance
	for _, entity := range store.All() {
		if entity.ID == exclude {
			continue
		}
		if entity.Position.DistanceSqXZ(candidate) < minDistSq {
			return false
		}
	}
	return true
}

// DamageOutcome reports what ApplyDamage did to the target
type DamageOutcome struct {
	Health   int
	Killed   bool
	Spawn    types.Vector3
	Credited bool // attacker kill counter was incremented
}

// ApplyDamage subtracts amount from the target. A lethal hit respawns the
// target in place at full health, so health never rests at or below zero.
// attacker may be nil when the shooter has already left.
func ApplyDamage(store *Store, spawner *Spawner, target, attacker *types.Entity, amount int) DamageOutcome {
	if amount < 0 {
		amount = 0
	}

	target.Health = min(config.MaxHealth, target.Health-amount)
	if target.Health > 0 {
		return DamageOutcome{Health: target.Health}
	}

	spawn := spawner.Pick(store, target.ID)
	target.Health = config.MaxHealth
	target.Position = spawn
	target.RotY = 0
	target.Deaths++
	if target.AI != nil {
		target.AI.Target = nil
	}

	outcome := DamageOutcome{Health: target.Health, Killed: true, Spawn: spawn}
	if attacker != nil && attacker.ID != target.ID {
		attacker.Kills++
		outcome.Credited = true
	}
	return outcome
}

// DamagePoints rounds a scaled damage value to whole health points
func DamagePoints(damage float64) int {
	if math.IsNaN(damage) || damage <= 0 {
		return 0
	}
	return int(math.Round(math.Min(damage, math.MaxInt32)))
}
