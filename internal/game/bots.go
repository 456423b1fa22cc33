package game

import (
	"math"
	"math/rand"
	"time"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/types"
	"github.com/lukinoo0/Blazefield/internal/utils"
)

var botNames = []string{
	"Alfred", "Viktor", "Lukas", "Adrian", "Simon",
	"David", "Martin", "Tobias", "Marek", "Samuel",
	"Oliver", "Daniel", "Jakub", "Peter", "Filip",
}

// BotController drives every bot: wandering, obstacle avoidance and firing
// at the nearest human
type BotController struct {
	store    *Store
	geometry *GeometryIndex
	spawner  *Spawner
	rng      *rand.Rand

	maxRange  float64
	damage    float64
	losRetry  time.Duration
	turnRate  float64
	moveSpeed float64
}

func NewBotController(store *Store, geometry *GeometryIndex, spawner *Spawner, rng *rand.Rand, cfg config.GameConfig) *BotController {
	return &BotController{
		store:     store,
		geometry:  geometry,
		spawner:   spawner,
		rng:       rng,
		maxRange:  cfg.MaxShotRange,
		damage:    cfg.BotDamage,
		losRetry:  cfg.BotLOSRetry,
		turnRate:  config.BotTurnRate,
		moveSpeed: config.BotSpeed,
	}
}

// Spawn creates count bots with random names
func (b *BotController) Spawn(count int) []*types.Entity {
	bots := make([]*types.Entity, 0, count)
	for range count {
		name := botNames[b.rng.Intn(len(botNames))]
		ai := &types.BotState{
			Heading:  b.rng.Float64() * 2 * math.Pi,
			Cooldown: milliseconds(config.BotInitialCooldown),
		}
		bots = append(bots, b.store.AddBot(name, b.spawner.Pick(b.store, 0), ai))
	}
	return bots
}

// Think advances every bot by dt. Shots are handed to fire one at a time so
// each bot sees the results of the previous bot's shot.
func (b *BotController) Think(dt time.Duration, fire func(types.ShotRequest)) {
	for _, bot := range b.store.Bots() {
		if bot.AI == nil {
			continue
		}
		b.steer(bot, dt)
		b.engage(bot, dt, fire)
	}
}

func (b *BotController) steer(bot *types.Entity, dt time.Duration) {
	ai := bot.AI
	secs := dt.Seconds()

	if ai.Target == nil ||
		bot.Position.DistanceSq(*ai.Target) < config.BotArrivalRadius*config.BotArrivalRadius ||
		b.geometry.Collides(*ai.Target) {
		target := b.spawner.Pick(b.store, bot.ID)
		ai.Target = &target
	}

	desired := math.Atan2(ai.Target.X-bot.Position.X, ai.Target.Z-bot.Position.Z)
	ai.Heading = utils.LerpAngle(ai.Heading, desired, math.Min(1, b.turnRate*secs))
	bot.RotY = ai.Heading

	step := b.moveSpeed * secs
	next := ClampPosition(types.Vector3{
		X: bot.Position.X + math.Sin(ai.Heading)*step,
		Y: bot.Position.Y,
		Z: bot.Position.Z + math.Cos(ai.Heading)*step,
	})

	if b.geometry.Collides(next) {
		turn := math.Pi / 2
		if b.rng.Float64() < 0.5 {
			turn = -turn
		}
		ai.Heading += turn
		ai.Target = nil
		return
	}
	bot.Position = next
}

func (b *BotController) engage(bot *types.Entity, dt time.Duration, fire func(types.ShotRequest)) {
	target := b.nearestHuman(bot)
	if target == nil {
		return
	}

	ai := bot.AI
	ai.Cooldown -= milliseconds(dt)

	delta := target.Position.Sub(bot.Position)
	if ai.Cooldown > 0 || delta.LengthSq() >= b.maxRange*b.maxRange {
		return
	}

	origin := types.Vector3{X: bot.Position.X, Y: config.BotEyeHeight, Z: bot.Position.Z}
	if !b.geometry.HasLineOfSight(origin, target.Position) {
		ai.Cooldown = milliseconds(b.losRetry)
		return
	}

	ai.Cooldown = milliseconds(config.BotFireCooldown) + b.rng.Float64()*milliseconds(config.BotFireCooldownJitter)
	aim := types.Vector3{
		X: delta.X + b.jitter(config.BotAimJitterXZ),
		Y: delta.Y + b.jitter(config.BotAimJitterY),
		Z: delta.Z + b.jitter(config.BotAimJitterXZ),
	}
	fire(types.ShotRequest{
		ShooterID: bot.ID,
		Origin:    origin,
		Direction: aim,
		Damage:    b.damage,
	})
}

// nearestHuman picks by squared 3D distance with no range limit
func (b *BotController) nearestHuman(bot *types.Entity) *types.Entity {
	var best *types.Entity
	bestDistSq := math.Inf(1)
	for _, human := range b.store.Humans() {
		distSq := human.Position.DistanceSq(bot.Position)
		if distSq < bestDistSq {
			best = human
			bestDistSq = distSq
		}
	}
	return best
}

// jitter returns a uniform offset in [-amount, amount)
func (b *BotController) jitter(amount float64) float64 {
	return (b.rng.Float64() - 0.5) * 2 * amount
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
