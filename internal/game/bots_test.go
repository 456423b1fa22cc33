package game

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/protocol"
	"github.com/lukinoo0/Blazefield/internal/types"
)

const tick = 200 * time.Millisecond

func addBot(e *Engine, pos types.Vector3, ai *types.BotState) types.EntityID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.AddBot("Viktor", pos, ai).ID
}

func botState(e *Engine, id types.EntityID) types.BotState {
	e.mu.Lock()
	defer e.mu.Unlock()
	bot, _ := e.store.Get(id)
	return *bot.AI
}

func TestBots_SpawnWithNamesAndCooldown(t *testing.T) {
	cfg := testConfig()
	cfg.BotCount = config.DefaultBotCount
	e := newTestEngine(Options{Config: cfg})

	bots := 0
	for _, p := range e.Snapshot() {
		require.True(t, p.IsBot)
		assert.NotEmpty(t, p.Nickname)
		assert.Equal(t, config.MaxHealth, p.HP)
		bots++
	}
	assert.Equal(t, config.DefaultBotCount, bots)
	for _, bot := range e.store.Bots() {
		assert.Equal(t, 800.0, bot.AI.Cooldown)
	}
}

func TestBots_FireAtVisibleHuman(t *testing.T) {
	e := newTestEngine(Options{})
	human, conn := connect(t, e, types.Vector3{Y: 1.6, Z: 10})
	bot := addBot(e, types.Vector3{Y: 1.6, Z: -10}, &types.BotState{})

	e.ThinkBots(tick)

	entity, _ := e.Entity(human)
	assert.Equal(t, 100-int(config.DefaultBotDamage), entity.Health)

	hits := received[protocol.HitInfo](conn)
	require.Len(t, hits, 1)
	assert.Equal(t, "Viktor", hits[0].Killer)

	cooldown := botState(e, bot).Cooldown
	assert.GreaterOrEqual(t, cooldown, 500.0)
	assert.Less(t, cooldown, 900.0)
}

func TestBots_RetryWhenLineOfSightBlocked(t *testing.T) {
	e := newTestEngine(Options{World: World{
		Obstacles:   []types.Obstacle{box(-20, 0, -2, 20, 10, 2)},
		SpawnPoints: testSpawns,
	}})
	human, conn := connect(t, e, types.Vector3{Y: 1.6, Z: 10})
	bot := addBot(e, types.Vector3{Y: 1.6, Z: -10}, &types.BotState{})

	e.ThinkBots(tick)

	entity, _ := e.Entity(human)
	assert.Equal(t, config.MaxHealth, entity.Health)
	assert.Empty(t, received[protocol.HitInfo](conn))
	assert.Equal(t, 500.0, botState(e, bot).Cooldown)
}

func TestBots_CooldownCountsDown(t *testing.T) {
	e := newTestEngine(Options{})
	human, _ := connect(t, e, types.Vector3{Y: 1.6, Z: 10})
	bot := addBot(e, types.Vector3{Y: 1.6, Z: -10}, &types.BotState{Cooldown: 800})

	e.ThinkBots(tick)

	assert.Equal(t, 600.0, botState(e, bot).Cooldown)
	entity, _ := e.Entity(human)
	assert.Equal(t, config.MaxHealth, entity.Health)
}

func TestBots_TurnAwayFromObstacle(t *testing.T) {
	e := newTestEngine(Options{World: World{
		Obstacles:   []types.Obstacle{box(-20, 0, -2, 20, 10, 2)},
		SpawnPoints: testSpawns,
	}})
	start := types.Vector3{Y: 1.6, Z: -3.5}
	bot := addBot(e, start, &types.BotState{Target: &types.Vector3{Y: 1.6, Z: 50}})

	e.ThinkBots(tick)

	entity, _ := e.Entity(bot)
	assert.Equal(t, start, entity.Position)
	state := botState(e, bot)
	assert.Nil(t, state.Target)
	assert.InDelta(t, math.Pi/2, math.Abs(state.Heading), 1e-9)
}

func TestBots_WalkTowardTarget(t *testing.T) {
	e := newTestEngine(Options{})
	start := types.Vector3{Y: 1.6}
	bot := addBot(e, start, &types.BotState{Target: &types.Vector3{Y: 1.6, Z: 50}})

	e.ThinkBots(tick)

	entity, _ := e.Entity(bot)
	assert.InDelta(t, config.BotSpeed*tick.Seconds(), entity.Position.Z, 1e-9)
	assert.InDelta(t, 0, entity.Position.X, 1e-9)
	assert.InDelta(t, 0, entity.RotY, 1e-9)
}
