package config

import "time"

// World bounds
const (
	WorldHalfSize = 120.0
	MinHeight     = 0.5
	MaxHeight     = 8.0
)

// Obstacles are inflated by this much on x/z for movement and spawn checks
const (
	ObstacleClearance   = 1.1
	ObstacleMarginBelow = 0.5
	ObstacleMarginAbove = 1.0
)

// Hit volumes, relative to the entity position
const (
	HeadOffset     = 0.4
	HeadRadius     = 0.35
	BodyHalfHeight = 0.6
	BodyRadius     = 0.6
)

// Combat
const (
	MaxHealth         = 100
	MaxShotDamage     = 100.0
	DefaultShotDamage = 15.0
	DefaultMaxRange   = 80.0
	DefaultHeadshot   = 2.5
)

// Bots
const (
	DefaultBotCount       = 8
	DefaultBotDamage      = 10.0
	BotSpeed              = 4.2 // units per second
	BotTurnRate           = 2.5 // radians per second
	BotEyeHeight          = 1.6
	BotArrivalRadius      = 2.0
	BotInitialCooldown    = 800 * time.Millisecond
	BotFireCooldown       = 500 * time.Millisecond
	BotFireCooldownJitter = 400 * time.Millisecond
	DefaultBotLOSRetry    = 500 * time.Millisecond
	BotAimJitterXZ        = 0.4
	BotAimJitterY         = 0.15
)

// Respawn placement
const (
	RespawnTries     = 20
	RespawnJitter    = 1.0
	RespawnClearance = 2.0
	SpawnHeight      = 1.6
)

// Sessions
const (
	MaxNicknameLength = 24
	DefaultClass      = "assault"
	DefaultGamemode   = "ffa"
	ClientSendBuffer  = 256
	ProfileQueueSize  = 256
	ProfileIOTimeout  = 5 * time.Second
	MaxMessageSize    = 64 * 1024
)

// Tick rates
const (
	DefaultBroadcastInterval = 50 * time.Millisecond  // 20 Hz
	DefaultBotThinkInterval  = 200 * time.Millisecond // 5 Hz
)
