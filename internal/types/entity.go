package types

// EntityID identifies a human or bot for the lifetime of the process
type EntityID uint64

// EntityKind tells humans and bots apart
type EntityKind uint8

const (
	KindHuman EntityKind = iota
	KindBot
)

func (k EntityKind) String() string {
	if k == KindBot {
		return "bot"
	}
	return "human"
}

// Entity is the authoritative combat state of one participant
type Entity struct {
	ID       EntityID
	Name     string
	Kind     EntityKind
	Class    string
	Gamemode string
	Position Vector3
	RotY     float64 // radians about the vertical axis
	Health   int
	Kills    int
	Deaths   int

	// Humans only
	ProfileID string

	// Bots only
	AI *BotState
}

func (e *Entity) IsBot() bool {
	return e.Kind == KindBot
}

// BotState is the per-bot decision state
type BotState struct {
	Heading float64
	// Target is the current wander destination, nil when one must be picked
	Target *Vector3
	// Cooldown is the time left before the bot may fire, in milliseconds
	Cooldown float64
}

// ShotRequest is one fired ray, consumed by a single resolve call
type ShotRequest struct {
	ShooterID EntityID
	Origin    Vector3
	Direction Vector3
	Damage    float64
}
