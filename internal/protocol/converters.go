package protocol

import (
	"fmt"

	"github.com/lukinoo0/Blazefield/internal/types"
)

// ToPlayerState converts an entity to its snapshot entry
func ToPlayerState(e *types.Entity) PlayerState {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("Player%d", e.ID)
	}
	return PlayerState{
		ID:       e.ID,
		Nickname: name,
		X:        e.Position.X,
		Y:        e.Position.Y,
		Z:        e.Position.Z,
		RotY:     e.RotY,
		HP:       e.Health,
		IsBot:    e.IsBot(),
		Kills:    e.Kills,
		Deaths:   e.Deaths,
		Class:    e.Class,
		Gamemode: e.Gamemode,
	}
}

// ToSnapshot converts every entity into one snapshot message
func ToSnapshot(entities []*types.Entity) Snapshot {
	players := make([]PlayerState, 0, len(entities))
	for _, e := range entities {
		players = append(players, ToPlayerState(e))
	}
	return Snapshot{Type: TypeSnapshot, Players: players}
}
