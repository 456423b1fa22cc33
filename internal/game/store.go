package game

import (
	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/types"
	"github.com/lukinoo0/Blazefield/internal/utils"
)

// Store maps entity identifiers to their authoritative state.
// It does no locking of its own; the Engine serializes access.
type Store struct {
	entities map[types.EntityID]*types.Entity
	nextID   types.EntityID
}

// NewStore creates an empty store. Identifiers start at 1 and are never reused.
func NewStore() *Store {
	return &Store{
		entities: make(map[types.EntityID]*types.Entity),
		nextID:   1,
	}
}

func (s *Store) allocate() types.EntityID {
	id := s.nextID
	s.nextID++
	return id
}

// AddHuman creates a human entity at a provisional spawn
func (s *Store) AddHuman(spawn types.Vector3) *types.Entity {
	entity := &types.Entity{
		ID:       s.allocate(),
		Kind:     types.KindHuman,
		Class:    config.DefaultClass,
		Gamemode: config.DefaultGamemode,
		Position: ClampPosition(spawn),
		Health:   config.MaxHealth,
	}
	s.entities[entity.ID] = entity
	return entity
}

// AddBot creates a bot entity with its decision state
func (s *Store) AddBot(name string, spawn types.Vector3, ai *types.BotState) *types.Entity {
	entity := &types.Entity{
		ID:       s.allocate(),
		Name:     name,
		Kind:     types.KindBot,
		Class:    config.DefaultClass,
		Gamemode: config.DefaultGamemode,
		Position: ClampPosition(spawn),
		Health:   config.MaxHealth,
		AI:       ai,
	}
	s.entities[entity.ID] = entity
	return entity
}

// Remove deletes an entity. Removing an unknown id is a no-op.
func (s *Store) Remove(id types.EntityID) bool {
	if _, exists := s.entities[id]; !exists {
		return false
	}
	delete(s.entities, id)
	return true
}

func (s *Store) Get(id types.EntityID) (*types.Entity, bool) {
	entity, exists := s.entities[id]
	return entity, exists
}

// All returns every entity in unspecified order
func (s *Store) All() []*types.Entity {
	all := make([]*types.Entity, 0, len(s.entities))
	for _, entity := range s.entities {
		all = append(all, entity)
	}
	return all
}

// Humans returns the connected human entities in unspecified order
func (s *Store) Humans() []*types.Entity {
	humans := make([]*types.Entity, 0, len(s.entities))
	for _, entity := range s.entities {
		if !entity.IsBot() {
			humans = append(humans, entity)
		}
	}
	return humans
}

// Bots returns the bot entities in unspecified order
func (s *Store) Bots() []*types.Entity {
	bots := make([]*types.Entity, 0, len(s.entities))
	for _, entity := range s.entities {
		if entity.IsBot() {
			bots = append(bots, entity)
		}
	}
	return bots
}

func (s *Store) Len() int {
	return len(s.entities)
}

// ApplyState stores a client-reported position and heading. Updates with a
// non-finite field are dropped and leave the entity untouched.
func (s *Store) ApplyState(id types.EntityID, position types.Vector3, rotY float64) bool {
	entity, exists := s.entities[id]
	if !exists {
		return false
	}
	if !position.IsFinite() || !utils.IsFinite(rotY) {
		return false
	}
	entity.Position = ClampPosition(position)
	entity.RotY = rotY
	return true
}

// ClampPosition keeps a point inside the playable volume
func ClampPosition(p types.Vector3) types.Vector3 {
	return types.Vector3{
		X: utils.Clamp(p.X, -config.WorldHalfSize, config.WorldHalfSize),
		Y: utils.Clamp(p.Y, config.MinHeight, config.MaxHeight),
		Z: utils.Clamp(p.Z, -config.WorldHalfSize, config.WorldHalfSize),
	}
}
