package game

import "github.com/lukinoo0/Blazefield/internal/types"

// World is the static map: blocking volumes and spawn candidates
type World struct {
	Obstacles   []types.Obstacle
	SpawnPoints []types.Vector3
}

// DefaultWorld returns the town map the client renders
func DefaultWorld() World {
	buildings := []struct{ x, z, w, d, h float64 }{
		{-40, -10, 18, 16, 12},
		{30, -12, 20, 16, 12},
		{-10, 30, 16, 20, 10},
		{32, 30, 14, 14, 12},
		{-55, 18, 16, 16, 10},
		{14, -50, 18, 16, 10},
		{0, 0, 12, 10, 9},
		{-34, -44, 18, 16, 10},
		{52, 4, 14, 12, 10},
		{0, 60, 18, 14, 9},
		{-60, -40, 16, 16, 10},
	}

	obstacles := make([]types.Obstacle, 0, len(buildings)+len(coverProps))
	for _, b := range buildings {
		obstacles = append(obstacles, types.NewBuilding(b.x, b.z, b.w, b.d, b.h))
	}
	obstacles = append(obstacles, coverProps...)

	spawns := make([]types.Vector3, 0, len(spawnGround))
	for _, p := range spawnGround {
		spawns = append(spawns, types.Vector3{X: p[0], Y: 0, Z: p[1]})
	}

	return World{Obstacles: obstacles, SpawnPoints: spawns}
}

// Crates, pillars and low walls
var coverProps = []types.Obstacle{
	box(-8, 0, 2, -4, 2, 6),
	box(0, 0, -10, 4, 2, -6),
	box(10, 0, 4, 14, 3, 8),
	box(-14, 0, -2, -10, 2.5, 2),
	box(6, 0, 10, 8, 4, 12),
	box(-16, 0, 4, -14, 4, 6),
	box(-14, 0, -10, -10, 2.5, -6),
	box(18, 0, -14, 22, 3, -10),
	box(6, 0, 14, 10, 3, 18),
	box(-8, 0, 24, 2, 3.5, 30),
	box(16, 0, -26, 28, 4, -18),
	box(-28, 0, -28, -20, 3, -20),
	box(-12, 0, 32, 4, 4, 38),
	box(20, 0, 52, 34, 4, 60),
	box(46, 0, -8, 58, 6, 10),
	box(-14, 0, 20, -2, 4, 30),
	box(16, 0, -26, 28, 5, -14),
	box(-30, 0, -30, -18, 4, -18),
	box(6, 0, 44, 16, 4, 56),
}

// Spawn candidates on the ground plane (x, z), along building edges and entrances
var spawnGround = [][2]float64{
	{-42, -21}, {-36, 10}, {26, -29}, {44, -12}, {-10, 17},
	{-10, 43}, {30, 14}, {42, 36}, {-56, 7}, {-50, 32},
	{8, -34}, {2, -54}, {-44, -30}, {52, 13}, {12, 11},
	{-6, -10}, {0, 70}, {-62, -26}, {22, 49}, {-30, 52},
}

func box(minX, minY, minZ, maxX, maxY, maxZ float64) types.Obstacle {
	return types.Obstacle{
		Min: types.Vector3{X: minX, Y: minY, Z: minZ},
		Max: types.Vector3{X: maxX, Y: maxY, Z: maxZ},
	}
}
