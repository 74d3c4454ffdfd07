package footpath

import (
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
)

// spawnInset pulls a spawn from the tile centre towards the map edge.
const spawnInset = 15

// autoPeepSpawn moves the first peep spawn onto a path built next to the map
// edge, facing into the park. Paths elsewhere leave the spawns alone.
func autoPeepSpawn(env edit.Env, xy model.TileXY, height int) {
	size := env.Tiles().Size()
	var d model.Direction
	switch {
	case xy.X == 1:
		d = 0
	case xy.Y == size-2:
		d = 1
	case xy.X == size-2:
		d = 2
	case xy.Y == 1:
		d = 3
	default:
		return
	}
	delta := d.Delta()
	spawn := model.PeepSpawn{
		X:         xy.X*model.TileSize + delta.X*spawnInset + model.TileSize/2,
		Y:         xy.Y*model.TileSize + delta.Y*spawnInset + model.TileSize/2,
		Z:         height * model.ZStep,
		Direction: d,
	}
	spawns := append([]model.PeepSpawn(nil), env.PeepSpawns()...)
	if len(spawns) == 0 {
		spawns = append(spawns, spawn)
	} else {
		spawns[0] = spawn
	}
	env.SetPeepSpawns(spawns)
}
