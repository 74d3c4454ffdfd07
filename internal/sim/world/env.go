package world

import (
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// worldEnv is what one top-level command sees of the world. Nested commands
// reuse it, so they share its session.
type worldEnv struct {
	w    *World
	sess *edit.Session
}

func (w *World) newEnv() *worldEnv {
	return &worldEnv{w: w, sess: edit.NewSession()}
}

func (e *worldEnv) Tiles() store.TileStore { return e.w.tiles }
func (e *worldEnv) Catalog() edit.Catalog  { return e.w.catalogs }
func (e *worldEnv) Rules() edit.Rules      { return e.w.cfg.Rules }
func (e *worldEnv) Effects() edit.Effects  { return e }
func (e *worldEnv) Session() *edit.Session { return e.sess }

func (e *worldEnv) PeepSpawns() []model.PeepSpawn { return e.w.spawns }

func (e *worldEnv) SetPeepSpawns(spawns []model.PeepSpawn) { e.w.spawns = spawns }

func (e *worldEnv) RemoveLitter(xy model.TileXY, height int) {
	delete(e.w.litter, xy)
}

// InterruptPeeps stops pedestrians walking on the tile at or above height, so
// they re-path around the change.
func (e *worldEnv) InterruptPeeps(xy model.TileXY, height int) {
	for i := range e.w.peeps {
		p := &e.w.peeps[i]
		if p.Tile == xy && p.Height >= height {
			p.Interrupted = true
		}
	}
}

func (e *worldEnv) PlaySound(s edit.Sound, pos model.Position) {
	e.w.sounds = append(e.w.sounds, s)
}

func (w *World) countPaths(xy model.TileXY) int {
	n := 0
	for _, el := range w.tiles.Elements(xy) {
		if el.Type() == store.TypePath && !el.Common().Ghost {
			n++
		}
	}
	return n
}
