package world

import (
	"fmt"

	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// ---- Debug/Test Helpers ----
//
// These helpers let black-box tests in sibling packages (e.g. internal/sim/worldtest)
// set up deterministic preconditions without reaching into world internals.
//
// They are NOT safe to call concurrently with Run(). Use them only from tests
// that drive the world via StepOnce(), from a single goroutine.

// DebugSetLand overwrites a tile's height and slope. It does not audit.
func (w *World) DebugSetLand(x, y, base int, sl uint8) error {
	sf := w.tiles.SurfaceAt(model.TileXY{X: x, Y: y})
	if sf == nil {
		return fmt.Errorf("out of bounds: %d,%d", x, y)
	}
	if !slope.Valid(sl) {
		return fmt.Errorf("invalid slope %#x", sl)
	}
	sf.SetHeight(base, sl)
	w.tiles.Resort(model.TileXY{X: x, Y: y})
	return nil
}

func (w *World) DebugSetOwnership(x, y int, ownership uint8) error {
	xy := model.TileXY{X: x, Y: y}
	sf := w.tiles.SurfaceAt(xy)
	if sf == nil {
		return fmt.Errorf("out of bounds: %d,%d", x, y)
	}
	sf.Ownership = ownership
	store.UpdateParkFencesAround(w.tiles, xy)
	return nil
}

// DebugSurface returns a copy of the tile's surface.
func (w *World) DebugSurface(x, y int) (store.Surface, bool) {
	sf := w.tiles.SurfaceAt(model.TileXY{X: x, Y: y})
	if sf == nil {
		return store.Surface{}, false
	}
	return *sf, true
}

func (w *World) DebugPlace(x, y int, e store.Element) error {
	return w.tiles.Insert(model.TileXY{X: x, Y: y}, e)
}

func (w *World) DebugElements(x, y int) []store.Element {
	return w.tiles.Elements(model.TileXY{X: x, Y: y})
}

func (w *World) DebugSetCash(m model.Money) { w.cash = m }

func (w *World) DebugAddPeep(id string, x, y, height int) {
	w.peeps = append(w.peeps, model.Peep{ID: id, Tile: model.TileXY{X: x, Y: y}, Height: height})
}

func (w *World) DebugPeeps() []model.Peep {
	return append([]model.Peep(nil), w.peeps...)
}

func (w *World) DebugAddLitter(x, y, n int) {
	w.litter[model.TileXY{X: x, Y: y}] += n
}

func (w *World) DebugLitter(x, y int) int { return w.litter[model.TileXY{X: x, Y: y}] }

func (w *World) DebugPeepSpawns() []model.PeepSpawn {
	return append([]model.PeepSpawn(nil), w.spawns...)
}

func (w *World) DebugStateDigest(nowTick uint64) string { return w.stateDigest(nowTick) }
