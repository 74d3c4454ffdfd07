package landscape

import (
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// sceneryInReach matches small scenery touching [height, height+4].
func sceneryInReach(h *store.Header, height int) bool {
	return height <= h.ClearanceHeight && height+2*model.LandStep >= h.BaseHeight
}

func treeObstruction(env edit.Env, xy model.TileXY, height int) store.Element {
	for _, e := range env.Tiles().Elements(xy) {
		sc, ok := e.(*store.SmallScenery)
		if !ok || !sceneryInReach(&sc.Header, height) {
			continue
		}
		if def, ok := env.Catalog().Scenery(sc.Entry); ok && def.IsTree {
			return e
		}
	}
	return nil
}

// smallSceneryRemoval prices, and when remove is set deletes, the small
// scenery the new surface would bury.
func smallSceneryRemoval(env edit.Env, xy model.TileXY, height int, remove bool) model.Money {
	var cost model.Money
	tiles := env.Tiles()
	for _, e := range tiles.Elements(xy) {
		sc, ok := e.(*store.SmallScenery)
		if !ok || !sceneryInReach(&sc.Header, height) {
			continue
		}
		def, ok := env.Catalog().Scenery(sc.Entry)
		if !ok {
			continue
		}
		if !env.Rules().Park.NoMoney {
			cost += def.RemovalPrice
		}
		if remove {
			tiles.Remove(xy, e)
		}
	}
	return cost
}

func rideSupportsTooLong(env edit.Env, xy model.TileXY, height int) bool {
	for _, e := range env.Tiles().Elements(xy) {
		t, ok := e.(*store.Track)
		if !ok {
			continue
		}
		rt, ok := env.Catalog().RideType(t.RideType)
		if !ok {
			continue
		}
		if dz := t.ClearanceHeight - height; dz >= 0 && dz/2 > rt.MaxSupportHeight {
			return true
		}
	}
	return false
}

// floatingStructure returns the water-bound track piece that the new top
// corner would lift out of the water.
func floatingStructure(env edit.Env, sf *store.Surface, xy model.TileXY, top int) store.Element {
	if sf.WaterHeight == 0 {
		return nil
	}
	for _, e := range env.Tiles().Elements(xy) {
		t, ok := e.(*store.Track)
		if !ok {
			continue
		}
		if rt, ok := env.Catalog().RideType(t.RideType); ok && rt.NeedsWater && top > sf.WaterHeight-model.LandStep {
			return e
		}
	}
	return nil
}

// unremovableObstruction finds an element the new surface would swallow:
// things under the surface must stay under the new base, things above must
// stay above the new top corner.
func unremovableObstruction(tiles store.TileStore, xy model.TileXY, height, top int) store.Element {
	aboveSurface := false
	for _, e := range tiles.Elements(xy) {
		switch e.Type() {
		case store.TypeSurface:
			aboveSurface = true
			continue
		case store.TypeWall, store.TypeSmallScenery:
			continue
		}
		h := e.Common()
		if h.Ghost {
			continue
		}
		if aboveSurface {
			if top > h.BaseHeight {
				return e
			}
			continue
		}
		if height < h.ClearanceHeight {
			return e
		}
	}
	return nil
}

// removeWalls deletes walls whose base lies in [low, high].
func removeWalls(tiles store.TileStore, xy model.TileXY, low, high int) {
	for _, e := range tiles.Elements(xy) {
		w, ok := e.(*store.Wall)
		if !ok || w.BaseHeight < low || w.BaseHeight > high {
			continue
		}
		tiles.Remove(xy, e)
	}
}
