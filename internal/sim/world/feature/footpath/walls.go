package footpath

import (
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

func wallOverlaps(w *store.Wall, low, high int) bool {
	return w.BaseHeight < high && w.ClearanceHeight > low
}

// removeWallsFacing deletes walls on the tile's edge in direction d that
// overlap [low, high).
func removeWallsFacing(tiles store.TileStore, xy model.TileXY, d model.Direction, low, high int) {
	for _, e := range tiles.Elements(xy) {
		w, ok := e.(*store.Wall)
		if !ok || w.Direction != d || !wallOverlaps(w, low, high) {
			continue
		}
		tiles.Remove(xy, e)
		tiles.InvalidateTile(xy)
	}
}

// removeIntersectingWalls deletes every wall the path's volume cuts through.
func removeIntersectingWalls(tiles store.TileStore, xy model.TileXY, path *store.Path) {
	for _, e := range tiles.Elements(xy) {
		w, ok := e.(*store.Wall)
		if !ok || w.Ghost || !wallOverlaps(w, path.BaseHeight, path.ClearanceHeight) {
			continue
		}
		tiles.Remove(xy, e)
		tiles.InvalidateTile(xy)
	}
}
