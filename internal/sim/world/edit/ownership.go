package edit

import (
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// LocationInPark reports whether the tile is owned outright.
func LocationInPark(t store.TileStore, xy model.TileXY) bool {
	sf := t.SurfaceAt(xy)
	return sf != nil && sf.Ownership&model.OwnershipOwned != 0
}

// LocationOwned reports whether the park may build at the given height.
// Construction rights cover everything except the band just above the surface.
func LocationOwned(t store.TileStore, xy model.TileXY, height int) bool {
	sf := t.SurfaceAt(xy)
	if sf == nil {
		return false
	}
	if sf.Ownership&model.OwnershipOwned != 0 {
		return true
	}
	if sf.Ownership&model.OwnershipConstructionRightsOwned != 0 {
		return height < sf.BaseHeight || height-model.LandStep > sf.BaseHeight
	}
	return false
}
