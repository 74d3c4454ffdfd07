package clearance

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// RemoveSmallScenery clears small scenery for its removal price. Trees are
// kept when the park forbids tree removal, and ghosts never clear anything.
func RemoveSmallScenery(env Env, xy model.TileXY, e store.Element, flags action.Flags, price *model.Money) bool {
	sc, ok := e.(*store.SmallScenery)
	if !ok {
		return false
	}
	def, known := env.Catalog().Scenery(sc.Entry)
	rules := env.Rules()
	if known && def.IsTree && rules.Park.ForbidTreeRemoval {
		return false
	}
	if known && !rules.Park.NoMoney {
		*price += def.RemovalPrice
	}
	if flags.Ghost() {
		return false
	}
	if !flags.Apply() {
		return true
	}
	env.Tiles().Remove(xy, e)
	env.Tiles().InvalidateTile(xy)
	return true
}

// LandHeight lets the surface, small scenery and walls through; the land
// command removes those itself.
func LandHeight(env Env, xy model.TileXY, e store.Element, flags action.Flags, price *model.Money) bool {
	switch e.Type() {
	case store.TypeSurface, store.TypeSmallScenery, store.TypeWall:
		return true
	default:
		return false
	}
}
