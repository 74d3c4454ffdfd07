// Package landscape reshapes terrain: single-tile height, area raise and
// lower, and smoothing.
package landscape

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/feature/clearance"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// CornerCost is charged per height unit each corner moves.
var CornerCost = model.Units(2, 50)

// SetHeight rewrites one surface to the given base height and slope.
type SetHeight struct {
	Tile   model.TileXY
	Height int
	Slope  uint8
}

func (c SetHeight) Query(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Query())
}

func (c SetHeight) Execute(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Execute())
}

func (c SetHeight) Run(env edit.Env, flags action.Flags) action.Result {
	rules := env.Rules()
	tiles := env.Tiles()
	fail := func(st action.Status, msg action.StringID) action.Result {
		return action.Fail(st, action.StrCantChangeLandHere, msg)
	}

	if rules.Park.ForbidLandscapeChanges && !rules.EditorOrSandbox() {
		return fail(action.StatusDisallowed, action.StrForbiddenByLocalAuth)
	}
	if !tiles.InMap(c.Tile) {
		return fail(action.StatusInvalidParameters, action.StrOffEdgeOfMap)
	}
	if tiles.IsEdge(c.Tile) {
		return fail(action.StatusDisallowed, action.StrOffEdgeOfMap)
	}
	if !slope.Valid(c.Slope) {
		return fail(action.StatusInvalidParameters, action.StrLandSlopeUnsuitable)
	}
	if c.Height < rules.Limits.LandMin {
		return fail(action.StatusDisallowed, action.StrTooLow)
	}
	if c.Height > rules.Limits.LandMax || (c.Height > rules.Limits.LandMax-model.LandStep && c.Slope != slope.Flat) {
		return fail(action.StatusDisallowed, action.StrTooHigh)
	}
	if !rules.EditorOrSandbox() && !edit.LocationInPark(tiles, c.Tile) {
		return fail(action.StatusDisallowed, action.StrLandNotOwnedByPark)
	}
	sf := tiles.SurfaceAt(c.Tile)
	if sf == nil {
		return fail(action.StatusUnknown, action.StrCantDoThis)
	}
	top := slope.Top(c.Height, c.Slope)

	var cost model.Money
	if !rules.Cheats.DisableClearanceChecks {
		if rules.Park.ForbidTreeRemoval {
			if tree := treeObstruction(env, c.Tile, c.Height); tree != nil {
				r := fail(action.StatusDisallowed, action.StrObjectInTheWay)
				r.ErrorArg = clearance.ObstructionName(env.Catalog(), tree)
				return r
			}
		}
		cost += smallSceneryRemoval(env, c.Tile, c.Height, false)
	}
	if !rules.Cheats.DisableSupportLimits {
		if rideSupportsTooLong(env, c.Tile, c.Height) {
			return fail(action.StatusDisallowed, action.StrSupportsCantBeExtended)
		}
		if e := floatingStructure(env, sf, c.Tile, top); e != nil {
			r := fail(action.StatusDisallowed, action.StrObjectInTheWay)
			r.ErrorArg = clearance.ObstructionName(env.Catalog(), e)
			return r
		}
	}
	if clearance.LevelCrossingAt(tiles, c.Tile) {
		return fail(action.StatusDisallowed, action.StrRemoveLevelCrossing)
	}
	vol := clearance.Volume{Tile: c.Tile, Low: c.Height, High: top}
	if cr := clearance.CanConstructWithClear(env, vol, store.AllQuadrants, clearance.LandHeight, flags, clearance.CrossingNone); !cr.IsOK() {
		return cr.WithTitle(action.StrCantChangeLandHere)
	}
	if e := unremovableObstruction(tiles, c.Tile, c.Height, top); e != nil {
		r := fail(action.StatusDisallowed, action.StrObjectInTheWay)
		r.ErrorArg = clearance.ObstructionName(env.Catalog(), e)
		return r
	}
	cost += heightChangeCost(sf, c.Height, c.Slope)

	res := action.Success()
	res.Cost = cost
	res.Expenditure = model.ExpenditureLandscaping
	res.Position = c.Tile.Position(sf.BaseHeight)
	if !flags.Apply() {
		return res
	}

	env.Effects().RemoveLitter(c.Tile, sf.BaseHeight)
	cost = 0
	if !rules.Cheats.DisableClearanceChecks {
		removeWalls(tiles, c.Tile, c.Height-model.LandStep, c.Height+2*model.LandStep)
		cost += smallSceneryRemoval(env, c.Tile, c.Height, true)
	}
	cost += heightChangeCost(sf, c.Height, c.Slope)
	sf.SetHeight(c.Height, c.Slope)
	tiles.Resort(c.Tile)
	if sf.WaterHeight <= c.Height {
		sf.WaterHeight = 0
	}
	store.UpdateParkFences(tiles, c.Tile)
	tiles.InvalidateTile(c.Tile)
	env.Session().Touch(c.Tile, "land_height")
	res.Cost = cost
	return res
}

func heightChangeCost(sf *store.Surface, height int, sl uint8) model.Money {
	old := sf.Corners()
	now := slope.Corners(height, sl)
	var cost model.Money
	for i := range old {
		d := old[i] - now[i]
		if d < 0 {
			d = -d
		}
		cost += CornerCost * model.Money(d)
	}
	return cost
}
