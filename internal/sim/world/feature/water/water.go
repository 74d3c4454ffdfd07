// Package water raises and lowers the water level over terrain.
package water

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/feature/clearance"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// SetCost is charged per tile whose water level is set.
var SetCost = model.Units(2, 50)

// SetHeight sets one tile's water level. A level at or below the land removes
// the water.
type SetHeight struct {
	Tile   model.TileXY
	Height int
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
		return action.Fail(st, action.StrCantChangeWaterHere, msg)
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
	if c.Height < rules.Limits.WaterMin {
		return fail(action.StatusDisallowed, action.StrTooLow)
	}
	if c.Height > rules.Limits.WaterMax {
		return fail(action.StatusDisallowed, action.StrTooHigh)
	}
	if !rules.EditorOrSandbox() && !edit.LocationOwned(tiles, c.Tile, c.Height) {
		return fail(action.StatusDisallowed, action.StrLandNotOwnedByPark)
	}
	sf := tiles.SurfaceAt(c.Tile)
	if sf == nil {
		return fail(action.StatusUnknown, action.StrCantDoThis)
	}

	// the volume between the old and new levels must be free
	low, high := c.Height, sf.BaseHeight
	if sf.WaterHeight > 0 {
		high = sf.WaterHeight
	}
	if low > high {
		low, high = high, low
	}
	high -= model.LandStep
	if low < high {
		vol := clearance.Volume{Tile: c.Tile, Low: low, High: high}
		if r := clearance.CanConstructWithClear(env, vol, store.AllQuadrants, surfaceOnly, flags, clearance.CrossingNone); !r.IsOK() {
			return r.WithTitle(action.StrCantChangeWaterHere)
		}
	}

	res := action.Success()
	res.Cost = SetCost
	res.Expenditure = model.ExpenditureLandscaping
	res.Position = c.Tile.Position(c.Height)
	if !flags.Apply() {
		return res
	}
	if c.Height > sf.BaseHeight {
		sf.WaterHeight = c.Height
	} else {
		sf.WaterHeight = 0
	}
	tiles.InvalidateTile(c.Tile)
	env.Session().Touch(c.Tile, "water_height")
	return res
}

func surfaceOnly(env clearance.Env, xy model.TileXY, e store.Element, flags action.Flags, price *model.Money) bool {
	return e.Type() == store.TypeSurface
}
