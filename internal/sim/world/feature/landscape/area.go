package landscape

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
)

// Raise lifts the lowest owned tiles of the range by one table step.
type Raise struct {
	Range     model.TileRange
	Selection slope.Selection
}

// Lower drops the highest owned tiles of the range by one table step.
type Lower struct {
	Range     model.TileRange
	Selection slope.Selection
}

func (c Raise) Query(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Query())
}

func (c Raise) Execute(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Execute())
}

func (c Raise) Run(env edit.Env, flags action.Flags) action.Result {
	return runArea(env, flags, c.Range, c.Selection, false)
}

func (c Lower) Query(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Query())
}

func (c Lower) Execute(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Execute())
}

func (c Lower) Run(env edit.Env, flags action.Flags) action.Result {
	return runArea(env, flags, c.Range, c.Selection, true)
}

type plannedTile struct {
	tile  model.TileXY
	base  int
	slope uint8
}

// planArea picks the tiles an area raise (or lower) would rewrite and their
// new shape. Only owned tiles count unless sandboxed.
func planArea(env edit.Env, rng model.TileRange, row int, lowering bool) (plan []plannedTile, owned bool) {
	tiles := env.Tiles()
	sandbox := env.Rules().Cheats.Sandbox
	eligible := func(xy model.TileXY) bool {
		return tiles.SurfaceAt(xy) != nil && (sandbox || edit.LocationInPark(tiles, xy))
	}

	extreme := 0
	rng.Each(func(xy model.TileXY) {
		if !eligible(xy) {
			return
		}
		sf := tiles.SurfaceAt(xy)
		h := sf.BaseHeight
		if lowering {
			h = slope.Top(sf.BaseHeight, sf.Slope)
		}
		if !owned || (lowering && h > extreme) || (!lowering && h < extreme) {
			extreme = h
		}
		owned = true
	})

	rng.Each(func(xy model.TileXY) {
		if !eligible(xy) {
			return
		}
		sf := tiles.SurfaceAt(xy)
		if lowering {
			if slope.Top(sf.BaseHeight, sf.Slope) < extreme {
				return
			}
			base, sl := slope.Apply(sf.BaseHeight, slope.LowerStyle(row, sf.Slope), false)
			plan = append(plan, plannedTile{tile: xy, base: base, slope: sl})
			return
		}
		if sf.BaseHeight > extreme {
			return
		}
		base, sl := slope.Apply(sf.BaseHeight, slope.RaiseStyle(row, sf.Slope), true)
		plan = append(plan, plannedTile{tile: xy, base: base, slope: sl})
	})
	return plan, owned
}

// runArea issues one nested SetHeight per planned tile. The first failure
// aborts; tiles already written stay written.
func runArea(env edit.Env, flags action.Flags, rng model.TileRange, sel slope.Selection, lowering bool) action.Result {
	title := action.StrCantRaiseLandHere
	if lowering {
		title = action.StrCantLowerLandHere
	}
	if !sel.Valid() {
		return action.Fail(action.StatusInvalidParameters, title, action.StrInvalidSelection)
	}
	tiles := env.Tiles()
	valid := rng.Clamp(tiles.Size())

	res := action.Success()
	res.Expenditure = model.ExpenditureLandscaping
	center := model.TileXY{X: (valid.Min.X + valid.Max.X) / 2, Y: (valid.Min.Y + valid.Max.Y) / 2}
	if sf := tiles.SurfaceAt(center); sf != nil {
		res.Position = valid.Center(sf.BaseHeight)
	}

	plan, owned := planArea(env, valid, sel.Row(), lowering)
	for _, p := range plan {
		r := SetHeight{Tile: p.tile, Height: p.base, Slope: p.slope}.Run(env, flags)
		if !r.IsOK() {
			return r.WithTitle(title)
		}
		res.Cost += r.Cost
	}
	if !owned {
		return action.Fail(action.StatusDisallowed, title, action.StrLandNotOwnedByPark)
	}
	env.Session().TrackSelectionRecheck = true
	return res
}
