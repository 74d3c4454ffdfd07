package water

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
)

// Raise lifts the lowest water (or dry land) of the range by one step.
type Raise struct {
	Range model.TileRange
}

// Lower drops the highest water of the range by one step.
type Lower struct {
	Range model.TileRange
}

func (c Raise) Query(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Query())
}

func (c Raise) Execute(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Execute())
}

func (c Lower) Query(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Query())
}

func (c Lower) Execute(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Execute())
}

// level is the tile's water surface, or its land when dry.
func level(env edit.Env, xy model.TileXY) (int, bool) {
	sf := env.Tiles().SurfaceAt(xy)
	if sf == nil {
		return 0, false
	}
	if sf.WaterHeight > 0 {
		return sf.WaterHeight, true
	}
	return sf.BaseHeight, true
}

func eligible(env edit.Env, xy model.TileXY) bool {
	tiles := env.Tiles()
	if tiles.SurfaceAt(xy) == nil {
		return false
	}
	if env.Rules().EditorOrSandbox() {
		return true
	}
	h, _ := level(env, xy)
	return edit.LocationOwned(tiles, xy, h)
}

func (c Raise) Run(env edit.Env, flags action.Flags) action.Result {
	valid := c.Range.Clamp(env.Tiles().Size())
	ceiling, found := 0, false
	valid.Each(func(xy model.TileXY) {
		if !eligible(env, xy) {
			return
		}
		if h, _ := level(env, xy); !found || h < ceiling {
			ceiling, found = h, true
		}
	})

	maxHeight := env.Rules().Limits.WaterMax
	var targets []SetHeight
	valid.Each(func(xy model.TileXY) {
		if !eligible(env, xy) {
			return
		}
		h, _ := level(env, xy)
		if h > ceiling {
			return
		}
		h += model.LandStep
		if h > maxHeight {
			h = maxHeight
		}
		targets = append(targets, SetHeight{Tile: xy, Height: h})
	})
	return runArea(env, flags, valid, targets, action.StrCantRaiseWaterHere)
}

func (c Lower) Run(env edit.Env, flags action.Flags) action.Result {
	tiles := env.Tiles()
	valid := c.Range.Clamp(tiles.Size())
	floor, found := 0, false
	valid.Each(func(xy model.TileXY) {
		if !eligible(env, xy) {
			return
		}
		if w := tiles.SurfaceAt(xy).WaterHeight; w > 0 && (!found || w > floor) {
			floor, found = w, true
		}
	})

	var targets []SetHeight
	valid.Each(func(xy model.TileXY) {
		if !found || !eligible(env, xy) {
			return
		}
		sf := tiles.SurfaceAt(xy)
		if sf.WaterHeight == 0 || sf.WaterHeight < floor {
			return
		}
		h := sf.WaterHeight - model.LandStep
		if h <= sf.BaseHeight {
			h = sf.BaseHeight
		}
		targets = append(targets, SetHeight{Tile: xy, Height: h})
	})
	return runArea(env, flags, valid, targets, action.StrCantLowerWaterHere)
}

// runArea issues the nested sets in order; the first failure aborts and
// earlier tiles stay written.
func runArea(env edit.Env, flags action.Flags, valid model.TileRange, targets []SetHeight, title action.StringID) action.Result {
	res := action.Success()
	res.Expenditure = model.ExpenditureLandscaping
	center := model.TileXY{X: (valid.Min.X + valid.Max.X) / 2, Y: (valid.Min.Y + valid.Max.Y) / 2}
	if h, ok := level(env, center); ok {
		res.Position = valid.Center(h)
	}
	if len(targets) == 0 {
		return action.Fail(action.StatusDisallowed, title, action.StrLandNotOwnedByPark)
	}
	for _, t := range targets {
		r := t.Run(env, flags)
		if !r.IsOK() {
			return r.WithTitle(title)
		}
		res.Cost += r.Cost
	}
	env.Session().TrackSelectionRecheck = true
	if flags.Apply() && !flags.Ghost() {
		env.Effects().PlaySound(edit.SoundLayingOutWater, res.Position)
	}
	return res
}
