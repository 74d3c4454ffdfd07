// Package landrights changes who owns land and construction rights.
package landrights

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

type Setting uint8

const (
	UnownLand Setting = iota
	UnownConstructionRights
	SetForSale
	SetConstructionRightsForSale
	SetOwnershipWithChecks
)

func (s Setting) String() string {
	switch s {
	case UnownLand:
		return "UNOWN_LAND"
	case UnownConstructionRights:
		return "UNOWN_CONSTRUCTION_RIGHTS"
	case SetForSale:
		return "SET_FOR_SALE"
	case SetConstructionRightsForSale:
		return "SET_CONSTRUCTION_RIGHTS_FOR_SALE"
	case SetOwnershipWithChecks:
		return "SET_OWNERSHIP_WITH_CHECKS"
	default:
		return "UNKNOWN"
	}
}

// ParseSetting is the inverse of Setting.String.
func ParseSetting(s string) (Setting, bool) {
	for v := UnownLand; v <= SetOwnershipWithChecks; v++ {
		if v.String() == s {
			return v, true
		}
	}
	return 0, false
}

// SetRights applies a setting to every tile of a range. Ownership is only read
// by SetOwnershipWithChecks.
type SetRights struct {
	Range     model.TileRange
	Setting   Setting
	Ownership uint8
}

func (c SetRights) Query(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Query())
}

func (c SetRights) Execute(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Execute())
}

func validOwnership(o uint8) bool {
	switch o {
	case model.OwnershipUnowned,
		model.OwnershipConstructionRightsOwned,
		model.OwnershipOwned,
		model.OwnershipConstructionRightsAvailable,
		model.OwnershipAvailable:
		return true
	}
	return false
}

func (c SetRights) Run(env edit.Env, flags action.Flags) action.Result {
	fail := func(st action.Status, msg action.StringID) action.Result {
		return action.Fail(st, action.StrCantChangeLandRights, msg)
	}
	if c.Setting > SetOwnershipWithChecks {
		return fail(action.StatusInvalidParameters, action.StrInvalidOwnershipSetting)
	}
	if c.Setting == SetOwnershipWithChecks && !validOwnership(c.Ownership) {
		return fail(action.StatusInvalidParameters, action.StrInvalidOwnershipSetting)
	}
	rules := env.Rules()
	if c.Setting != SetOwnershipWithChecks && !rules.EditorOrSandbox() {
		return fail(action.StatusNotInEditorMode, action.StrNotInEditorMode)
	}

	tiles := env.Tiles()
	valid := c.Range.Clamp(tiles.Size())
	res := action.Success()
	res.Expenditure = model.ExpenditureLandPurchase
	center := model.TileXY{X: (valid.Min.X + valid.Max.X) / 2, Y: (valid.Min.Y + valid.Max.Y) / 2}
	if sf := tiles.SurfaceAt(center); sf != nil {
		res.Position = valid.Center(sf.BaseHeight)
	}

	type change struct {
		tile      model.TileXY
		ownership uint8
	}
	var changes []change
	var failed *action.Result
	valid.Each(func(xy model.TileXY) {
		if failed != nil {
			return
		}
		sf := tiles.SurfaceAt(xy)
		if sf == nil {
			r := fail(action.StatusUnknown, action.StrCantDoThis)
			failed = &r
			return
		}
		next, cost, r := c.plan(env, xy, sf)
		if !r.IsOK() {
			failed = &r
			return
		}
		res.Cost += cost
		if next != sf.Ownership {
			changes = append(changes, change{xy, next})
		}
	})
	if failed != nil {
		return *failed
	}
	if !flags.Apply() {
		return res
	}

	for _, ch := range changes {
		tiles.SurfaceAt(ch.tile).Ownership = ch.ownership
		if ch.ownership&model.OwnershipOwned != 0 {
			pruneSpawns(env, ch.tile)
		}
		store.UpdateParkFencesAround(tiles, ch.tile)
		tiles.InvalidateTile(ch.tile)
		env.Session().Touch(ch.tile, "land_rights")
	}
	if !flags.Ghost() {
		env.Effects().PlaySound(edit.SoundPlaceItem, res.Position)
	}
	return res
}

// plan returns the tile's next ownership and its price.
func (c SetRights) plan(env edit.Env, xy model.TileXY, sf *store.Surface) (uint8, model.Money, action.Result) {
	cur := sf.Ownership
	switch c.Setting {
	case UnownLand:
		return cur &^ (model.OwnershipOwned | model.OwnershipConstructionRightsOwned), 0, action.Success()
	case UnownConstructionRights:
		return cur &^ model.OwnershipConstructionRightsOwned, 0, action.Success()
	case SetForSale:
		return model.OwnershipAvailable, 0, action.Success()
	case SetConstructionRightsForSale:
		return model.OwnershipConstructionRightsAvailable, 0, action.Success()
	}

	want := c.Ownership
	if cur == want {
		return cur, 0, action.Success()
	}
	if en := parkEntrance(env.Tiles(), xy); en != nil {
		switch want {
		case model.OwnershipOwned, model.OwnershipAvailable:
			return cur, 0, action.Success()
		case model.OwnershipConstructionRightsOwned, model.OwnershipConstructionRightsAvailable:
			if en.BaseHeight < sf.BaseHeight || en.BaseHeight > sf.BaseHeight+3 {
				return cur, 0, action.Success()
			}
		}
	}
	rules := env.Rules()
	if !rules.EditorOrSandbox() {
		switch {
		case want == model.OwnershipOwned && cur&model.OwnershipAvailable == 0:
			return cur, 0, action.Fail(action.StatusDisallowed, action.StrCantChangeLandRights, action.StrLandNotForSale)
		case want == model.OwnershipConstructionRightsOwned && cur&model.OwnershipConstructionRightsAvailable == 0:
			return cur, 0, action.Fail(action.StatusDisallowed, action.StrCantChangeLandRights, action.StrRightsNotForSale)
		case want != model.OwnershipOwned && want != model.OwnershipConstructionRightsOwned:
			return cur, 0, action.Fail(action.StatusNotInEditorMode, action.StrCantChangeLandRights, action.StrNotInEditorMode)
		}
	}
	return want, price(rules, want) - price(rules, cur), action.Success()
}

func price(r edit.Rules, ownership uint8) model.Money {
	switch {
	case ownership&model.OwnershipOwned != 0:
		return r.LandPrice
	case ownership&model.OwnershipConstructionRightsOwned != 0:
		return r.ConstructionRightsPrice
	default:
		return 0
	}
}

// parkEntrance finds a park entrance piece at any height.
func parkEntrance(tiles store.TileStore, xy model.TileXY) *store.Entrance {
	for _, e := range tiles.Elements(xy) {
		if en, ok := e.(*store.Entrance); ok && en.Kind == store.EntrancePark {
			return en
		}
	}
	return nil
}

func pruneSpawns(env edit.Env, xy model.TileXY) {
	spawns := env.PeepSpawns()
	kept := spawns[:0:0]
	for _, s := range spawns {
		if s.Tile() != xy {
			kept = append(kept, s)
		}
	}
	if len(kept) != len(spawns) {
		env.SetPeepSpawns(kept)
	}
}
