// Package clearance decides whether a volume on a tile is free to build in.
package clearance

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

type Env interface {
	Tiles() store.TileStore
	Catalog() edit.Catalog
	Rules() edit.Rules
}

// Volume spans [Low, High) height units on one tile. Raised quarters start
// one land step above Low, as the high side of a sloped path does.
type Volume struct {
	Tile   model.TileXY
	Low    int
	High   int
	Raised uint8
}

type CrossingMode uint8

const (
	CrossingNone CrossingMode = iota
	CrossingTrackOverPath
	CrossingPathOverTrack
)

// ClearFunc is offered each obstruction. It returns true when the element may
// be cleared, adding any removal price. It deletes only when applying a
// non-ghost command.
type ClearFunc func(env Env, xy model.TileXY, e store.Element, flags action.Flags, price *model.Money) bool

// CanConstructWithClear checks the volume against every element on the tile.
// The first obstruction that clear refuses fails the check.
func CanConstructWithClear(env Env, v Volume, quadrants uint8, clear ClearFunc, flags action.Flags, crossing CrossingMode) action.Result {
	tiles := env.Tiles()
	if !tiles.InMap(v.Tile) {
		return action.Fail(action.StatusInvalidParameters, action.StrCantBuildThisHere, action.StrOffEdgeOfMap)
	}
	if env.Rules().Cheats.DisableClearanceChecks {
		res := action.Success()
		res.Payload = action.ClearancePayload{GroundFlags: action.GroundAbove}
		return res
	}

	var cost model.Money
	ground := action.GroundAbove
	canBuildCrossing := false
	if sf := tiles.SurfaceAt(v.Tile); sf != nil && sf.Slope == slope.Flat && sf.BaseHeight == v.Low {
		canBuildCrossing = true
	}

	for _, e := range tiles.Elements(v.Tile) {
		if sf, ok := e.(*store.Surface); ok {
			if sf.WaterHeight > 0 && sf.WaterHeight > v.Low && sf.BaseHeight < v.High {
				ground |= action.GroundUnderwater
				if sf.WaterHeight < v.High && clear != nil && !clear(env, v.Tile, sf, flags, &cost) {
					return blocked(action.StrPartlyUnderwater, "")
				}
			}
			if sf.BaseHeight >= v.High {
				ground = ground&^action.GroundAbove | action.GroundUnder
				continue
			}
			if belowSurface(sf, v, quadrants) {
				if clear == nil || !clear(env, v.Tile, sf, flags, &cost) {
					return blocked(action.StrRaiseOrLowerLandFirst, "")
				}
			}
			continue
		}

		h := e.Common()
		if h.Ghost || !(v.Low < h.ClearanceHeight && v.High > h.BaseHeight) {
			continue
		}
		if h.Quadrants&quadrants == 0 {
			continue
		}
		if crossingAllowed(env, e, v, crossing, canBuildCrossing) {
			continue
		}
		if clear != nil && clear(env, v.Tile, e, flags, &cost) {
			continue
		}
		return blocked(action.StrObjectInTheWay, ObstructionName(env.Catalog(), e))
	}

	res := action.Success()
	res.Cost = cost
	res.Payload = action.ClearancePayload{GroundFlags: ground}
	return res
}

func blocked(msg action.StringID, arg string) action.Result {
	r := action.Fail(action.StatusDisallowed, action.StrCantBuildThisHere, msg)
	r.ErrorArg = arg
	return r
}

// belowSurface reports whether the volume cuts into the terrain under any of
// the selected quarters. A quarter may sit up to one land step below its
// corner, so flat and sloped pieces rest on gently sloped land.
func belowSurface(sf *store.Surface, v Volume, quadrants uint8) bool {
	corners := sf.Corners()
	for q := 0; q < 4; q++ {
		if quadrants&(1<<q) == 0 {
			continue
		}
		floor := v.Low
		if v.Raised&(1<<q) != 0 {
			floor += model.LandStep
		}
		if floor < sf.BaseHeight || floor+model.LandStep < corners[q] {
			return true
		}
	}
	return false
}

func crossingAllowed(env Env, e store.Element, v Volume, mode CrossingMode, canBuild bool) bool {
	if !canBuild || e.Common().BaseHeight != v.Low {
		return false
	}
	switch mode {
	case CrossingPathOverTrack:
		t, ok := e.(*store.Track)
		if !ok || t.TrackType != store.TrackFlat {
			return false
		}
		rt, ok := env.Catalog().RideType(t.RideType)
		return ok && rt.SupportsLevelCrossings
	case CrossingTrackOverPath:
		p, ok := e.(*store.Path)
		return ok && !p.Queue && !p.Sloped
	default:
		return false
	}
}

// ObstructionName labels an element for *_IN_THE_WAY messages.
func ObstructionName(cat edit.Catalog, e store.Element) string {
	switch v := e.(type) {
	case *store.Path:
		if v.Queue {
			return "QUEUE_LINE"
		}
		return "FOOTPATH"
	case *store.Track:
		if rt, ok := cat.RideType(v.RideType); ok {
			return "RIDE:" + rt.ID
		}
		return "RIDE"
	case *store.SmallScenery:
		if d, ok := cat.Scenery(v.Entry); ok {
			return d.ID
		}
		return "SCENERY"
	case *store.Entrance:
		switch v.Kind {
		case store.EntrancePark:
			return "PARK_ENTRANCE"
		case store.ExitRide:
			return "RIDE_EXIT"
		default:
			return "RIDE_ENTRANCE"
		}
	case *store.Wall:
		return "WALL"
	case *store.LargeScenery:
		return "LARGE_SCENERY"
	default:
		return e.Type().String()
	}
}

// LevelCrossingAt reports a path sharing its base with a track piece.
func LevelCrossingAt(tiles store.TileStore, xy model.TileXY) bool {
	elems := tiles.Elements(xy)
	for _, e := range elems {
		p, ok := e.(*store.Path)
		if !ok {
			continue
		}
		for _, o := range elems {
			if t, ok := o.(*store.Track); ok && t.BaseHeight == p.BaseHeight {
				return true
			}
		}
	}
	return false
}
