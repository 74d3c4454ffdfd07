package water

import (
	"testing"

	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/edit/edittest"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

var t5 = model.TileXY{X: 5, Y: 5}

func TestSetHeight(t *testing.T) {
	env := edittest.New(16)
	cmd := SetHeight{Tile: t5, Height: 20}
	q := cmd.Query(env, 0)
	if !q.IsOK() || q.Cost != SetCost {
		t.Fatalf("query %+v", q)
	}
	if env.Surface(5, 5).WaterHeight != 0 {
		t.Fatalf("query must not mutate")
	}
	if r := cmd.Execute(env, 0); !r.IsOK() || env.Surface(5, 5).WaterHeight != 20 {
		t.Fatalf("execute %+v water=%d", r, env.Surface(5, 5).WaterHeight)
	}
	if r := (SetHeight{Tile: t5, Height: 14}).Execute(env, 0); !r.IsOK() || env.Surface(5, 5).WaterHeight != 0 {
		t.Fatalf("level at the land must drain: %+v", r)
	}
}

func TestSetHeightValidation(t *testing.T) {
	env := edittest.New(16)
	if r := (SetHeight{Tile: t5, Height: 0}).Query(env, 0); r.ErrorMessage != action.StrTooLow || r.ErrorTitle != action.StrCantChangeWaterHere {
		t.Fatalf("expected too low: %+v", r)
	}
	if r := (SetHeight{Tile: t5, Height: 256}).Query(env, 0); r.ErrorMessage != action.StrTooHigh {
		t.Fatalf("expected too high: %+v", r)
	}
	if r := (SetHeight{Tile: model.TileXY{X: 15, Y: 3}, Height: 20}).Query(env, 0); r.ErrorMessage != action.StrOffEdgeOfMap {
		t.Fatalf("expected edge refusal: %+v", r)
	}
	env.Surface(5, 5).Ownership = model.OwnershipUnowned
	if r := (SetHeight{Tile: t5, Height: 20}).Query(env, 0); r.ErrorMessage != action.StrLandNotOwnedByPark {
		t.Fatalf("expected not owned: %+v", r)
	}
}

func TestSetHeightBlockedByPath(t *testing.T) {
	env := edittest.New(16)
	env.Place(5, 5, &store.Path{Header: store.Header{BaseHeight: 16, ClearanceHeight: 20, Quadrants: store.AllQuadrants}})
	r := SetHeight{Tile: t5, Height: 24}.Query(env, 0)
	if r.IsOK() || r.ErrorMessage != action.StrObjectInTheWay || r.ErrorTitle != action.StrCantChangeWaterHere {
		t.Fatalf("expected path in the way: %+v", r)
	}
	env.SetLand(6, 6, 14, slope.CornerN)
	if r := (SetHeight{Tile: model.TileXY{X: 6, Y: 6}, Height: 24}).Query(env, 0); !r.IsOK() {
		t.Fatalf("sloped land must not block water: %+v", r)
	}
}

func TestRaiseTouchesOnlyRange(t *testing.T) {
	env := edittest.New(16)
	env.Surface(6, 5).WaterHeight = 18
	rng := model.NewTileRange(4, 4, 6, 6)
	r := Raise{Range: rng}.Execute(env, 0)
	if !r.IsOK() {
		t.Fatalf("raise failed: %+v", r)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			xy := model.TileXY{X: x, Y: y}
			w := env.Store.SurfaceAt(xy).WaterHeight
			switch {
			case xy == model.TileXY{X: 6, Y: 5}:
				if w != 18 {
					t.Fatalf("higher water must stay, got %d", w)
				}
			case rng.Contains(xy):
				if w != 16 {
					t.Fatalf("tile %v water %d want 16", xy, w)
				}
			default:
				if w != 0 || env.Sess.Touched(xy) {
					t.Fatalf("tile %v outside the range changed", xy)
				}
			}
		}
	}
	if r.Cost != 8*SetCost {
		t.Fatalf("cost %s", r.Cost)
	}
	if !env.Sess.TrackSelectionRecheck || len(env.Sounds) != 1 || env.Sounds[0] != edit.SoundLayingOutWater {
		t.Fatalf("expected recheck and water sound")
	}
}

func TestLowerDrainsAtLand(t *testing.T) {
	env := edittest.New(16)
	env.Surface(5, 5).WaterHeight = 16
	env.Surface(6, 5).WaterHeight = 20
	rng := model.NewTileRange(5, 5, 6, 5)
	if r := (Lower{Range: rng}).Execute(env, 0); !r.IsOK() {
		t.Fatalf("lower failed: %+v", r)
	}
	if env.Surface(6, 5).WaterHeight != 18 || env.Surface(5, 5).WaterHeight != 16 {
		t.Fatalf("only the highest water drops")
	}
	for i := 0; i < 2; i++ {
		if r := (Lower{Range: rng}).Execute(env, 0); !r.IsOK() {
			t.Fatalf("lower %d failed: %+v", i, r)
		}
	}
	if env.Surface(6, 5).WaterHeight != 0 || env.Surface(5, 5).WaterHeight != 0 {
		t.Fatalf("expected drained tiles, got %d %d", env.Surface(5, 5).WaterHeight, env.Surface(6, 5).WaterHeight)
	}
	r := Lower{Range: rng}.Query(env, 0)
	if r.IsOK() || r.ErrorMessage != action.StrLandNotOwnedByPark || r.ErrorTitle != action.StrCantLowerWaterHere {
		t.Fatalf("no water left to lower: %+v", r)
	}
}

func TestRaiseNothingOwned(t *testing.T) {
	env := edittest.New(16)
	rng := model.NewTileRange(4, 4, 5, 5)
	rng.Each(func(xy model.TileXY) { env.Store.SurfaceAt(xy).Ownership = model.OwnershipAvailable })
	r := Raise{Range: rng}.Query(env, 0)
	if r.IsOK() || r.ErrorMessage != action.StrLandNotOwnedByPark || r.ErrorTitle != action.StrCantRaiseWaterHere {
		t.Fatalf("expected not owned: %+v", r)
	}
}
