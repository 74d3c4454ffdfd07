package landscape

import (
	"testing"

	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit/edittest"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

func rng(x0, y0, x1, y1 int) model.TileRange {
	return model.NewTileRange(x0, y0, x1, y1)
}

func TestRaiseSingleCorner(t *testing.T) {
	env := edittest.New(32)
	r := Raise{Range: rng(10, 10, 10, 10), Selection: slope.SelectCorner0}.Execute(env, 0)
	if !r.IsOK() {
		t.Fatalf("raise failed: %+v", r)
	}
	if r.Cost != model.Units(5, 0) {
		t.Fatalf("cost %s want 5.00", r.Cost)
	}
	sf := env.Surface(10, 10)
	if sf.BaseHeight != 14 || sf.Slope != slope.CornerN {
		t.Fatalf("unexpected surface base=%d slope=%#x", sf.BaseHeight, sf.Slope)
	}
	if !env.Sess.TrackSelectionRecheck {
		t.Fatalf("expected selection recheck")
	}
}

func TestRaiseThenLowerRestoresFlat(t *testing.T) {
	env := edittest.New(32)
	area := rng(10, 10, 12, 12)
	up := Raise{Range: area, Selection: slope.SelectFull}
	q := up.Query(env, 0)
	x := up.Execute(env, 0)
	if !x.IsOK() || q.Cost != x.Cost || x.Cost != model.Units(180, 0) {
		t.Fatalf("query %+v execute %+v", q, x)
	}
	area.Each(func(xy model.TileXY) {
		if sf := env.Store.SurfaceAt(xy); sf.BaseHeight != 16 || sf.Slope != slope.Flat {
			t.Fatalf("tile %v not raised: %+v", xy, sf)
		}
	})
	if r := (Lower{Range: area, Selection: slope.SelectFull}).Execute(env, 0); !r.IsOK() {
		t.Fatalf("lower failed: %+v", r)
	}
	area.Each(func(xy model.TileXY) {
		if sf := env.Store.SurfaceAt(xy); sf.BaseHeight != 14 || sf.Slope != slope.Flat {
			t.Fatalf("tile %v not restored: %+v", xy, sf)
		}
	})
}

func TestRaiseOnlyLiftsLowestTiles(t *testing.T) {
	env := edittest.New(32)
	env.SetLand(11, 10, 20, slope.Flat)
	if r := (Raise{Range: rng(10, 10, 11, 10), Selection: slope.SelectFull}).Execute(env, 0); !r.IsOK() {
		t.Fatalf("raise failed: %+v", r)
	}
	if env.Surface(10, 10).BaseHeight != 16 || env.Surface(11, 10).BaseHeight != 20 {
		t.Fatalf("expected only the low tile raised")
	}
}

func TestAreaAbortKeepsEarlierTiles(t *testing.T) {
	env := edittest.New(32)
	env.Place(12, 10, &store.Path{Header: store.Header{BaseHeight: 14, ClearanceHeight: 18, Quadrants: store.AllQuadrants}})
	r := Raise{Range: rng(10, 10, 12, 10), Selection: slope.SelectFull}.Execute(env, 0)
	if r.IsOK() || r.ErrorTitle != action.StrCantRaiseLandHere {
		t.Fatalf("expected raise failure, got %+v", r)
	}
	if env.Surface(10, 10).BaseHeight != 16 || env.Surface(11, 10).BaseHeight != 16 || env.Surface(12, 10).BaseHeight != 14 {
		t.Fatalf("expected tiles before the obstruction to stay raised")
	}
}

func TestAreaNothingOwned(t *testing.T) {
	env := edittest.New(32)
	area := rng(10, 10, 11, 11)
	area.Each(func(xy model.TileXY) { env.Store.SurfaceAt(xy).Ownership = model.OwnershipAvailable })
	r := Lower{Range: area, Selection: slope.SelectFull}.Query(env, 0)
	if r.IsOK() || r.ErrorMessage != action.StrLandNotOwnedByPark || r.ErrorTitle != action.StrCantLowerLandHere {
		t.Fatalf("expected not owned, got %+v", r)
	}
	if r := (Raise{Range: area, Selection: slope.Selection(99)}).Query(env, 0); r.Status != action.StatusInvalidParameters {
		t.Fatalf("expected invalid selection, got %+v", r)
	}
}

func TestAreaClampsToPlayableMap(t *testing.T) {
	env := edittest.New(16)
	r := Raise{Range: rng(-5, -5, 40, 40), Selection: slope.SelectFull}.Execute(env, 0)
	if !r.IsOK() {
		t.Fatalf("raise failed: %+v", r)
	}
	if env.Surface(0, 0).BaseHeight != 14 || env.Surface(15, 15).BaseHeight != 14 {
		t.Fatalf("edge tiles must not change")
	}
	if env.Surface(1, 1).BaseHeight != 16 || env.Surface(14, 14).BaseHeight != 16 {
		t.Fatalf("inner tiles must be raised")
	}
}
