package landrights

import (
	"testing"

	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit/edittest"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

func one(x, y int) model.TileRange { return model.NewTileRange(x, y, x, y) }

func TestUnownLandInEditorUpdatesFences(t *testing.T) {
	env := edittest.New(16)
	env.R.EditorMode = true
	r := SetRights{Range: model.NewTileRange(5, 5, 6, 5), Setting: UnownLand}.Execute(env, 0)
	if !r.IsOK() || r.Cost != 0 {
		t.Fatalf("unown failed: %+v", r)
	}
	if env.Surface(5, 5).Ownership != model.OwnershipUnowned || env.Surface(6, 5).Ownership != model.OwnershipUnowned {
		t.Fatalf("tiles still owned")
	}
	// west, south and north neighbours are owned; east is the other unowned tile
	if got := env.Surface(5, 5).ParkFences; got != 0x0B {
		t.Fatalf("fences %#x want 0x0b", got)
	}
	if env.Surface(4, 5).ParkFences != 0 {
		t.Fatalf("owned tiles carry no fences")
	}
	if !env.Sess.Touched(model.TileXY{X: 6, Y: 5}) {
		t.Fatalf("expected tile touched")
	}
}

func TestUncheckedSettingsNeedEditor(t *testing.T) {
	env := edittest.New(16)
	r := SetRights{Range: one(5, 5), Setting: SetForSale}.Query(env, 0)
	if r.Status != action.StatusNotInEditorMode || r.ErrorTitle != action.StrCantChangeLandRights {
		t.Fatalf("expected not in editor mode, got %+v", r)
	}
	env.R.Cheats.Sandbox = true
	if r := (SetRights{Range: one(5, 5), Setting: SetForSale}).Execute(env, 0); !r.IsOK() {
		t.Fatalf("sandbox should allow: %+v", r)
	}
	if env.Surface(5, 5).Ownership != model.OwnershipAvailable {
		t.Fatalf("expected tile for sale")
	}
}

func TestBuyLandPricesAndPrunesSpawns(t *testing.T) {
	env := edittest.New(16)
	env.Surface(5, 5).Ownership = model.OwnershipAvailable
	env.Spawns = []model.PeepSpawn{
		{X: 5*model.TileSize + 16, Y: 5*model.TileSize + 16, Z: 14 * model.ZStep},
		{X: 1*model.TileSize + 16, Y: 5*model.TileSize + 16, Z: 14 * model.ZStep},
	}
	cmd := SetRights{Range: one(5, 5), Setting: SetOwnershipWithChecks, Ownership: model.OwnershipOwned}
	q := cmd.Query(env, 0)
	if !q.IsOK() || q.Cost != model.Units(20, 0) || q.Expenditure != model.ExpenditureLandPurchase {
		t.Fatalf("unexpected quote %+v", q)
	}
	x := cmd.Execute(env, 0)
	if !x.IsOK() || x.Cost != q.Cost {
		t.Fatalf("execute %+v", x)
	}
	if env.Surface(5, 5).Ownership != model.OwnershipOwned {
		t.Fatalf("tile not bought")
	}
	if len(env.Spawns) != 1 || env.Spawns[0].X != 1*model.TileSize+16 {
		t.Fatalf("expected spawn on bought tile pruned, got %+v", env.Spawns)
	}
	if len(env.Sounds) != 1 {
		t.Fatalf("expected purchase feedback")
	}
	if r := cmd.Query(env, 0); !r.IsOK() || r.Cost != 0 {
		t.Fatalf("same ownership must be free: %+v", r)
	}
}

func TestSellBackRefunds(t *testing.T) {
	env := edittest.New(16)
	env.R.EditorMode = true
	r := SetRights{Range: one(5, 5), Setting: SetOwnershipWithChecks, Ownership: model.OwnershipConstructionRightsOwned}.Query(env, 0)
	if !r.IsOK() || r.Cost != -model.Units(10, 0) {
		t.Fatalf("expected 10.00 refund, got %+v", r)
	}
}

func TestBuyRequiresForSale(t *testing.T) {
	env := edittest.New(16)
	env.Surface(5, 5).Ownership = model.OwnershipUnowned
	r := SetRights{Range: one(5, 5), Setting: SetOwnershipWithChecks, Ownership: model.OwnershipOwned}.Query(env, 0)
	if r.Status != action.StatusDisallowed || r.ErrorMessage != action.StrLandNotForSale {
		t.Fatalf("expected not for sale, got %+v", r)
	}
	r = SetRights{Range: one(5, 5), Setting: SetOwnershipWithChecks, Ownership: model.OwnershipConstructionRightsOwned}.Query(env, 0)
	if r.ErrorMessage != action.StrRightsNotForSale {
		t.Fatalf("expected rights not for sale, got %+v", r)
	}
	r = SetRights{Range: one(5, 5), Setting: SetOwnershipWithChecks, Ownership: 0x30}.Query(env, 0)
	if r.Status != action.StatusInvalidParameters {
		t.Fatalf("expected invalid ownership, got %+v", r)
	}
}

func TestParkEntranceTile(t *testing.T) {
	env := edittest.New(16)
	env.R.EditorMode = true
	env.Surface(5, 5).Ownership = model.OwnershipUnowned
	env.Place(5, 5, &store.Entrance{Header: store.Header{BaseHeight: 14, ClearanceHeight: 20, Quadrants: store.AllQuadrants}, Kind: store.EntrancePark})

	r := SetRights{Range: one(5, 5), Setting: SetOwnershipWithChecks, Ownership: model.OwnershipOwned}.Execute(env, 0)
	if !r.IsOK() || r.Cost != 0 || env.Surface(5, 5).Ownership != model.OwnershipUnowned {
		t.Fatalf("owning an entrance tile must be a no-op: %+v", r)
	}
	r = SetRights{Range: one(5, 5), Setting: SetOwnershipWithChecks, Ownership: model.OwnershipConstructionRightsOwned}.Execute(env, 0)
	if !r.IsOK() || env.Surface(5, 5).Ownership != model.OwnershipConstructionRightsOwned {
		t.Fatalf("ground-level entrance allows construction rights: %+v", r)
	}

	env = edittest.New(16)
	env.R.EditorMode = true
	env.Surface(5, 5).Ownership = model.OwnershipUnowned
	env.Place(5, 5, &store.Entrance{Header: store.Header{BaseHeight: 24, ClearanceHeight: 30, Quadrants: store.AllQuadrants}, Kind: store.EntrancePark})
	r = SetRights{Range: one(5, 5), Setting: SetOwnershipWithChecks, Ownership: model.OwnershipConstructionRightsOwned}.Execute(env, 0)
	if !r.IsOK() || env.Surface(5, 5).Ownership != model.OwnershipUnowned {
		t.Fatalf("raised entrance must leave rights alone: %+v", r)
	}
}

func TestParseSetting(t *testing.T) {
	s, ok := ParseSetting("SET_CONSTRUCTION_RIGHTS_FOR_SALE")
	if !ok || s != SetConstructionRightsForSale {
		t.Fatalf("parse: %v %v", s, ok)
	}
	if _, ok := ParseSetting("BUY"); ok {
		t.Fatalf("unknown setting parsed")
	}
}
