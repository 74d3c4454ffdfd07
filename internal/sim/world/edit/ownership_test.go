package edit

import (
	"testing"

	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

func TestLocationOwnedConstructionRights(t *testing.T) {
	s := store.New(8, 0, 14)
	xy := model.TileXY{X: 2, Y: 2}
	s.SurfaceAt(xy).Ownership = model.OwnershipConstructionRightsOwned
	if LocationInPark(s, xy) {
		t.Fatalf("construction rights are not in-park")
	}
	if LocationOwned(s, xy, 14) || LocationOwned(s, xy, 16) {
		t.Fatalf("surface band must not be buildable with construction rights")
	}
	if !LocationOwned(s, xy, 12) || !LocationOwned(s, xy, 18) {
		t.Fatalf("expected tunnels and bridges to be buildable")
	}
	s.SurfaceAt(xy).Ownership = model.OwnershipOwned
	if !LocationOwned(s, xy, 14) || !LocationInPark(s, xy) {
		t.Fatalf("owned land must be buildable")
	}
	if LocationOwned(s, model.TileXY{X: -1, Y: 0}, 14) {
		t.Fatalf("off-map tiles are never owned")
	}
}

func TestSessionTouchOrder(t *testing.T) {
	s := NewSession()
	a, b := model.TileXY{X: 2, Y: 1}, model.TileXY{X: 1, Y: 1}
	s.Touch(a, "land_height")
	s.Touch(b, "water")
	s.Touch(a, "fences")
	got := s.TouchedTiles()
	if len(got) != 2 || got[0] != a || got[1] != b || s.TouchedCount() != 2 {
		t.Fatalf("unexpected touched tiles: %v", got)
	}
	if s.Reason(a) != "land_height" || !s.Touched(b) {
		t.Fatalf("unexpected reason: %q", s.Reason(a))
	}
}
