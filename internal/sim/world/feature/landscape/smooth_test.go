package landscape

import (
	"testing"

	"parkcraft.ai/internal/sim/world/edit/edittest"
	"parkcraft.ai/internal/sim/world/terrain/slope"
)

// checkTerrain fails on invalid slopes and on neighbours that disagree about
// a shared vertex.
func checkTerrain(t *testing.T, env *edittest.Env) {
	t.Helper()
	size := env.Store.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			sf := env.Surface(x, y)
			if !slope.Valid(sf.Slope) {
				t.Fatalf("tile %d,%d has invalid slope %#x", x, y, sf.Slope)
			}
			c := env.Corners(x, y)
			if x+1 < size {
				n := env.Corners(x+1, y)
				if c[3] != n[0] || c[2] != n[1] {
					t.Fatalf("seam between %d,%d and %d,%d: %v %v", x, y, x+1, y, c, n)
				}
			}
			if y+1 < size {
				n := env.Corners(x, y+1)
				if c[1] != n[0] || c[2] != n[3] {
					t.Fatalf("seam between %d,%d and %d,%d: %v %v", x, y, x, y+1, c, n)
				}
			}
		}
	}
}

func TestSmoothRaiseBlendsNeighbours(t *testing.T) {
	env := edittest.New(32)
	r := Smooth{Range: rng(10, 10, 12, 12), Selection: slope.SelectFull}.Execute(env, 0)
	if !r.IsOK() {
		t.Fatalf("smooth failed: %+v", r)
	}
	checkTerrain(t, env)
	if sf := env.Surface(11, 11); sf.BaseHeight != 16 || sf.Slope != slope.Flat {
		t.Fatalf("range not raised: %+v", sf)
	}
	if c := env.Corners(9, 11); c != [4]int{14, 14, 16, 16} {
		t.Fatalf("west neighbour corners %v", c)
	}
	if c := env.Corners(9, 9); c != [4]int{14, 14, 16, 14} {
		t.Fatalf("diagonal neighbour corners %v", c)
	}
	if c := env.Corners(8, 11); c != [4]int{14, 14, 14, 14} {
		t.Fatalf("second ring must stay flat: %v", c)
	}
}

func TestSmoothLShapeHasNoSeams(t *testing.T) {
	env := edittest.New(32)
	if r := (Smooth{Range: rng(10, 10, 12, 12), Selection: slope.SelectFull}).Execute(env, 0); !r.IsOK() {
		t.Fatalf("first smooth failed: %+v", r)
	}
	if r := (Smooth{Range: rng(13, 10, 16, 11), Selection: slope.SelectFull}).Execute(env, 0); !r.IsOK() {
		t.Fatalf("second smooth failed: %+v", r)
	}
	checkTerrain(t, env)
}

func TestSmoothRepeatedRaiseStaysValid(t *testing.T) {
	env := edittest.New(32)
	for i := 0; i < 4; i++ {
		if r := (Smooth{Range: rng(14, 14, 15, 15), Selection: slope.SelectFull}).Execute(env, 0); !r.IsOK() {
			t.Fatalf("smooth %d failed: %+v", i, r)
		}
	}
	checkTerrain(t, env)
	if env.Surface(14, 14).BaseHeight != 22 {
		t.Fatalf("expected four steps up, got %d", env.Surface(14, 14).BaseHeight)
	}
	if c := env.Corners(10, 14); c[0] != 14 || c[3] != 16 {
		t.Fatalf("cone should reach four tiles out: %v", c)
	}
}

func TestSmoothLowerMirrorsRaise(t *testing.T) {
	env := edittest.New(32)
	r := Smooth{Range: rng(10, 10, 12, 12), Selection: slope.SelectFull, Lowering: true}.Execute(env, 0)
	if !r.IsOK() {
		t.Fatalf("smooth failed: %+v", r)
	}
	checkTerrain(t, env)
	if env.Surface(11, 11).BaseHeight != 12 {
		t.Fatalf("range not lowered")
	}
	if c := env.Corners(13, 11); c != [4]int{12, 12, 14, 14} {
		t.Fatalf("east neighbour corners %v", c)
	}
}

func TestSmoothQueryMatchesExecute(t *testing.T) {
	env := edittest.New(32)
	cmd := Smooth{Range: rng(10, 10, 12, 12), Selection: slope.SelectFull}
	q := cmd.Query(env, 0)
	if env.Surface(9, 11).Slope != slope.Flat {
		t.Fatalf("query must not mutate")
	}
	x := cmd.Execute(env, 0)
	if !q.IsOK() || !x.IsOK() || q.Cost != x.Cost {
		t.Fatalf("query %+v execute %+v", q, x)
	}
	// 9 range tiles at 20.00, 12 edge tiles at 10.00, 4 corners at 5.00
	if x.Cost.String() != "320.00" {
		t.Fatalf("cost %s", x.Cost)
	}
}
