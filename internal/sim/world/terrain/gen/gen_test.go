package gen

import "testing"

func TestVertexLevelsAreStepLimited(t *testing.T) {
	p := Params{Seed: 42, HillGrid: 8, HillProbPermille: 700, HillMaxSteps: 5}
	const size = 40
	levels := VertexLevels(p, size)
	n := size + 1
	raised := 0
	for vy := 0; vy < n; vy++ {
		for vx := 0; vx < n; vx++ {
			v := levels[vx+vy*n]
			if v > 0 {
				raised++
			}
			if vx+1 < n && abs(v-levels[vx+1+vy*n]) > 1 {
				t.Fatalf("x step too large at %d,%d", vx, vy)
			}
			if vy+1 < n && abs(v-levels[vx+(vy+1)*n]) > 1 {
				t.Fatalf("y step too large at %d,%d", vx, vy)
			}
		}
	}
	if raised == 0 {
		t.Fatalf("expected some hills")
	}
}

func TestVertexLevelsDeterministic(t *testing.T) {
	p := Params{Seed: 7, HillGrid: 6, HillProbPermille: 500, HillMaxSteps: 3}
	a := VertexLevels(p, 20)
	b := VertexLevels(p, 20)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("mismatch at %d", i)
		}
	}
	for _, v := range VertexLevels(Params{}, 4) {
		if v != 0 {
			t.Fatalf("expected flat map without hills")
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
