package mathx

import "testing"

func TestFloorDiv(t *testing.T) {
	cases := [][3]int{{7, 2, 3}, {-1, 32, -1}, {-32, 32, -1}, {-33, 32, -2}, {0, 5, 0}}
	for _, c := range cases {
		if got := FloorDiv(c[0], c[1]); got != c[2] {
			t.Fatalf("FloorDiv(%d,%d)=%d want %d", c[0], c[1], got, c[2])
		}
	}
}

func TestHash2Stable(t *testing.T) {
	if Hash2(1, 2, 3) != Hash2(1, 2, 3) {
		t.Fatalf("hash not stable")
	}
	if Hash2(1, 2, 3) == Hash2(1, 3, 2) {
		t.Fatalf("hash ignores axis order")
	}
	if ClampInt(9, 0, 4) != 4 || MinInt(3, -1) != -1 || MaxInt(3, -1) != 3 {
		t.Fatalf("unexpected clamp helpers")
	}
}
