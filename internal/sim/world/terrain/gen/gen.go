// Package gen builds deterministic starting heightmaps.
package gen

import "parkcraft.ai/internal/sim/world/logic/mathx"

type Params struct {
	Seed int64
	// BaseHeight is the height of flat ground, in height units.
	BaseHeight int
	// WaterHeight floods every tile whose base is below it; 0 means dry.
	WaterHeight int

	HillGrid         int
	HillProbPermille uint64
	HillMaxSteps     int
}

// VertexLevels returns a step level for each of the (size+1)^2 map vertices,
// row-major. Adjacent levels never differ by more than one step.
func VertexLevels(p Params, size int) []int {
	n := size + 1
	out := make([]int, n*n)
	if p.HillGrid <= 0 || p.HillMaxSteps <= 0 || p.HillProbPermille == 0 {
		return out
	}
	maxSteps := p.HillMaxSteps
	if maxSteps > p.HillGrid {
		maxSteps = p.HillGrid
	}
	for vy := 0; vy < n; vy++ {
		for vx := 0; vx < n; vx++ {
			out[vx+vy*n] = levelAt(p, maxSteps, vx, vy)
		}
	}
	return out
}

// levelAt takes the highest cone among hills seeded in the 3x3 cells around
// the vertex. Cones never reach past one cell, so the window is exact.
func levelAt(p Params, maxSteps, vx, vy int) int {
	grid := p.HillGrid
	gx := mathx.FloorDiv(vx, grid)
	gy := mathx.FloorDiv(vy, grid)
	level := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			cgx, cgy := gx+dx, gy+dy
			h := mathx.Hash2(p.Seed, cgx, cgy)
			if h%1000 >= p.HillProbPermille {
				continue
			}
			cx := cgx*grid + int((h>>10)%uint64(grid))
			cy := cgy*grid + int((h>>20)%uint64(grid))
			peak := 1 + int((h>>30)%uint64(maxSteps))
			if l := peak - mathx.AbsInt(vx-cx) - mathx.AbsInt(vy-cy); l > level {
				level = l
			}
		}
	}
	return level
}
