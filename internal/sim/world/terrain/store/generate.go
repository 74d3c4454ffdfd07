package store

import (
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/gen"
	"parkcraft.ai/internal/sim/world/terrain/slope"
)

// Generate builds a map from the generator's vertex levels.
func Generate(size, maxElements int, p gen.Params) *Store {
	s := New(size, maxElements, p.BaseHeight)
	levels := gen.VertexLevels(p, size)
	n := size + 1
	at := func(vx, vy int) int { return p.BaseHeight + model.LandStep*levels[vx+vy*n] }
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			sf := s.SurfaceAt(model.TileXY{X: x, Y: y})
			corners := [4]int{at(x, y), at(x, y+1), at(x+1, y+1), at(x+1, y)}
			if base, sl, ok := slope.FromCorners(corners); ok {
				sf.SetHeight(base, sl)
			}
			if p.WaterHeight > sf.BaseHeight {
				sf.WaterHeight = p.WaterHeight
			}
		}
	}
	return s
}
