package landscape

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/logic/mathx"
	"parkcraft.ai/internal/sim/world/terrain/slope"
)

// Smooth raises or lowers a range and blends the surrounding terrain into it,
// one step of height per tile of distance.
type Smooth struct {
	Range     model.TileRange
	Selection slope.Selection
	Lowering  bool
}

func (c Smooth) Query(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Query())
}

func (c Smooth) Execute(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Execute())
}

// Run blends the neighbourhood first, against the planned heights of the
// range, then applies the area raise or lower. Neighbour failures are skipped;
// an area failure fails the command.
func (c Smooth) Run(env edit.Env, flags action.Flags) action.Result {
	title := action.StrCantRaiseLandHere
	if c.Lowering {
		title = action.StrCantLowerLandHere
	}
	if !c.Selection.Valid() {
		return action.Fail(action.StatusInvalidParameters, title, action.StrInvalidSelection)
	}
	valid := c.Range.Clamp(env.Tiles().Size())
	plan, _ := planArea(env, valid, c.Selection.Row(), c.Lowering)

	sm := newSmoother(env, flags, valid, plan, c.Lowering)
	sm.cornerRays()
	sm.edgeRays()

	res := runArea(env, flags, c.Range, c.Selection, c.Lowering)
	if !res.IsOK() {
		return res.WithTitle(title)
	}
	res.Cost += sm.cost
	return res
}

type vertex struct{ x, y int }

func cornerVertex(xy model.TileXY, corner int) vertex {
	switch corner & 3 {
	case 0:
		return vertex{xy.X, xy.Y}
	case 1:
		return vertex{xy.X, xy.Y + 1}
	case 2:
		return vertex{xy.X + 1, xy.Y + 1}
	default:
		return vertex{xy.X + 1, xy.Y}
	}
}

func distance(a, b vertex) int { return mathx.AbsInt(a.x-b.x) + mathx.AbsInt(a.y-b.y) }

type smoother struct {
	env      edit.Env
	flags    action.Flags
	rng      model.TileRange
	lowering bool
	// target holds the planned height of every vertex on the range.
	target map[vertex]int
	cost   model.Money
}

func newSmoother(env edit.Env, flags action.Flags, rng model.TileRange, plan []plannedTile, lowering bool) *smoother {
	s := &smoother{env: env, flags: flags, rng: rng, lowering: lowering, target: map[vertex]int{}}
	planned := make(map[model.TileXY]plannedTile, len(plan))
	for _, p := range plan {
		planned[p.tile] = p
	}
	tiles := env.Tiles()
	rng.Each(func(xy model.TileXY) {
		sf := tiles.SurfaceAt(xy)
		if sf == nil {
			return
		}
		corners := sf.Corners()
		if p, ok := planned[xy]; ok {
			corners = slope.Corners(p.base, p.slope)
		}
		for c, h := range corners {
			v := cornerVertex(xy, c)
			if cur, ok := s.target[v]; ok {
				h = s.merge(cur, h)
			}
			s.target[v] = h
		}
	})
	return s
}

// merge keeps whichever height the edit direction favours.
func (s *smoother) merge(a, b int) int {
	if s.lowering {
		return mathx.MinInt(a, b)
	}
	return mathx.MaxInt(a, b)
}

func (s *smoother) cone(src, v vertex) int {
	d := model.LandStep * distance(src, v)
	if s.lowering {
		return s.target[src] + d
	}
	return s.target[src] - d
}

// pull moves the tile's corners onto the cones of their source vertices and
// issues a nested SetHeight when anything moved. It reports which corners
// moved; a failed SetHeight still counts so Query and Execute walk the same
// rays.
func (s *smoother) pull(xy model.TileXY, source func(v vertex) (vertex, bool)) (moved [4]bool) {
	tiles := s.env.Tiles()
	if !tiles.InMap(xy) || tiles.IsEdge(xy) {
		return moved
	}
	sf := tiles.SurfaceAt(xy)
	if sf == nil {
		return moved
	}
	orig := sf.Corners()
	next := orig
	changed := false
	for c := 0; c < 4; c++ {
		v := cornerVertex(xy, c)
		src, ok := source(v)
		if !ok {
			continue
		}
		if _, known := s.target[src]; !known {
			continue
		}
		next[c] = s.merge(orig[c], s.cone(src, v))
		if next[c] != orig[c] {
			moved[c] = true
			changed = true
		}
	}
	if !changed {
		return moved
	}
	base, sl, ok := slope.FromCorners(next)
	if !ok {
		return moved
	}
	if r := (SetHeight{Tile: xy, Height: base, Slope: sl}).Run(s.env, s.flags); r.IsOK() {
		s.cost += r.Cost
	}
	return moved
}

func anyMoved(m [4]bool) bool { return m[0] || m[1] || m[2] || m[3] }

// cornerRays walk diagonally out of each range corner; every diagonal tile
// also starts one ray along x and one along y, so together they cover the
// quadrant once.
func (s *smoother) cornerRays() {
	r := s.rng
	quads := []struct {
		sx, sy int
		src    vertex
	}{
		{-1, -1, vertex{r.Min.X, r.Min.Y}},
		{-1, 1, vertex{r.Min.X, r.Max.Y + 1}},
		{1, 1, vertex{r.Max.X + 1, r.Max.Y + 1}},
		{1, -1, vertex{r.Max.X + 1, r.Min.Y}},
	}
	for _, q := range quads {
		q := q
		at := func(i, j int) model.TileXY {
			x := r.Min.X - i
			if q.sx > 0 {
				x = r.Max.X + i
			}
			y := r.Min.Y - j
			if q.sy > 0 {
				y = r.Max.Y + j
			}
			return model.TileXY{X: x, Y: y}
		}
		source := func(vertex) (vertex, bool) { return q.src, true }
		for k := 1; anyMoved(s.pull(at(k, k), source)); k++ {
			for m := k + 1; anyMoved(s.pull(at(m, k), source)); m++ {
			}
			for m := k + 1; anyMoved(s.pull(at(k, m), source)); m++ {
			}
		}
	}
}

// edgeRays walk straight out of every boundary tile. Each ray carries two
// tracks, one per corner row, and a track ends once its far corner stops
// moving.
func (s *smoother) edgeRays() {
	r := s.rng
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		y := y
		s.edgeRay(
			func(j int) model.TileXY { return model.TileXY{X: r.Min.X - j, Y: y} },
			func(v vertex) vertex { return vertex{r.Min.X, v.y} },
			func(v vertex) int { return v.y - y },
		)
	}
	for x := r.Min.X; x <= r.Max.X; x++ {
		x := x
		s.edgeRay(
			func(j int) model.TileXY { return model.TileXY{X: x, Y: r.Max.Y + j} },
			func(v vertex) vertex { return vertex{v.x, r.Max.Y + 1} },
			func(v vertex) int { return v.x - x },
		)
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		y := y
		s.edgeRay(
			func(j int) model.TileXY { return model.TileXY{X: r.Max.X + j, Y: y} },
			func(v vertex) vertex { return vertex{r.Max.X + 1, v.y} },
			func(v vertex) int { return v.y - y },
		)
	}
	for x := r.Min.X; x <= r.Max.X; x++ {
		x := x
		s.edgeRay(
			func(j int) model.TileXY { return model.TileXY{X: x, Y: r.Min.Y - j} },
			func(v vertex) vertex { return vertex{v.x, r.Min.Y} },
			func(v vertex) int { return v.x - x },
		)
	}
}

func (s *smoother) edgeRay(at func(j int) model.TileXY, project func(v vertex) vertex, track func(v vertex) int) {
	mask := uint8(0x3)
	for j := 1; mask != 0; j++ {
		xy := at(j)
		live := mask
		moved := s.pull(xy, func(v vertex) (vertex, bool) {
			return project(v), live&(1<<track(v)) != 0
		})
		mask = 0
		for c := 0; c < 4; c++ {
			v := cornerVertex(xy, c)
			if moved[c] && distance(v, project(v)) == j {
				mask |= 1 << track(v)
			}
		}
	}
}
