package footpath

import (
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// edgeHeight is the height at which a path meets its edge in direction d. A
// sloped path rises towards its slope direction and has no side edges.
func edgeHeight(p *store.Path, d model.Direction) (int, bool) {
	if !p.Sloped {
		return p.BaseHeight, true
	}
	switch d {
	case p.SlopeDirection:
		return p.BaseHeight + model.LandStep, true
	case p.SlopeDirection.Reverse():
		return p.BaseHeight, true
	default:
		return 0, false
	}
}

// cornersFor derives the corner bits: corner c sits between edges c-1 and c.
func cornersFor(edges uint8) uint8 {
	var corners uint8
	for c := 0; c < 4; c++ {
		prev := (c + 3) & 3
		if edges&(1<<prev) != 0 && edges&(1<<c) != 0 {
			corners |= 1 << c
		}
	}
	return corners
}

// meets reports whether path a on one tile and b on the tile in direction d
// share the edge between them.
func meets(a *store.Path, d model.Direction, b *store.Path) bool {
	ha, ok := edgeHeight(a, d)
	if !ok {
		return false
	}
	hb, ok := edgeHeight(b, d.Reverse())
	return ok && ha == hb
}

// ConnectEdges recomputes the path's edges from its neighbours. When link is
// set, neighbouring real paths gain the matching edge too; previews never
// alter real paths.
func ConnectEdges(tiles store.TileStore, xy model.TileXY, path *store.Path, link bool) {
	path.Edges = 0
	for d := model.Direction(0); d < 4; d++ {
		h, ok := edgeHeight(path, d)
		if !ok {
			continue
		}
		n := xy.Add(d.Delta())
		for _, e := range tiles.Elements(n) {
			switch v := e.(type) {
			case *store.Path:
				if v.Ghost && !path.Ghost {
					continue
				}
				if !meets(path, d, v) {
					continue
				}
				path.Edges |= 1 << d
				if link && !v.Ghost {
					v.Edges |= 1 << d.Reverse()
					v.Corners = cornersFor(v.Edges)
					tiles.InvalidateTile(n)
				}
			case *store.Entrance:
				if v.BaseHeight == h && v.Direction&1 == d&1 {
					path.Edges |= 1 << d
				}
			}
		}
	}
	path.Corners = cornersFor(path.Edges)
}

// RemoveEdges disconnects the path from its neighbours and clears its own
// edges.
func RemoveEdges(tiles store.TileStore, xy model.TileXY, path *store.Path) {
	if !path.Ghost {
		for d := model.Direction(0); d < 4; d++ {
			if path.Edges&(1<<d) == 0 {
				continue
			}
			if v := neighbourPath(tiles, xy, path, d); v != nil {
				v.Edges &^= 1 << d.Reverse()
				v.Corners = cornersFor(v.Edges)
				tiles.InvalidateTile(xy.Add(d.Delta()))
			}
		}
	}
	path.Edges = 0
	path.Corners = 0
}

// neighbourPath finds the real path across edge d that links back to path.
func neighbourPath(tiles store.TileStore, xy model.TileXY, path *store.Path, d model.Direction) *store.Path {
	for _, e := range tiles.Elements(xy.Add(d.Delta())) {
		v, ok := e.(*store.Path)
		if !ok || v.Ghost || v.Edges&(1<<d.Reverse()) == 0 {
			continue
		}
		if meets(path, d, v) {
			return v
		}
	}
	return nil
}

type chainLink struct {
	tile model.TileXY
	path *store.Path
}

// UpdateQueueChains re-derives the ride index of every queue chain touching
// the path: a chain leading into a ride entrance takes that ride, any other
// chain belongs to no ride.
func UpdateQueueChains(tiles store.TileStore, xy model.TileXY, path *store.Path) {
	seeds := []chainLink{{xy, path}}
	for d := model.Direction(0); d < 4; d++ {
		if path.Edges&(1<<d) == 0 {
			continue
		}
		if v := neighbourPath(tiles, xy, path, d); v != nil {
			seeds = append(seeds, chainLink{xy.Add(d.Delta()), v})
		}
	}
	if !path.Queue {
		path.RideIndex = store.NoRide
	}
	seen := map[*store.Path]bool{}
	for _, s := range seeds {
		if !s.path.Queue || seen[s.path] {
			continue
		}
		chain := walkQueue(tiles, s, seen)
		ride := store.NoRide
		for _, l := range chain {
			if r, ok := rideEntranceNextTo(tiles, l); ok {
				ride = r
				break
			}
		}
		for _, l := range chain {
			if l.path.RideIndex != ride {
				l.path.RideIndex = ride
				tiles.InvalidateTile(l.tile)
			}
		}
	}
}

func walkQueue(tiles store.TileStore, start chainLink, seen map[*store.Path]bool) []chainLink {
	var chain []chainLink
	queue := []chainLink{start}
	seen[start.path] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		chain = append(chain, cur)
		for d := model.Direction(0); d < 4; d++ {
			if cur.path.Edges&(1<<d) == 0 {
				continue
			}
			v := neighbourPath(tiles, cur.tile, cur.path, d)
			if v == nil || !v.Queue || seen[v] {
				continue
			}
			seen[v] = true
			queue = append(queue, chainLink{cur.tile.Add(d.Delta()), v})
		}
	}
	return chain
}

func rideEntranceNextTo(tiles store.TileStore, l chainLink) (int, bool) {
	for d := model.Direction(0); d < 4; d++ {
		if l.path.Edges&(1<<d) == 0 {
			continue
		}
		h, ok := edgeHeight(l.path, d)
		if !ok {
			continue
		}
		for _, e := range tiles.Elements(l.tile.Add(d.Delta())) {
			if en, ok := e.(*store.Entrance); ok && en.Kind == store.EntranceRide && en.BaseHeight == h {
				return en.RideIndex, true
			}
		}
	}
	return 0, false
}
