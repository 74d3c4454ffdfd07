package footpath

import (
	"testing"

	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit/edittest"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

func at(x, y int) model.TileXY { return model.TileXY{X: x, Y: y} }

func flat(x, y, h int, typ uint8) Place {
	return Place{Tile: at(x, y), Height: h, Type: typ, Direction: model.InvalidDirection}
}

func pathAt(t *testing.T, env *edittest.Env, x, y, h int) *store.Path {
	t.Helper()
	p := env.Store.PathAt(at(x, y), h, 0)
	if p == nil {
		t.Fatalf("no path at %d,%d h=%d", x, y, h)
	}
	return p
}

func TestInsertFlatPath(t *testing.T) {
	env := edittest.New(16)
	env.Litter[at(5, 5)] = 2
	cmd := flat(5, 5, 14, edittest.PathTarmac)
	q := cmd.Query(env, 0)
	if !q.IsOK() || q.Cost != InsertCost || q.Expenditure != model.ExpenditureConstruction {
		t.Fatalf("query %+v", q)
	}
	if env.Store.PathAt(at(5, 5), 14, 0) != nil {
		t.Fatalf("query must not insert")
	}
	x := cmd.Execute(env, 0)
	if !x.IsOK() || x.Cost != q.Cost {
		t.Fatalf("execute %+v", x)
	}
	pp, ok := x.Payload.(action.PathPayload)
	if !ok || !pp.Created || pp.Tile != at(5, 5) {
		t.Fatalf("payload %+v", x.Payload)
	}
	p := pathAt(t, env, 5, 5, 14)
	if p.ClearanceHeight != 18 || p.RideIndex != store.NoRide || p.Ghost || p.Addition != 0 {
		t.Fatalf("unexpected path %+v", p)
	}
	if _, ok := env.Litter[at(5, 5)]; ok || len(env.Stopped) != 1 || len(env.Sounds) != 1 {
		t.Fatalf("expected litter removed, peeps interrupted and a sound")
	}
}

func TestSupportCost(t *testing.T) {
	env := edittest.New(16)
	if r := flat(5, 5, 18, edittest.PathTarmac).Query(env, 0); r.Cost != InsertCost+4*SupportCost {
		t.Fatalf("raised path cost %s", r.Cost)
	}
	if r := flat(5, 5, 6, edittest.PathTarmac).Query(env, 0); !r.IsOK() || r.Cost != InsertCost+UndergroundCost {
		t.Fatalf("tunnel cost %+v", r)
	}
}

func TestRecostOnTypeChange(t *testing.T) {
	env := edittest.New(16)
	if r := flat(5, 5, 14, edittest.PathTarmac).Execute(env, 0); !r.IsOK() {
		t.Fatalf("insert %+v", r)
	}
	r := flat(5, 5, 14, edittest.PathDirt).Execute(env, 0)
	if !r.IsOK() || r.Cost != model.Units(6, 0) {
		t.Fatalf("type change cost %+v", r)
	}
	if pathAt(t, env, 5, 5, 14).SurfaceIndex != edittest.PathDirt {
		t.Fatalf("type not updated")
	}
	if r := flat(5, 5, 14, edittest.PathDirt).Query(env, 0); !r.IsOK() || r.Cost != 0 {
		t.Fatalf("same type must be free: %+v", r)
	}
	if n := len(env.Store.Elements(at(5, 5))); n != 2 {
		t.Fatalf("update must not add elements, have %d", n)
	}
}

func TestGhostCollisions(t *testing.T) {
	env := edittest.New(16)
	flat(5, 5, 14, edittest.PathTarmac).Execute(env, 0)
	r := flat(5, 5, 14, edittest.PathDirt).Query(env, action.FlagGhost)
	if r.Status != action.StatusItemAlreadyPlaced || r.ErrorTitle != action.StrCantBuildFootpathHere {
		t.Fatalf("ghost over real: %+v", r)
	}

	if r := flat(6, 6, 14, edittest.PathTarmac).Execute(env, action.FlagGhost); !r.IsOK() {
		t.Fatalf("ghost insert %+v", r)
	}
	if !pathAt(t, env, 6, 6, 14).Ghost || len(env.Sounds) != 1 {
		t.Fatalf("ghost must be marked and silent")
	}
	if r := flat(6, 6, 14, edittest.PathDirt).Query(env, action.FlagGhost); !r.IsOK() || r.Cost != ReplaceCost {
		t.Fatalf("ghost over ghost re-costs: %+v", r)
	}
	if r := flat(6, 6, 14, edittest.PathTarmac).Execute(env, 0); !r.IsOK() || r.Cost != 0 {
		t.Fatalf("real over ghost: %+v", r)
	}
	if pathAt(t, env, 6, 6, 14).Ghost {
		t.Fatalf("real placement must commit the ghost")
	}
}

func TestParkEntranceAbsorbsPath(t *testing.T) {
	env := edittest.New(16)
	en := &store.Entrance{Header: store.Header{BaseHeight: 14, ClearanceHeight: 26, Quadrants: store.AllQuadrants}, Kind: store.EntrancePark, PathType: edittest.PathTarmac}
	env.Place(5, 5, en)

	r := flat(5, 5, 14, edittest.PathTarmac).Execute(env, 0)
	if !r.IsOK() || r.Cost != 0 || len(env.Sounds) != 0 {
		t.Fatalf("same path type must be free and silent: %+v", r)
	}
	r = flat(5, 5, 14, edittest.PathDirt).Execute(env, 0)
	if !r.IsOK() || r.Cost != model.Units(6, 0) {
		t.Fatalf("entrance repave %+v", r)
	}
	if en.PathType != edittest.PathDirt {
		t.Fatalf("entrance path type not updated")
	}
	if env.Store.PathAt(at(5, 5), 14, 0) != nil {
		t.Fatalf("absorbed placement must not create a path")
	}
}

func TestDirectionalPlacementConnects(t *testing.T) {
	env := edittest.New(16)
	flat(5, 5, 14, edittest.PathTarmac).Execute(env, 0)
	next := Place{Tile: at(6, 5), Height: 14, Type: edittest.PathTarmac, Direction: 2}
	if r := next.Execute(env, 0); !r.IsOK() {
		t.Fatalf("place %+v", r)
	}
	a, b := pathAt(t, env, 5, 5, 14), pathAt(t, env, 6, 5, 14)
	if a.Edges != 1<<2 || b.Edges != 1<<0 {
		t.Fatalf("edges %#x %#x", a.Edges, b.Edges)
	}
	flat(5, 6, 14, edittest.PathTarmac).Execute(env, 0)
	if a.Edges != 1<<1|1<<2 || a.Corners != 1<<2 {
		t.Fatalf("edges %#x corners %#x", a.Edges, a.Corners)
	}
}

func TestLayoutPlaceKeepsGivenEdges(t *testing.T) {
	env := edittest.New(16)
	flat(4, 5, 14, edittest.PathTarmac).Execute(env, 0)
	r := LayoutPlace{Tile: at(5, 5), Height: 14, Type: edittest.PathTarmac, Edges: 0x05}.Execute(env, 0)
	if !r.IsOK() {
		t.Fatalf("layout %+v", r)
	}
	if pathAt(t, env, 5, 5, 14).Edges != 0x05 || pathAt(t, env, 4, 5, 14).Edges != 0 {
		t.Fatalf("layout placement must not rewire neighbours")
	}
}

func TestTrackDesignLayoutIsQuiet(t *testing.T) {
	env := edittest.New(16)
	env.Litter[at(5, 5)] = 1
	lp := LayoutPlace{Tile: at(5, 5), Height: 14, Type: edittest.PathTarmac, Edges: 0x05}
	if r := lp.Execute(env, action.FlagFromTrackDesign); !r.IsOK() {
		t.Fatalf("layout %+v", r)
	}
	if _, ok := env.Litter[at(5, 5)]; !ok || len(env.Stopped) != 0 || len(env.Sounds) != 0 {
		t.Fatalf("blueprint pieces must not touch peeps, litter or sound")
	}
	if p := pathAt(t, env, 5, 5, 14); p.Edges != 0x05 || p.Ghost {
		t.Fatalf("layout path %+v", p)
	}

	// the directional placement ignores the blueprint flag
	if r := flat(6, 6, 14, edittest.PathTarmac).Execute(env, action.FlagFromTrackDesign); !r.IsOK() {
		t.Fatalf("place %+v", r)
	}
	if len(env.Stopped) != 1 || len(env.Sounds) != 1 {
		t.Fatalf("directional placement should still interrupt peeps and play a sound")
	}
}

func TestSlopedPathJoinsBothLevels(t *testing.T) {
	env := edittest.New(16)
	flat(4, 5, 14, edittest.PathTarmac).Execute(env, 0)
	flat(6, 5, 16, edittest.PathTarmac).Execute(env, 0)
	sloped := store.PathSlopeSloped | 2
	r := Place{Tile: at(5, 5), Height: 14, Type: edittest.PathTarmac, Slope: sloped, Direction: model.InvalidDirection}.Execute(env, 0)
	if !r.IsOK() {
		t.Fatalf("sloped %+v", r)
	}
	p := env.Store.PathAt(at(5, 5), 14, sloped)
	if p == nil || p.ClearanceHeight != 20 || p.Edges != 0x05 {
		t.Fatalf("sloped path %+v", p)
	}
}

func TestSlopedPathFollowsRaisedEdge(t *testing.T) {
	for d := uint8(0); d < 4; d++ {
		env := edittest.New(16)
		env.SetLand(5, 5, 14, 1<<d|1<<((d+1)&3))
		sloped := store.PathSlopeSloped | d
		r := Place{Tile: at(5, 5), Height: 14, Type: edittest.PathTarmac, Slope: sloped, Direction: model.InvalidDirection}.Execute(env, 0)
		if !r.IsOK() {
			t.Fatalf("direction %d: %+v", d, r)
		}
		if env.Store.PathAt(at(5, 5), 14, sloped) == nil {
			t.Fatalf("direction %d: no sloped path", d)
		}
	}
}

func TestFlatPathOnOneCornerSlope(t *testing.T) {
	env := edittest.New(16)
	env.SetLand(5, 5, 14, slope.CornerN)
	if r := flat(5, 5, 14, edittest.PathTarmac).Execute(env, 0); !r.IsOK() {
		t.Fatalf("flat path on a raised corner %+v", r)
	}
	pathAt(t, env, 5, 5, 14)

	env.SetLand(6, 6, 14, slope.CornerN|slope.CornerE|slope.CornerW|slope.Diagonal)
	if r := flat(6, 6, 14, edittest.PathTarmac).Execute(env, 0); r.ErrorMessage != action.StrRaiseOrLowerLandFirst {
		t.Fatalf("a doubled corner must block the path: %+v", r)
	}
}

func TestExecuteClearsBeforeInserting(t *testing.T) {
	env := edittest.New(16)
	for q := uint8(0); q < 2; q++ {
		env.Place(5, 5, &store.SmallScenery{Header: store.Header{BaseHeight: 14, ClearanceHeight: 16, Quadrants: 1 << q}, Entry: edittest.SceneryShrub})
	}
	if r := flat(5, 5, 14, edittest.PathTarmac).Execute(env, 0); !r.IsOK() {
		t.Fatalf("execute %+v", r)
	}
	for _, e := range env.Store.Elements(at(5, 5)) {
		if e.Type() == store.TypeSmallScenery {
			t.Fatalf("shrub left behind")
		}
	}

	env.R.Park.ForbidTreeRemoval = true
	env.Place(6, 6, &store.SmallScenery{Header: store.Header{BaseHeight: 14, ClearanceHeight: 20, Quadrants: store.AllQuadrants}, Entry: edittest.SceneryTreeOak})
	if r := flat(6, 6, 14, edittest.PathTarmac).Execute(env, 0); r.IsOK() {
		t.Fatalf("tree removal is forbidden")
	}
	if len(env.Store.Elements(at(6, 6))) != 2 || env.Store.PathAt(at(6, 6), 14, 0) != nil {
		t.Fatalf("refused placement must leave the tile alone")
	}
}

func TestQueueChainTakesRideFromEntrance(t *testing.T) {
	env := edittest.New(16)
	env.Place(4, 5, &store.Entrance{Header: store.Header{BaseHeight: 14, ClearanceHeight: 20, Quadrants: store.AllQuadrants}, Kind: store.EntranceRide, RideIndex: 3})
	q := flat(5, 5, 14, edittest.PathQueueBlue)
	q.Queue = true
	if r := q.Execute(env, 0); !r.IsOK() {
		t.Fatalf("queue %+v", r)
	}
	q2 := Place{Tile: at(6, 5), Height: 14, Type: edittest.PathQueueBlue, Queue: true, Direction: 2}
	if r := q2.Execute(env, 0); !r.IsOK() {
		t.Fatalf("queue %+v", r)
	}
	if pathAt(t, env, 5, 5, 14).RideIndex != 3 || pathAt(t, env, 6, 5, 14).RideIndex != 3 {
		t.Fatalf("queue chain not bound to ride")
	}
}

func TestAdditionResetOnQueueChange(t *testing.T) {
	env := edittest.New(16)
	env.Place(5, 5, &store.Path{Header: store.Header{BaseHeight: 14, ClearanceHeight: 18, Quadrants: store.AllQuadrants}, SurfaceIndex: edittest.PathTarmac, Addition: edittest.AdditionBench, RideIndex: store.NoRide})
	q := flat(5, 5, 14, edittest.PathQueueBlue)
	q.Queue = true
	if r := q.Execute(env, 0); !r.IsOK() || r.Cost != ReplaceCost {
		t.Fatalf("queue conversion %+v", r)
	}
	if p := pathAt(t, env, 5, 5, 14); !p.Queue || p.Addition != 0 {
		t.Fatalf("bench must go from a queue: %+v", p)
	}

	env.Place(7, 7, &store.Path{Header: store.Header{BaseHeight: 14, ClearanceHeight: 18, Quadrants: store.AllQuadrants}, SurfaceIndex: edittest.PathQueueBlue, Queue: true, Addition: edittest.AdditionQueueTV, RideIndex: store.NoRide})
	q = flat(7, 7, 14, edittest.PathQueueBlue)
	q.Queue = true
	q.Execute(env, 0)
	if pathAt(t, env, 7, 7, 14).Addition != edittest.AdditionQueueTV {
		t.Fatalf("queue screen must stay on a queue")
	}
}

func TestValidation(t *testing.T) {
	env := edittest.New(16)
	cases := []struct {
		cmd  Place
		stat action.Status
		msg  action.StringID
	}{
		{flat(0, 5, 14, edittest.PathTarmac), action.StatusDisallowed, action.StrOffEdgeOfMap},
		{flat(20, 5, 14, edittest.PathTarmac), action.StatusInvalidParameters, action.StrOffEdgeOfMap},
		{flat(5, 5, 0, edittest.PathTarmac), action.StatusDisallowed, action.StrTooLow},
		{flat(5, 5, 250, edittest.PathTarmac), action.StatusDisallowed, action.StrTooHigh},
		{flat(5, 5, 14, 9), action.StatusInvalidParameters, action.StrInvalidPathType},
		{flat(5, 5, 14, edittest.PathQueueBlue), action.StatusInvalidParameters, action.StrInvalidPathType},
		{Place{Tile: at(5, 5), Height: 14, Direction: 7}, action.StatusInvalidParameters, action.StrInvalidDirection},
		{Place{Tile: at(5, 5), Height: 14, Slope: PathSlopeIrregular, Direction: model.InvalidDirection}, action.StatusDisallowed, action.StrLandSlopeUnsuitable},
	}
	for _, c := range cases {
		r := c.cmd.Query(env, 0)
		if r.Status != c.stat || r.ErrorMessage != c.msg || r.ErrorTitle != action.StrCantBuildFootpathHere {
			t.Fatalf("%+v: got %+v", c.cmd, r)
		}
	}
}

func TestConstructionRightsAllowTunnelsOnly(t *testing.T) {
	env := edittest.New(16)
	env.Surface(5, 5).Ownership = model.OwnershipConstructionRightsOwned
	if r := flat(5, 5, 14, edittest.PathTarmac).Query(env, 0); r.ErrorMessage != action.StrLandNotOwnedByPark {
		t.Fatalf("expected not owned: %+v", r)
	}
	if r := flat(5, 5, 4, edittest.PathTarmac).Query(env, 0); !r.IsOK() {
		t.Fatalf("tunnel under rights should pass: %+v", r)
	}
}

func TestClearanceOutcomes(t *testing.T) {
	env := edittest.New(16)
	env.Place(5, 5, &store.SmallScenery{Header: store.Header{BaseHeight: 14, ClearanceHeight: 16, Quadrants: 0x1}, Entry: edittest.SceneryShrub})
	cmd := flat(5, 5, 14, edittest.PathTarmac)
	q := cmd.Query(env, 0)
	x := cmd.Execute(env, 0)
	if !x.IsOK() || q.Cost != x.Cost || x.Cost != model.Units(12, 50) {
		t.Fatalf("query %+v execute %+v", q, x)
	}
	if len(env.Store.Elements(at(5, 5))) != 2 {
		t.Fatalf("shrub must be cleared")
	}

	env.Place(6, 6, &store.Track{Header: store.Header{BaseHeight: 14, ClearanceHeight: 16, Quadrants: store.AllQuadrants}, RideType: edittest.RideMiniatureRailway, TrackType: store.TrackFlat})
	if r := flat(6, 6, 14, edittest.PathTarmac).Query(env, 0); !r.IsOK() {
		t.Fatalf("level crossing should be allowed: %+v", r)
	}
	queue := flat(6, 6, 14, edittest.PathQueueBlue)
	queue.Queue = true
	if r := queue.Query(env, 0); r.IsOK() || r.ErrorArg != "RIDE:MINIATURE_RAILWAY" {
		t.Fatalf("queue cannot cross track: %+v", r)
	}

	env.Surface(7, 7).WaterHeight = 20
	if r := flat(7, 7, 14, edittest.PathTarmac).Query(env, 0); r.ErrorMessage != action.StrCantBuildUnderwater {
		t.Fatalf("expected underwater refusal: %+v", r)
	}
}

func TestWallsBetweenDraggedTiles(t *testing.T) {
	env := edittest.New(16)
	wall := func(x, y int, d model.Direction) {
		env.Place(x, y, &store.Wall{Header: store.Header{BaseHeight: 14, ClearanceHeight: 18}, Entry: edittest.WallHedge, Direction: d})
	}
	wall(5, 5, 0)
	wall(5, 5, 1)
	wall(4, 5, 2)
	if r := (Place{Tile: at(5, 5), Height: 14, Type: edittest.PathTarmac, Direction: 2}).Execute(env, 0); !r.IsOK() {
		t.Fatalf("place %+v", r)
	}
	walls := func(x, y int) int {
		n := 0
		for _, e := range env.Store.Elements(at(x, y)) {
			if e.Type() == store.TypeWall {
				n++
			}
		}
		return n
	}
	if walls(5, 5) != 1 || walls(4, 5) != 0 {
		t.Fatalf("walls left: %d %d", walls(5, 5), walls(4, 5))
	}
}

func TestEditorPeepSpawn(t *testing.T) {
	env := edittest.New(16)
	flat(1, 5, 14, edittest.PathTarmac).Execute(env, 0)
	if len(env.Spawns) != 0 {
		t.Fatalf("spawns only move in the editor")
	}
	env.R.EditorMode = true
	flat(1, 6, 14, edittest.PathTarmac).Execute(env, 0)
	want := model.PeepSpawn{X: 33, Y: 6*32 + 16, Z: 14 * model.ZStep, Direction: 0}
	if len(env.Spawns) != 1 || env.Spawns[0] != want {
		t.Fatalf("spawns %+v want %+v", env.Spawns, want)
	}
	flat(7, 14, 14, edittest.PathTarmac).Execute(env, 0)
	if len(env.Spawns) != 1 || env.Spawns[0].Direction != 1 || env.Spawns[0].Y != 14*32+16+15 {
		t.Fatalf("spawn not moved: %+v", env.Spawns)
	}
	flat(7, 7, 14, edittest.PathTarmac).Execute(env, action.FlagGhost)
	flat(8, 7, 14, edittest.PathTarmac).Execute(env, 0)
	if env.Spawns[0].Direction != 1 {
		t.Fatalf("interior paths leave spawns alone")
	}
}
