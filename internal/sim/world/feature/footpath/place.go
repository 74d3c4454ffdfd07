// Package footpath places and replaces path tiles.
package footpath

import (
	"parkcraft.ai/internal/sim/world/action"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/feature/clearance"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// PathSlopeIrregular marks a request made over land no path slope can follow.
const PathSlopeIrregular uint8 = 0x08

// Clearance of a path above its base, plus the extra for sloped pieces.
const (
	PathClearance       = 4
	SlopedPathClearance = 2
)

var (
	InsertCost      = model.Units(12, 0)
	ReplaceCost     = model.Units(6, 0)
	UndergroundCost = model.Units(20, 0)
	SupportCost     = model.Units(5, 0)
)

// Place builds a path tile joined to the tile it was dragged from. Direction
// points from that tile to this one, or is InvalidDirection.
type Place struct {
	Tile      model.TileXY
	Height    int
	Type      uint8
	Railings  uint8
	Direction model.Direction
	Slope     uint8
	Queue     bool
}

// LayoutPlace builds a path tile with explicit edges, as blueprints do.
type LayoutPlace struct {
	Tile     model.TileXY
	Height   int
	Type     uint8
	Railings uint8
	Slope    uint8
	Edges    uint8
	Queue    bool
}

func (c Place) Query(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Query())
}

func (c Place) Execute(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Execute())
}

func (c Place) Run(env edit.Env, flags action.Flags) action.Result {
	flags &^= action.FlagFromTrackDesign
	if c.Slope&PathSlopeIrregular != 0 {
		return action.Fail(action.StatusDisallowed, action.StrCantBuildFootpathHere, action.StrLandSlopeUnsuitable)
	}
	if c.Direction != model.InvalidDirection && !c.Direction.Valid() {
		return action.Fail(action.StatusInvalidParameters, action.StrCantBuildFootpathHere, action.StrInvalidDirection)
	}
	return placement{
		tile: c.Tile, height: c.Height, typ: c.Type, railings: c.Railings,
		slope: c.Slope, queue: c.Queue, direction: c.Direction,
	}.run(env, flags)
}

func (c LayoutPlace) Query(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Query())
}

func (c LayoutPlace) Execute(env edit.Env, flags action.Flags) action.Result {
	return c.Run(env, flags.Execute())
}

func (c LayoutPlace) Run(env edit.Env, flags action.Flags) action.Result {
	return placement{
		tile: c.Tile, height: c.Height, typ: c.Type, railings: c.Railings,
		slope: c.Slope &^ PathSlopeIrregular, queue: c.Queue, direction: model.InvalidDirection,
		layout: true, edges: c.Edges & store.PathEdgesMask,
	}.run(env, flags)
}

type placement struct {
	tile      model.TileXY
	height    int
	typ       uint8
	railings  uint8
	slope     uint8
	queue     bool
	direction model.Direction
	layout    bool
	edges     uint8
}

func (p placement) sloped() bool { return p.slope&store.PathSlopeSloped != 0 }

func (p placement) top() int {
	if p.sloped() {
		return p.height + PathClearance + SlopedPathClearance
	}
	return p.height + PathClearance
}

// volume raises the two quarters on the high edge of a sloped path.
func (p placement) volume() clearance.Volume {
	v := clearance.Volume{Tile: p.tile, Low: p.height, High: p.top()}
	if p.sloped() {
		d := p.slope & store.PathSlopeDirectionMask
		v.Raised = 1<<d | 1<<((d+1)&3)
	}
	return v
}

// crossing allows a level crossing for flat non-queue paths only.
func (p placement) crossing() clearance.CrossingMode {
	if p.queue || p.sloped() {
		return clearance.CrossingNone
	}
	return clearance.CrossingPathOverTrack
}

func (p placement) fail(st action.Status, msg action.StringID) action.Result {
	return action.Fail(st, action.StrCantBuildFootpathHere, msg)
}

func (p placement) run(env edit.Env, flags action.Flags) action.Result {
	tiles := env.Tiles()
	rules := env.Rules()
	if !tiles.InMap(p.tile) {
		return p.fail(action.StatusInvalidParameters, action.StrOffEdgeOfMap)
	}
	if tiles.IsEdge(p.tile) {
		return p.fail(action.StatusDisallowed, action.StrOffEdgeOfMap)
	}
	if !rules.EditorOrSandbox() && !edit.LocationOwned(tiles, p.tile, p.height) {
		return p.fail(action.StatusDisallowed, action.StrLandNotOwnedByPark)
	}
	if p.height < rules.Limits.FootpathMin {
		return p.fail(action.StatusDisallowed, action.StrTooLow)
	}
	if p.height > rules.Limits.FootpathMax {
		return p.fail(action.StatusDisallowed, action.StrTooHigh)
	}
	def, ok := env.Catalog().Footpath(p.typ)
	if !ok || (def.QueueOnly && !p.queue) {
		return p.fail(action.StatusInvalidParameters, action.StrInvalidPathType)
	}

	res := action.Success()
	res.Expenditure = model.ExpenditureConstruction
	res.Position = p.tile.Position(p.height)
	slopeKey := p.slope & (store.PathSlopeSloped | store.PathSlopeDirectionMask)
	if existing := tiles.PathAt(p.tile, p.height, slopeKey); existing != nil {
		return p.update(env, flags, existing, res)
	}
	return p.insert(env, flags, res)
}

func (p placement) update(env edit.Env, flags action.Flags, path *store.Path, res action.Result) action.Result {
	if flags.Ghost() && !path.Ghost {
		return p.fail(action.StatusItemAlreadyPlaced, action.StrAlreadyBuilt)
	}
	if path.SurfaceIndex != p.typ || path.Queue != p.queue {
		res.Cost = ReplaceCost
	}
	res.Payload = action.PathPayload{Tile: p.tile, Height: p.height}
	if !flags.Apply() {
		return res
	}

	tiles := env.Tiles()
	if !quiet(flags) {
		env.Effects().InterruptPeeps(p.tile, p.height)
		env.Effects().RemoveLitter(p.tile, p.height)
		p.removeWallsBetween(tiles)
	}
	path.SurfaceIndex = p.typ
	path.RailingsIndex = p.railings
	if path.Queue != p.queue {
		path.Queue = p.queue
		path.RideIndex = store.NoRide
	}
	if !flags.Ghost() {
		path.Ghost = false
	}
	resetInvalidAddition(env.Catalog(), path)

	RemoveEdges(tiles, p.tile, path)
	p.connect(tiles, path, flags)
	removeIntersectingWalls(tiles, p.tile, path)
	if !flags.Ghost() {
		UpdateQueueChains(tiles, p.tile, path)
	}
	tiles.InvalidateTile(p.tile)
	env.Session().Touch(p.tile, "footpath")
	return res
}

func (p placement) insert(env edit.Env, flags action.Flags, res action.Result) action.Result {
	tiles := env.Tiles()
	if !tiles.CheckFreeElements(1) {
		return p.fail(action.StatusNoFreeElements, action.StrTileElementLimit)
	}
	res.Cost = InsertCost

	entrance := tiles.ParkEntranceAt(p.tile, p.height, true)
	samePath := entrance != nil && entrance.PathType == p.typ
	if entrance != nil {
		if samePath {
			res.Cost = 0
		} else {
			res.Cost -= ReplaceCost
		}
	} else {
		// scenery is only deleted once the command is applied below
		cr := clearance.CanConstructWithClear(env, p.volume(), store.AllQuadrants, clearance.RemoveSmallScenery, flags.Query(), p.crossing())
		if !cr.IsOK() {
			return cr.WithTitle(action.StrCantBuildFootpathHere)
		}
		if cp, ok := cr.Payload.(action.ClearancePayload); ok && cp.GroundFlags.Has(action.GroundUnderwater) {
			return p.fail(action.StatusDisallowed, action.StrCantBuildUnderwater)
		}
		res.Cost += cr.Cost
		if sf := tiles.SurfaceAt(p.tile); sf != nil {
			if support := p.height - sf.BaseHeight; support < 0 {
				res.Cost += UndergroundCost
			} else {
				res.Cost += SupportCost * model.Money(support)
			}
		}
	}
	if !flags.Apply() {
		return res
	}

	if !quiet(flags) {
		env.Effects().InterruptPeeps(p.tile, p.height)
		env.Effects().RemoveLitter(p.tile, p.height)
		p.removeWallsBetween(tiles)
	}

	if entrance != nil {
		if !flags.Ghost() && !samePath {
			entrance.PathType = p.typ
			tiles.InvalidateTile(p.tile)
		}
		env.Session().Touch(p.tile, "footpath")
		p.feedback(env, flags, res)
		return res
	}

	if cr := clearance.CanConstructWithClear(env, p.volume(), store.AllQuadrants, clearance.RemoveSmallScenery, flags, p.crossing()); !cr.IsOK() {
		return cr.WithTitle(action.StrCantBuildFootpathHere)
	}

	path := &store.Path{
		Header: store.Header{
			BaseHeight:      p.height,
			ClearanceHeight: p.top(),
			Quadrants:       store.AllQuadrants,
			Ghost:           flags.Ghost(),
		},
		SurfaceIndex:   p.typ,
		RailingsIndex:  p.railings,
		Sloped:         p.sloped(),
		SlopeDirection: model.Direction(p.slope & store.PathSlopeDirectionMask),
		Queue:          p.queue,
		RideIndex:      store.NoRide,
	}
	if err := tiles.Insert(p.tile, path); err != nil {
		return p.fail(action.StatusNoFreeElements, action.StrTileElementLimit)
	}
	if p.sloped() {
		removeIntersectingWalls(tiles, p.tile, path)
	}
	p.connect(tiles, path, flags)
	if !flags.Ghost() {
		UpdateQueueChains(tiles, p.tile, path)
		if env.Rules().EditorMode {
			autoPeepSpawn(env, p.tile, p.height)
		}
	}
	tiles.InvalidateTile(p.tile)
	env.Session().Touch(p.tile, "footpath")
	res.Payload = action.PathPayload{Tile: p.tile, Height: p.height, Created: true}
	p.feedback(env, flags, res)
	return res
}

// connect sets the path's edges: the layout variant takes them as given,
// the directional variant joins every matching neighbour.
func (p placement) connect(tiles store.TileStore, path *store.Path, flags action.Flags) {
	if p.layout {
		path.Edges = p.edges
		path.Corners = cornersFor(path.Edges)
		return
	}
	ConnectEdges(tiles, p.tile, path, !flags.Ghost())
}

func (p placement) removeWallsBetween(tiles store.TileStore) {
	if p.direction == model.InvalidDirection {
		return
	}
	low, high := p.height, p.top()
	removeWallsFacing(tiles, p.tile, p.direction.Reverse(), low, high)
	removeWallsFacing(tiles, p.tile.Sub(p.direction.Delta()), p.direction, low, p.height+PathClearance)
}

func (p placement) feedback(env edit.Env, flags action.Flags, res action.Result) {
	if !quiet(flags) && res.Cost != 0 {
		env.Effects().PlaySound(edit.SoundPlaceItem, res.Position)
	}
}

// quiet placements leave peeps, litter and sound alone: ghosts and the pieces
// a ride blueprint lays.
func quiet(flags action.Flags) bool {
	return flags.Ghost() || flags.Has(action.FlagFromTrackDesign)
}

// resetInvalidAddition drops an addition that no longer suits the path's
// queue state.
func resetInvalidAddition(cat edit.Catalog, path *store.Path) {
	if path.Addition == 0 {
		return
	}
	def, ok := cat.PathAddition(path.Addition)
	if ok && def.QueueOnly == path.Queue {
		return
	}
	path.Addition = 0
	path.AdditionStatus = 0
	path.Broken = false
}
