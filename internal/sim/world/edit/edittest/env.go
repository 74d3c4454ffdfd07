// Package edittest provides an in-memory edit.Env for command tests.
package edittest

import (
	"parkcraft.ai/internal/sim/catalogs"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// Catalog indices (palettes sort ids).
const (
	RideBoatHire         uint16 = 0
	RideMiniatureRailway uint16 = 1
	RideWoodenCoaster    uint16 = 2

	SceneryShrub   uint16 = 0
	SceneryTreeOak uint16 = 1

	PathDirt      uint8 = 0
	PathQueueBlue uint8 = 1
	PathTarmac    uint8 = 2

	AdditionBench   uint8 = 1
	AdditionQueueTV uint8 = 2

	WallHedge uint16 = 0
)

const BaseHeight = 14

type Env struct {
	Store   *store.Store
	Cat     *catalogs.Catalogs
	R       edit.Rules
	Sess    *edit.Session
	Spawns  []model.PeepSpawn
	Litter  map[model.TileXY]int
	Stopped []model.TileXY
	Sounds  []edit.Sound
}

// New returns a flat map at BaseHeight where every tile is owned.
func New(size int) *Env {
	cat, err := catalogs.New(
		[]catalogs.RideTypeDef{
			{ID: "BOAT_HIRE", MaxSupportHeight: 6, NeedsWater: true},
			{ID: "MINIATURE_RAILWAY", MaxSupportHeight: 14, SupportsLevelCrossings: true},
			{ID: "WOODEN_COASTER", MaxSupportHeight: 38},
		},
		[]catalogs.SceneryDef{
			{ID: "SHRUB", RemovalPrice: model.Units(0, 50)},
			{ID: "TREE_OAK", IsTree: true, RemovalPrice: model.Units(1, 50)},
		},
		[]catalogs.FootpathDef{{ID: "DIRT"}, {ID: "QUEUE_BLUE", QueueOnly: true}, {ID: "TARMAC"}},
		[]catalogs.PathAdditionDef{{ID: "BENCH"}, {ID: "QUEUE_TV", QueueOnly: true}},
		[]catalogs.WallDef{{ID: "HEDGE"}},
	)
	if err != nil {
		panic(err)
	}
	e := &Env{
		Store: store.New(size, 0, BaseHeight),
		Cat:   cat,
		R: edit.Rules{
			Limits: edit.Limits{
				LandMin: 2, LandMax: 142,
				WaterMin: 2, WaterMax: 254,
				FootpathMin: 2, FootpathMax: 248,
			},
			LandPrice:               model.Units(20, 0),
			ConstructionRightsPrice: model.Units(10, 0),
		},
		Sess:   edit.NewSession(),
		Litter: map[model.TileXY]int{},
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			e.Store.SurfaceAt(model.TileXY{X: x, Y: y}).Ownership = model.OwnershipOwned
		}
	}
	return e
}

func (e *Env) Tiles() store.TileStore            { return e.Store }
func (e *Env) Catalog() edit.Catalog             { return e.Cat }
func (e *Env) Rules() edit.Rules                 { return e.R }
func (e *Env) Effects() edit.Effects             { return e }
func (e *Env) Session() *edit.Session            { return e.Sess }
func (e *Env) PeepSpawns() []model.PeepSpawn     { return e.Spawns }
func (e *Env) SetPeepSpawns(s []model.PeepSpawn) { e.Spawns = s }

func (e *Env) RemoveLitter(xy model.TileXY, height int) { delete(e.Litter, xy) }

func (e *Env) InterruptPeeps(xy model.TileXY, height int) { e.Stopped = append(e.Stopped, xy) }

func (e *Env) PlaySound(s edit.Sound, pos model.Position) { e.Sounds = append(e.Sounds, s) }

// Surface returns the surface at x,y.
func (e *Env) Surface(x, y int) *store.Surface { return e.Store.SurfaceAt(model.TileXY{X: x, Y: y}) }

// SetLand overwrites a tile's height and slope.
func (e *Env) SetLand(x, y, base int, sl uint8) { e.Surface(x, y).SetHeight(base, sl) }

// Corners returns absolute corner heights of x,y.
func (e *Env) Corners(x, y int) [4]int {
	sf := e.Surface(x, y)
	return slope.Corners(sf.BaseHeight, sf.Slope)
}

// Place inserts an element, panicking on failure.
func (e *Env) Place(x, y int, el store.Element) {
	if err := e.Store.Insert(model.TileXY{X: x, Y: y}, el); err != nil {
		panic(err)
	}
}
