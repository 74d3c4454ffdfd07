// Package edit holds the environment terrain and path commands run against.
package edit

import (
	"parkcraft.ai/internal/sim/catalogs"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// Env is what a command sees of the world while it runs.
type Env interface {
	Tiles() store.TileStore
	Catalog() Catalog
	Rules() Rules
	Effects() Effects
	Session() *Session

	PeepSpawns() []model.PeepSpawn
	SetPeepSpawns(spawns []model.PeepSpawn)
}

// Catalog resolves the indices tile elements store.
type Catalog interface {
	RideType(i uint16) (catalogs.RideTypeDef, bool)
	Scenery(i uint16) (catalogs.SceneryDef, bool)
	Footpath(i uint8) (catalogs.FootpathDef, bool)
	PathAddition(a uint8) (catalogs.PathAdditionDef, bool)
}

type Cheats struct {
	Sandbox                bool
	DisableClearanceChecks bool
	DisableSupportLimits   bool
}

type ParkFlags struct {
	NoMoney                bool
	ForbidLandscapeChanges bool
	ForbidTreeRemoval      bool
}

// Limits are inclusive height bounds in height units.
type Limits struct {
	LandMin     int
	LandMax     int
	WaterMin    int
	WaterMax    int
	FootpathMin int
	FootpathMax int
}

type Rules struct {
	EditorMode bool
	Cheats     Cheats
	Park       ParkFlags
	Limits     Limits

	LandPrice               model.Money
	ConstructionRightsPrice model.Money
}

func (r Rules) EditorOrSandbox() bool { return r.EditorMode || r.Cheats.Sandbox }

type Sound uint8

const (
	SoundPlaceItem Sound = iota
	SoundLayingOutWater
	SoundPurchase
)

func (s Sound) String() string {
	switch s {
	case SoundPlaceItem:
		return "PLACE_ITEM"
	case SoundLayingOutWater:
		return "LAYING_OUT_WATER"
	case SoundPurchase:
		return "PURCHASE"
	default:
		return "UNKNOWN"
	}
}

// Effects are the side effects commands trigger outside the tile store.
type Effects interface {
	RemoveLitter(xy model.TileXY, height int)
	InterruptPeeps(xy model.TileXY, height int)
	PlaySound(s Sound, pos model.Position)
}
