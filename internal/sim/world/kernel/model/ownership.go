package model

import "parkcraft.ai/internal/sim/world/logic/mathx"

// Ownership bits carried by a surface element.
const (
	OwnershipUnowned                     uint8 = 0
	OwnershipConstructionRightsOwned     uint8 = 1 << 4
	OwnershipOwned                       uint8 = 1 << 5
	OwnershipConstructionRightsAvailable uint8 = 1 << 6
	OwnershipAvailable                   uint8 = 1 << 7

	OwnershipMask uint8 = 0xF0
)

// PeepSpawn is a guest entry point in world units.
type PeepSpawn struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Z         int       `json:"z"`
	Direction Direction `json:"direction"`
}

func (p PeepSpawn) Tile() TileXY {
	return TileXY{X: mathx.FloorDiv(p.X, TileSize), Y: mathx.FloorDiv(p.Y, TileSize)}
}

// Peep is the minimal pedestrian state the editing commands interact with.
type Peep struct {
	ID          string `json:"id"`
	Tile        TileXY `json:"tile"`
	Height      int    `json:"height"`
	Interrupted bool   `json:"interrupted,omitempty"`
}
