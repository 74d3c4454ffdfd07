package store

import (
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/slope"
)

type ElementType uint8

const (
	TypeSurface ElementType = iota
	TypePath
	TypeTrack
	TypeSmallScenery
	TypeEntrance
	TypeWall
	TypeLargeScenery
)

func (t ElementType) String() string {
	switch t {
	case TypeSurface:
		return "SURFACE"
	case TypePath:
		return "PATH"
	case TypeTrack:
		return "TRACK"
	case TypeSmallScenery:
		return "SMALL_SCENERY"
	case TypeEntrance:
		return "ENTRANCE"
	case TypeWall:
		return "WALL"
	case TypeLargeScenery:
		return "LARGE_SCENERY"
	default:
		return "UNKNOWN"
	}
}

// Element is one stacked object on a tile.
type Element interface {
	Type() ElementType
	Common() *Header
}

// Header carries the fields every element shares. Heights are in height units.
type Header struct {
	BaseHeight      int
	ClearanceHeight int
	// Quadrants is the occupied quarter-tile mask (bit q = quarter q).
	Quadrants uint8
	Ghost     bool
}

func (h *Header) Common() *Header { return h }

const AllQuadrants uint8 = 0x0F

type Surface struct {
	Header
	Slope        uint8
	Ownership    uint8
	WaterHeight  int
	SurfaceStyle uint8
	EdgeStyle    uint8
	GrassLength  uint8
	// ParkFences has bit d set when a fence faces direction d.
	ParkFences uint8
}

func (*Surface) Type() ElementType { return TypeSurface }

func (s *Surface) CornerHeight(corner int) int {
	return slope.CornerHeight(s.BaseHeight, s.Slope, corner)
}

func (s *Surface) Corners() [4]int { return slope.Corners(s.BaseHeight, s.Slope) }

// SetHeight updates base, slope and the derived clearance together.
func (s *Surface) SetHeight(base int, sl uint8) {
	s.BaseHeight = base
	s.Slope = sl & slope.Mask
	s.ClearanceHeight = slope.Top(base, s.Slope)
}

// Path slope byte: bits 0-1 direction, bit 2 sloped.
const (
	PathSlopeDirectionMask uint8 = 0x03
	PathSlopeSloped        uint8 = 0x04
)

const NoRide = -1

type Path struct {
	Header
	SurfaceIndex   uint8
	RailingsIndex  uint8
	Edges          uint8
	Corners        uint8
	Sloped         bool
	SlopeDirection model.Direction
	Queue          bool
	RideIndex      int
	// Addition is 0 for none, otherwise catalog index+1.
	Addition       uint8
	AdditionStatus uint8
	Broken         bool
}

func (*Path) Type() ElementType { return TypePath }

// SlopeByte encodes the path slope the way placement requests carry it.
func (p *Path) SlopeByte() uint8 {
	if !p.Sloped {
		return 0
	}
	return PathSlopeSloped | uint8(p.SlopeDirection)&PathSlopeDirectionMask
}

// Edge and corner connection bits.
const (
	PathEdgesMask   uint8 = 0x0F
	PathCornersMask uint8 = 0x0F
)

type Track struct {
	Header
	RideIndex int
	RideType  uint16
	TrackType uint8
	Direction model.Direction
}

func (*Track) Type() ElementType { return TypeTrack }

// Track pieces a level crossing can be built over.
const (
	TrackFlat uint8 = iota
	TrackStation
	TrackSloped
)

type EntranceKind uint8

const (
	EntranceRide EntranceKind = iota
	ExitRide
	EntrancePark
)

type Entrance struct {
	Header
	Kind      EntranceKind
	Sequence  uint8
	PathType  uint8
	Direction model.Direction
	// RideIndex is NoRide for park entrances.
	RideIndex int
}

func (*Entrance) Type() ElementType { return TypeEntrance }

// ParkEntranceMiddle is the sequence index of the centre piece.
const ParkEntranceMiddle uint8 = 0

type SmallScenery struct {
	Header
	Entry uint16
}

func (*SmallScenery) Type() ElementType { return TypeSmallScenery }

type Wall struct {
	Header
	Entry     uint16
	Direction model.Direction
}

func (*Wall) Type() ElementType { return TypeWall }

type LargeScenery struct {
	Header
	Entry    uint16
	Sequence uint8
}

func (*LargeScenery) Type() ElementType { return TypeLargeScenery }

// NewSurface returns a flat unowned grass surface.
func NewSurface(base int) *Surface {
	s := &Surface{Header: Header{Quadrants: AllQuadrants}}
	s.SetHeight(base, slope.Flat)
	return s
}

var (
	_ Element = (*Surface)(nil)
	_ Element = (*Path)(nil)
	_ Element = (*Track)(nil)
	_ Element = (*Entrance)(nil)
	_ Element = (*SmallScenery)(nil)
	_ Element = (*Wall)(nil)
	_ Element = (*LargeScenery)(nil)
)
