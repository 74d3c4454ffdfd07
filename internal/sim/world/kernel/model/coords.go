package model

const (
	// TileSize is the number of world units spanned by one tile edge.
	TileSize = 32
	// ZStep is the number of world units per height unit.
	ZStep = 8
	// LandStep is the height delta of one raised corner.
	LandStep = 2
)

type TileXY struct {
	X int
	Y int
}

func (t TileXY) Add(d TileXY) TileXY { return TileXY{X: t.X + d.X, Y: t.Y + d.Y} }

func (t TileXY) Sub(d TileXY) TileXY { return TileXY{X: t.X - d.X, Y: t.Y - d.Y} }

func (t TileXY) Scale(k int) TileXY { return TileXY{X: t.X * k, Y: t.Y * k} }

// Position returns the world-unit centre of the tile at the given height.
func (t TileXY) Position(height int) Position {
	return Position{X: t.X*TileSize + TileSize/2, Y: t.Y*TileSize + TileSize/2, Z: height * ZStep}
}

// Position is an absolute world-unit location used for feedback (camera, sound).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type Direction uint8

const InvalidDirection Direction = 0xFF

// DirectionDelta is the tile offset for each direction. Direction d is also the
// edge shared by corners d and d+1.
var DirectionDelta = [4]TileXY{
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
}

func (d Direction) Valid() bool { return d < 4 }

func (d Direction) Reverse() Direction { return (d + 2) & 3 }

func (d Direction) Delta() TileXY { return DirectionDelta[d&3] }

// TileRange is an inclusive rectangle of tiles.
type TileRange struct {
	Min TileXY
	Max TileXY
}

func NewTileRange(x1, y1, x2, y2 int) TileRange {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return TileRange{Min: TileXY{X: x1, Y: y1}, Max: TileXY{X: x2, Y: y2}}
}

func (r TileRange) Contains(t TileXY) bool {
	return t.X >= r.Min.X && t.X <= r.Max.X && t.Y >= r.Min.Y && t.Y <= r.Max.Y
}

// Clamp restricts the range to the interior of a square map of the given size.
func (r TileRange) Clamp(size int) TileRange {
	lo, hi := 1, size-2
	c := func(v int) int {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return TileRange{
		Min: TileXY{X: c(r.Min.X), Y: c(r.Min.Y)},
		Max: TileXY{X: c(r.Max.X), Y: c(r.Max.Y)},
	}
}

// Center returns the world-unit centre of the range at the given height.
func (r TileRange) Center(height int) Position {
	return Position{
		X: ((r.Min.X+r.Max.X)*TileSize)/2 + TileSize/2,
		Y: ((r.Min.Y+r.Max.Y)*TileSize)/2 + TileSize/2,
		Z: height * ZStep,
	}
}

// Each visits the range row by row (x fastest).
func (r TileRange) Each(fn func(t TileXY)) {
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			fn(TileXY{X: x, Y: y})
		}
	}
}
