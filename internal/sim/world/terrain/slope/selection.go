package slope

// Selection is the part of a tile the user picked.
type Selection uint8

const (
	SelectCorner0 Selection = iota
	SelectCorner1
	SelectCorner2
	SelectCorner3
	SelectFull
	SelectWater
	SelectQuarter0
	SelectQuarter1
	SelectQuarter2
	SelectQuarter3
	SelectEdge0
	SelectEdge1
	SelectEdge2
	SelectEdge3
)

func (s Selection) Valid() bool { return s <= SelectEdge3 }

// Row maps a selection onto a table row. Quarters act on their corner and
// water acts on the whole tile.
func (s Selection) Row() int {
	switch {
	case s <= SelectCorner3:
		return int(s)
	case s == SelectFull, s == SelectWater:
		return RowFull
	case s >= SelectQuarter0 && s <= SelectQuarter3:
		return int(s - SelectQuarter0)
	default:
		return RowEdge0 + int(s-SelectEdge0)
	}
}

func (s Selection) IsEdge() bool { return s >= SelectEdge0 && s <= SelectEdge3 }

func (s Selection) IsCorner() bool {
	return s <= SelectCorner3 || (s >= SelectQuarter0 && s <= SelectQuarter3)
}
