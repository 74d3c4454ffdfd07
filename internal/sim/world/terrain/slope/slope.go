// Package slope encodes the surface slope bitfield and the corner raise/lower
// transition tables.
//
// Corner c owns bit 1<<c: 0 sits at the tile origin (x,y), 1 at (x,y+1),
// 2 at (x+1,y+1), 3 at (x+1,y). Edge e joins corners e and e+1.
package slope

import (
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/logic/mathx"
)

const (
	Flat uint8 = 0

	CornerN uint8 = 1 << 0
	CornerE uint8 = 1 << 1
	CornerS uint8 = 1 << 2
	CornerW uint8 = 1 << 3

	// RaisedCornersMask selects the four corner bits.
	RaisedCornersMask uint8 = 0x0F
	// Diagonal marks a three-corner slope whose middle corner is doubled.
	Diagonal uint8 = 0x10
	// Mask selects every slope bit.
	Mask uint8 = 0x1F
	// BaseShift is set in a table entry when the base height moves by LandStep.
	BaseShift uint8 = 0x20
)

// Valid reports whether s is one of the 19 legal surface slopes.
func Valid(s uint8) bool {
	if s&^Mask != 0 {
		return false
	}
	corners := s & RaisedCornersMask
	if s&Diagonal != 0 {
		return bitCount(corners) == 3
	}
	return corners != RaisedCornersMask
}

// Offsets returns the height of every corner above the base.
func Offsets(s uint8) [4]int {
	var h [4]int
	for c := 0; c < 4; c++ {
		if s&(1<<c) != 0 {
			h[c] = model.LandStep
		}
	}
	if s&Diagonal != 0 {
		for c := 0; c < 4; c++ {
			if s&(1<<c) == 0 {
				h[(c+2)&3] += model.LandStep
			}
		}
	}
	return h
}

// Corners returns absolute corner heights.
func Corners(base int, s uint8) [4]int {
	h := Offsets(s)
	for i := range h {
		h[i] += base
	}
	return h
}

func CornerHeight(base int, s uint8, corner int) int {
	return base + Offsets(s)[corner&3]
}

// Top is the height of the highest corner.
func Top(base int, s uint8) int {
	if s&Diagonal != 0 {
		return base + 2*model.LandStep
	}
	if s&RaisedCornersMask != 0 {
		return base + model.LandStep
	}
	return base
}

// FromCorners encodes absolute corner heights. It fails when the heights do
// not describe a legal surface.
func FromCorners(h [4]int) (base int, s uint8, ok bool) {
	base = h[0]
	for _, v := range h[1:] {
		if v < base {
			base = v
		}
	}
	var peak bool
	for c := 0; c < 4; c++ {
		d := h[c] - base
		switch d {
		case 0:
		case model.LandStep:
			s |= 1 << c
		case 2 * model.LandStep:
			peak = true
		default:
			return 0, 0, false
		}
		if mathx.AbsInt(h[c]-h[(c+1)&3]) > model.LandStep {
			return 0, 0, false
		}
	}
	if peak {
		// A peak needs both neighbours raised and the opposite corner at base.
		for c := 0; c < 4; c++ {
			if h[c]-base == 2*model.LandStep {
				s |= 1 << c
				s |= 1 << ((c + 1) & 3)
				s |= 1 << ((c + 3) & 3)
				s |= Diagonal
			}
		}
	}
	if !Valid(s) {
		return 0, 0, false
	}
	return base, s, true
}

// CornerDistance is the number of edges between two corners.
func CornerDistance(a, b int) int {
	switch (a - b) & 3 {
	case 0:
		return 0
	case 2:
		return 2
	default:
		return 1
	}
}

func bitCount(v uint8) int {
	n := 0
	for v != 0 {
		v &= v - 1
		n++
	}
	return n
}
