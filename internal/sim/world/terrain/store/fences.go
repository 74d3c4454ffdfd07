package store

import "parkcraft.ai/internal/sim/world/kernel/model"

// UpdateParkFences recomputes the fence mask of an unowned tile: one fence for
// every neighbour inside the park. Owned tiles and tiles holding a park
// entrance carry no fences.
func UpdateParkFences(t TileStore, xy model.TileXY) {
	sf := t.SurfaceAt(xy)
	if sf == nil {
		return
	}
	var fences uint8
	if sf.Ownership&model.OwnershipOwned == 0 && !hasParkEntrance(t, xy) {
		for d := model.Direction(0); d < 4; d++ {
			n := t.SurfaceAt(xy.Add(d.Delta()))
			if n != nil && n.Ownership&model.OwnershipOwned != 0 {
				fences |= 1 << d
			}
		}
	}
	if sf.ParkFences != fences {
		sf.ParkFences = fences
		t.InvalidateTile(xy)
	}
}

// UpdateParkFencesAround refreshes xy and its four neighbours.
func UpdateParkFencesAround(t TileStore, xy model.TileXY) {
	UpdateParkFences(t, xy)
	for _, d := range model.DirectionDelta {
		UpdateParkFences(t, xy.Add(d))
	}
}

func hasParkEntrance(t TileStore, xy model.TileXY) bool {
	for _, e := range t.Elements(xy) {
		if en, ok := e.(*Entrance); ok && en.Kind == EntrancePark {
			return true
		}
	}
	return false
}
