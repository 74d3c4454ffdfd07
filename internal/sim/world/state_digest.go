package world

import (
	digestpkg "parkcraft.ai/internal/sim/world/feature/persistence/digest"
)

func (w *World) stateDigest(nowTick uint64) string {
	return digestpkg.StateDigest(digestpkg.StateInput{
		NowTick: nowTick,
		Cash:    w.cash,
		Ledger:  w.Ledger(),
		Tiles:   w.tiles,
		Spawns:  w.spawns,
		Peeps:   w.peeps,
		Litter:  w.litter,
	})
}
