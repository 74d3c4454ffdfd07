package world

import (
	"sort"

	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	// Snapshot must be called from the world loop goroutine.
	surfaces, elems := store.ExportTiles(w.tiles)

	ledger := map[string]int64{}
	for k, v := range w.Ledger() {
		ledger[k] = int64(v)
	}

	spawns := make([]snapshot.PeepSpawnV1, 0, len(w.spawns))
	for _, s := range w.spawns {
		spawns = append(spawns, snapshot.PeepSpawnV1{Pos: [3]int{s.X, s.Y, s.Z}, Direction: uint8(s.Direction)})
	}

	peeps := make([]snapshot.PeepV1, 0, len(w.peeps))
	for _, p := range w.peeps {
		peeps = append(peeps, snapshot.PeepV1{ID: p.ID, Tile: [2]int{p.Tile.X, p.Tile.Y}, Height: p.Height, Interrupted: p.Interrupted})
	}
	sort.Slice(peeps, func(i, j int) bool { return peeps[i].ID < peeps[j].ID })

	litter := make([]snapshot.LitterV1, 0, len(w.litter))
	for xy, n := range w.litter {
		if n <= 0 {
			continue
		}
		litter = append(litter, snapshot.LitterV1{Tile: [2]int{xy.X, xy.Y}, Count: n})
	}
	sort.Slice(litter, func(i, j int) bool {
		a, b := litter[i].Tile, litter[j].Tile
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[0] < b[0]
	})

	r := w.cfg.Rules
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    nowTick,
		},
		TickRate:           w.cfg.TickRateHz,
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
		MapSize:            w.cfg.MapSize,
		MaxElements:        w.cfg.MaxElements,
		Rules: snapshot.RulesV1{
			EditorMode:                   r.EditorMode,
			Sandbox:                      r.Cheats.Sandbox,
			DisableClearanceChecks:       r.Cheats.DisableClearanceChecks,
			DisableSupportLimits:         r.Cheats.DisableSupportLimits,
			NoMoney:                      r.Park.NoMoney,
			ForbidLandscapeChanges:       r.Park.ForbidLandscapeChanges,
			ForbidTreeRemoval:            r.Park.ForbidTreeRemoval,
			LandPriceCents:               int64(r.LandPrice),
			ConstructionRightsPriceCents: int64(r.ConstructionRightsPrice),
		},
		CashCents:      int64(w.cash),
		Ledger:         ledger,
		Surfaces:       surfaces,
		Elements:       elems,
		PeepSpawns:     spawns,
		Peeps:          peeps,
		Litter:         litter,
		CatalogDigests: w.catalogs.Digests(),
	}
}
