package world

import (
	"fmt"

	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/sim/catalogs"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// NewFromSnapshot builds a world from a snapshot. Map shape and park rules come
// from the snapshot; cfg supplies the rest. The world resumes at tick+1.
func NewFromSnapshot(cfg WorldConfig, cats *catalogs.Catalogs, s snapshot.SnapshotV1) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("nil catalogs")
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 20
	}
	w := newWorld(cfg, cats)
	if err := w.ImportSnapshot(s); err != nil {
		return nil, err
	}
	return w, nil
}

// ImportSnapshot replaces the current in-memory park state with the snapshot.
// It sets the world's tick to snapshotTick+1 (the next tick to simulate).
//
// This must be called only when the world is stopped or from the world loop goroutine.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version: %d", s.Header.Version)
	}
	if s.MapSize < 4 {
		return fmt.Errorf("snapshot map size %d too small", s.MapSize)
	}
	for name, d := range s.CatalogDigests {
		if cur := w.catalogs.Digests()[name]; cur != "" && cur != d {
			return fmt.Errorf("snapshot catalog %s digest mismatch", name)
		}
	}

	tiles, err := store.ImportTiles(s.MapSize, s.MaxElements, s.Surfaces, s.Elements)
	if err != nil {
		return fmt.Errorf("import tiles: %w", err)
	}

	ledger := map[model.ExpenditureType]model.Money{}
	for name, v := range s.Ledger {
		e, ok := parseExpenditure(name)
		if !ok {
			return fmt.Errorf("snapshot ledger: unknown expenditure %q", name)
		}
		ledger[e] = model.Money(v)
	}

	// Operational parameters: snapshot is authoritative when present.
	if s.TickRate > 0 {
		w.cfg.TickRateHz = s.TickRate
	}
	if s.SnapshotEveryTicks > 0 {
		w.cfg.SnapshotEveryTicks = s.SnapshotEveryTicks
	}
	w.cfg.MapSize = s.MapSize
	w.cfg.MaxElements = s.MaxElements
	w.cfg.Rules.EditorMode = s.Rules.EditorMode
	w.cfg.Rules.Cheats.Sandbox = s.Rules.Sandbox
	w.cfg.Rules.Cheats.DisableClearanceChecks = s.Rules.DisableClearanceChecks
	w.cfg.Rules.Cheats.DisableSupportLimits = s.Rules.DisableSupportLimits
	w.cfg.Rules.Park.NoMoney = s.Rules.NoMoney
	w.cfg.Rules.Park.ForbidLandscapeChanges = s.Rules.ForbidLandscapeChanges
	w.cfg.Rules.Park.ForbidTreeRemoval = s.Rules.ForbidTreeRemoval
	w.cfg.Rules.LandPrice = model.Money(s.Rules.LandPriceCents)
	w.cfg.Rules.ConstructionRightsPrice = model.Money(s.Rules.ConstructionRightsPriceCents)

	w.tiles = tiles
	w.cash = model.Money(s.CashCents)
	w.ledger = ledger

	w.spawns = w.spawns[:0]
	for _, sp := range s.PeepSpawns {
		w.spawns = append(w.spawns, model.PeepSpawn{X: sp.Pos[0], Y: sp.Pos[1], Z: sp.Pos[2], Direction: model.Direction(sp.Direction)})
	}
	w.peeps = w.peeps[:0]
	for _, p := range s.Peeps {
		w.peeps = append(w.peeps, model.Peep{ID: p.ID, Tile: model.TileXY{X: p.Tile[0], Y: p.Tile[1]}, Height: p.Height, Interrupted: p.Interrupted})
	}
	w.litter = map[model.TileXY]int{}
	for _, l := range s.Litter {
		if l.Count > 0 {
			w.litter[model.TileXY{X: l.Tile[0], Y: l.Tile[1]}] = l.Count
		}
	}

	w.tick.Store(s.Header.Tick + 1)
	return nil
}

func parseExpenditure(name string) (model.ExpenditureType, bool) {
	for e := model.ExpenditureNone; e <= model.ExpenditureConstruction; e++ {
		if e.String() == name {
			return e, true
		}
	}
	return 0, false
}
