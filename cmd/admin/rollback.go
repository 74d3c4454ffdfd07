package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// rollbackCmd restores the tiles of a rectangle from an older snapshot into a
// newer one. Cash, peeps and everything outside the rectangle stay as they are
// in the newer snapshot.
func rollbackCmd(args []string) {
	fs := flag.NewFlagSet("rollback", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	fromPath := fs.String("from", "", "older snapshot whose tiles are restored (required)")
	intoPath := fs.String("into", "", "snapshot to patch (optional; defaults to latest)")
	rect := fs.String("rect", "", "tiles to restore: x1,y1:x2,y2 (required)")
	outPath := fs.String("out", "", "output snapshot path (optional)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*fromPath) == "" || strings.TrimSpace(*rect) == "" {
		fmt.Fprintln(os.Stderr, "missing -from or -rect")
		os.Exit(2)
	}
	r, err := parseRect(*rect)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad -rect:", err)
		os.Exit(2)
	}
	into := snapshotPath(*intoPath, *dataDir, *worldID)
	if into == "" {
		fmt.Fprintln(os.Stderr, "no snapshot to patch; provide -into or -world")
		os.Exit(2)
	}

	older, err := snapshot.ReadSnapshot(*fromPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read -from:", err)
		os.Exit(1)
	}
	newer, err := snapshot.ReadSnapshot(into)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read -into:", err)
		os.Exit(1)
	}
	restored, err := restoreTiles(&newer, older, r)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rollback:", err)
		os.Exit(1)
	}

	if strings.TrimSpace(*outPath) == "" {
		*outPath = filepath.Join(filepath.Dir(into), fmt.Sprintf("%d.rollback.snap.zst", newer.Header.Tick))
	}
	if err := snapshot.WriteSnapshot(*outPath, newer); err != nil {
		fmt.Fprintln(os.Stderr, "write snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("rollback ok: from=%s (tick %d) into=%s (tick %d) rect=%s tiles=%d out=%s\n",
		filepath.Base(*fromPath), older.Header.Tick, filepath.Base(into), newer.Header.Tick, *rect, restored, *outPath)
}

// restoreTiles copies every tile of r from src into dst: the surface and the
// whole element stack. Tiles outside either map are skipped.
func restoreTiles(dst *snapshot.SnapshotV1, src snapshot.SnapshotV1, r model.TileRange) (int, error) {
	if dst.MapSize != src.MapSize {
		return 0, fmt.Errorf("map size differs: %d vs %d", dst.MapSize, src.MapSize)
	}
	to, err := store.ImportTiles(dst.MapSize, dst.MaxElements, dst.Surfaces, dst.Elements)
	if err != nil {
		return 0, fmt.Errorf("import target: %w", err)
	}
	from, err := store.ImportTiles(src.MapSize, 0, src.Surfaces, src.Elements)
	if err != nil {
		return 0, fmt.Errorf("import source: %w", err)
	}

	restored := 0
	var restoreErr error
	r.Each(func(xy model.TileXY) {
		if restoreErr != nil || !to.InMap(xy) {
			return
		}
		for _, e := range to.Elements(xy) {
			to.Remove(xy, e)
		}
		*to.SurfaceAt(xy) = *from.SurfaceAt(xy)
		for _, e := range from.Elements(xy) {
			if e.Type() == store.TypeSurface {
				continue
			}
			if err := to.Insert(xy, e); err != nil {
				restoreErr = fmt.Errorf("tile %d,%d: %w", xy.X, xy.Y, err)
				return
			}
		}
		restored++
	})
	if restoreErr != nil {
		return restored, restoreErr
	}
	dst.Surfaces, dst.Elements = store.ExportTiles(to)
	return restored, nil
}
