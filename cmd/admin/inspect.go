package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fogleman/gg"

	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	snapPath := fs.String("snapshot", "", "snapshot path (optional; defaults to latest)")
	_ = fs.Parse(args)

	path := snapshotPath(*snapPath, *dataDir, *worldID)
	if path == "" {
		fmt.Fprintln(os.Stderr, "no snapshot found; provide -snapshot or -world")
		os.Exit(2)
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	var size uint64
	if st, err := os.Stat(path); err == nil {
		size = uint64(st.Size())
	}
	fmt.Print(summarize(path, size, snap))
}

// summarize renders a human readable overview of a snapshot.
func summarize(path string, fileSize uint64, s snapshot.SnapshotV1) string {
	var b strings.Builder
	fmt.Fprintf(&b, "snapshot  %s (%s)\n", path, humanize.Bytes(fileSize))
	fmt.Fprintf(&b, "world     %s tick %s\n", s.Header.WorldID, humanize.Comma(int64(s.Header.Tick)))
	fmt.Fprintf(&b, "map       %dx%d, %s/%s elements\n", s.MapSize, s.MapSize,
		humanize.Comma(int64(len(s.Elements))), humanize.Comma(int64(s.MaxElements)))
	fmt.Fprintf(&b, "cash      %s\n", model.Money(s.CashCents).String())

	kinds := map[string]int{}
	for _, e := range s.Elements {
		kinds[e.Kind]++
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(&b, "  %-14s %s\n", k, humanize.Comma(int64(kinds[k])))
	}

	if len(s.Ledger) > 0 {
		exps := make([]string, 0, len(s.Ledger))
		for k := range s.Ledger {
			exps = append(exps, k)
		}
		sort.Strings(exps)
		b.WriteString("ledger\n")
		for _, k := range exps {
			fmt.Fprintf(&b, "  %-18s %s\n", k, model.Money(s.Ledger[k]).String())
		}
	}
	fmt.Fprintf(&b, "peeps     %s (%d spawns), litter on %d tiles\n",
		humanize.Comma(int64(len(s.Peeps))), len(s.PeepSpawns), len(s.Litter))
	return b.String()
}

func heightmapCmd(args []string) {
	fs := flag.NewFlagSet("heightmap", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	snapPath := fs.String("snapshot", "", "snapshot path (optional; defaults to latest)")
	scale := fs.Int("scale", 8, "pixels per tile")
	outPath := fs.String("out", "heightmap.png", "output png path")
	_ = fs.Parse(args)

	path := snapshotPath(*snapPath, *dataDir, *worldID)
	if path == "" {
		fmt.Fprintln(os.Stderr, "no snapshot found; provide -snapshot or -world")
		os.Exit(2)
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	tiles, err := store.ImportTiles(snap.MapSize, 0, snap.Surfaces, snap.Elements)
	if err != nil {
		fmt.Fprintln(os.Stderr, "import tiles:", err)
		os.Exit(1)
	}
	dc := renderHeightmap(tiles, *scale)
	if err := dc.SavePNG(*outPath); err != nil {
		fmt.Fprintln(os.Stderr, "write png:", err)
		os.Exit(1)
	}
	fmt.Printf("heightmap ok: tick=%d size=%dx%d out=%s\n", snap.Header.Tick, dc.Width(), dc.Height(), *outPath)
}

var (
	pathColor    = color.RGBA{R: 0xC8, G: 0xA8, B: 0x78, A: 0xFF}
	waterColor   = color.RGBA{R: 0x30, G: 0x60, B: 0xC0, A: 0xFF}
	fenceColor   = color.RGBA{R: 0x80, G: 0x30, B: 0x20, A: 0xFF}
	outsideColor = color.RGBA{A: 0xFF}
)

// renderHeightmap draws one square per tile: grey by base height, blue under
// water, tan where a path runs. Land the park does not own is darkened and
// park fences are outlined.
func renderHeightmap(t *store.Store, scale int) *gg.Context {
	if scale < 1 {
		scale = 1
	}
	n := t.Size()
	dc := gg.NewContext(n*scale, n*scale)
	dc.SetColor(outsideColor)
	dc.Clear()

	lo, hi := heightRange(t)
	s := float64(scale)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			xy := model.TileXY{X: x, Y: y}
			sf := t.SurfaceAt(xy)
			if sf == nil {
				continue
			}
			c := tileColor(t, xy, sf, lo, hi)
			dc.SetColor(c)
			dc.DrawRectangle(float64(x)*s, float64(y)*s, s, s)
			dc.Fill()
			if sf.ParkFences != 0 && scale >= 4 {
				dc.SetColor(fenceColor)
				dc.SetLineWidth(1)
				dc.DrawRectangle(float64(x)*s+0.5, float64(y)*s+0.5, s-1, s-1)
				dc.Stroke()
			}
		}
	}
	return dc
}

func heightRange(t *store.Store) (lo, hi int) {
	lo, hi = -1, 0
	n := t.Size()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			sf := t.SurfaceAt(model.TileXY{X: x, Y: y})
			if sf == nil {
				continue
			}
			if lo < 0 || sf.BaseHeight < lo {
				lo = sf.BaseHeight
			}
			if sf.BaseHeight > hi {
				hi = sf.BaseHeight
			}
		}
	}
	if lo < 0 {
		lo = 0
	}
	return lo, hi
}

func tileColor(t *store.Store, xy model.TileXY, sf *store.Surface, lo, hi int) color.RGBA {
	var c color.RGBA
	switch {
	case hasPath(t, xy):
		c = pathColor
	case sf.WaterHeight > sf.BaseHeight:
		c = waterColor
	default:
		g := uint8(0x40)
		if hi > lo {
			g = uint8(0x40 + (sf.BaseHeight-lo)*0xBF/(hi-lo))
		}
		c = color.RGBA{R: g, G: g, B: g, A: 0xFF}
	}
	if sf.Ownership&model.OwnershipOwned == 0 {
		c.R, c.G, c.B = c.R/2, c.G/2, c.B/2
	}
	return c
}

func hasPath(t *store.Store, xy model.TileXY) bool {
	for _, e := range t.Elements(xy) {
		if e.Type() == store.TypePath && !e.Common().Ghost {
			return true
		}
	}
	return false
}
