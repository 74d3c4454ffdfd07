package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	persistlog "parkcraft.ai/internal/persistence/log"
	"parkcraft.ai/internal/sim/world"
	"parkcraft.ai/internal/sim/world/kernel/model"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "audit":
			auditCmd(os.Args[2:])
			return
		case "rollback":
			rollbackCmd(os.Args[2:])
			return
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "heightmap":
			heightmapCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		case "pause":
			pauseCmd(os.Args[2:], true)
			return
		case "resume":
			pauseCmd(os.Args[2:], false)
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	rect := fs.String("rect", "", "tile filter: x1,y1:x2,y2 (optional)")
	actor := fs.String("actor", "", "session id filter (optional)")
	sinceTick := fs.Uint64("since_tick", 0, "first tick (inclusive)")
	toTick := fs.Uint64("to_tick", 0, "last tick (inclusive, 0 = no limit)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*worldID) == "" {
		fmt.Fprintln(os.Stderr, "missing -world")
		os.Exit(2)
	}
	f := auditFilter{SinceTick: *sinceTick, ToTick: *toTick, Actor: strings.TrimSpace(*actor)}
	if strings.TrimSpace(*rect) != "" {
		r, err := parseRect(*rect)
		if err != nil {
			fmt.Fprintln(os.Stderr, "bad -rect:", err)
			os.Exit(2)
		}
		f.Rect = &r
	}

	recs, err := readAudit(filepath.Join(*dataDir, "worlds", *worldID), f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
		os.Exit(1)
	}
	for _, e := range recs {
		fmt.Printf("tick=%d actor=%s action=%s cmd=%s tile=%d,%d base=%d slope=%d water=%d own=%#x elements=%d %s\n",
			e.Tick, e.Actor, e.Action, e.CmdID, e.Tile[0], e.Tile[1], e.Base, e.Slope, e.Water, e.Ownership, e.Elements, e.Reason)
	}
}

type auditFilter struct {
	SinceTick uint64
	ToTick    uint64
	Actor     string
	Rect      *model.TileRange
}

func (f auditFilter) match(e world.AuditEntry) bool {
	if e.Tick < f.SinceTick || (f.ToTick != 0 && e.Tick > f.ToTick) {
		return false
	}
	if f.Actor != "" && e.Actor != f.Actor {
		return false
	}
	if f.Rect != nil && !f.Rect.Contains(model.TileXY{X: e.Tile[0], Y: e.Tile[1]}) {
		return false
	}
	return true
}

// readAudit returns matching entries in log order.
func readAudit(worldDir string, f auditFilter) ([]world.AuditEntry, error) {
	files, err := persistlog.Files(filepath.Join(worldDir, "audit"), "audit")
	if err != nil {
		return nil, err
	}
	var out []world.AuditEntry
	for _, path := range files {
		err := persistlog.ReadJSONL(path, func(e world.AuditEntry) error {
			if f.match(e) {
				out = append(out, e)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseRect(s string) (model.TileRange, error) {
	parts := strings.Split(s, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return model.TileRange{}, fmt.Errorf("expected x1,y1:x2,y2")
	}
	a, err := parseXY(parts[0])
	if err != nil {
		return model.TileRange{}, err
	}
	b, err := parseXY(parts[1])
	if err != nil {
		return model.TileRange{}, err
	}
	return model.NewTileRange(a.X, a.Y, b.X, b.Y), nil
}

func parseXY(s string) (model.TileXY, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return model.TileXY{}, fmt.Errorf("expected x,y")
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return model.TileXY{}, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.TileXY{}, err
	}
	return model.TileXY{X: x, Y: y}, nil
}

// snapshotFiles lists a world's snapshots, oldest first.
func snapshotFiles(worldDir string) []string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	type snap struct {
		tick uint64
		path string
	}
	var snaps []snap
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		snaps = append(snaps, snap{tick: tick, path: filepath.Join(dir, name)})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].tick < snaps[j].tick })
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.path
	}
	return out
}

func latestSnapshot(worldDir string) string {
	files := snapshotFiles(worldDir)
	if len(files) == 0 {
		return ""
	}
	return files[len(files)-1]
}

// snapshotPath resolves -snapshot, falling back to the world's latest.
func snapshotPath(explicit, dataDir, worldID string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if strings.TrimSpace(worldID) == "" {
		return ""
	}
	return latestSnapshot(filepath.Join(dataDir, "worlds", worldID))
}
