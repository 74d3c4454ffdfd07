package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"parkcraft.ai/internal/persistence/indexdb"
)

// dbCmd queries the read-model index a server keeps next to its logs.
//
//	admin db -world park_1 snapshots
//	admin db -world park_1 -session S1 commands
//	admin db -world park_1 -tile 10,12 audits
//	admin db -dsn postgres://... -rect 0,0:15,15 tiles
func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -dsn)")
	dsn := fs.String("dsn", "", "sqlite path or postgres:// dsn (optional)")
	limit := fs.Int("limit", 20, "result limit")
	session := fs.String("session", "", "session id filter (commands)")
	tile := fs.String("tile", "", "tile x,y (audits)")
	rect := fs.String("rect", "", "tile rect x1,y1:x2,y2 (tiles)")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	if *limit <= 0 {
		*limit = 20
	}

	source := strings.TrimSpace(*dsn)
	if source == "" {
		source = strings.TrimSpace(os.Getenv("PC_INDEX_POSTGRES_DSN"))
	}
	if source == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -dsn")
			os.Exit(2)
		}
		source = filepath.Join(*dataDir, "worlds", *worldID, "index", "park.sqlite")
	}

	r, err := indexdb.OpenReader(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var out any
	switch q {
	case "latest":
		out, err = r.LatestTick(ctx)
	case "snapshots":
		out, err = r.Snapshots(ctx, *limit)
	case "commands":
		out, err = r.Commands(ctx, strings.TrimSpace(*session), *limit)
	case "audits":
		xy, perr := parseXY(*tile)
		if perr != nil {
			fmt.Fprintln(os.Stderr, "bad -tile:", perr)
			os.Exit(2)
		}
		out, err = r.TileAudits(ctx, xy.X, xy.Y, *limit)
	case "tiles":
		tr, perr := parseRect(*rect)
		if perr != nil {
			fmt.Fprintln(os.Stderr, "bad -rect:", perr)
			os.Exit(2)
		}
		out, err = r.Tiles(ctx, tr.Min.X, tr.Min.Y, tr.Max.X, tr.Max.Y)
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q, "(latest|snapshots|commands|audits|tiles)")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
