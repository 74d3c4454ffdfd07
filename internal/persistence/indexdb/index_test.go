package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/protocol"
	"parkcraft.ai/internal/sim/catalogs"
	"parkcraft.ai/internal/sim/tuning"
	"parkcraft.ai/internal/sim/world"
)

func TestSQLiteIndex_WritesAllTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index", "park.sqlite")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_ = idx.WriteTick(world.TickLogEntry{
		Tick:   7,
		Digest: "abc",
		Joins:  []world.RecordedJoin{{SessionID: "S1", Name: "alice"}},
		Commands: []world.RecordedCommand{
			{SessionID: "S1", Cmd: protocol.CmdMsg{ID: "C1", Kind: protocol.CmdLandRaise}, OK: true, Cost: 500},
			{SessionID: "S1", Cmd: protocol.CmdMsg{ID: "C2", Kind: protocol.CmdFootpathPlace}, OK: false},
		},
	})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 7, Actor: "S1", Action: protocol.CmdLandRaise, CmdID: "C1", Tile: [2]int{3, 4}, Base: 14, Slope: 1})
	_ = idx.WriteAudit(world.AuditEntry{Tick: 7, Actor: "S1", Action: protocol.CmdLandRaise, CmdID: "C1", Tile: [2]int{3, 5}, Base: 14, Slope: 2})
	_ = idx.WriteTiles(7, []world.TileRow{{X: 3, Y: 4, Base: 14, Slope: 1, Ownership: 32}})
	_ = idx.WriteTiles(9, []world.TileRow{{X: 3, Y: 4, Base: 16, Ownership: 32, Paths: 1}})
	idx.RecordSnapshot("/tmp/9.snap.zst", snapshot.SnapshotV1{
		Header:    snapshot.Header{Version: snapshot.Version, WorldID: "w", Tick: 9},
		MapSize:   32,
		CashCents: 999500,
		Elements:  []snapshot.ElementV1{{Kind: "PATH"}},
	})
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	count := func(q string, args ...any) int {
		t.Helper()
		var n int
		if err := db.QueryRow(q, args...).Scan(&n); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
		return n
	}
	if n := count(`SELECT commands FROM ticks WHERE tick=7`); n != 2 {
		t.Fatalf("tick commands=%d", n)
	}
	if n := count(`SELECT COUNT(*) FROM sessions WHERE event='join' AND session_id='S1'`); n != 1 {
		t.Fatalf("joins=%d", n)
	}
	if n := count(`SELECT COUNT(*) FROM commands WHERE tick=7 AND ok=1 AND cost_cents=500`); n != 1 {
		t.Fatalf("ok commands=%d", n)
	}
	if n := count(`SELECT COUNT(*) FROM audits WHERE tick=7`); n != 2 {
		t.Fatalf("audits=%d", n)
	}
	if n := count(`SELECT MAX(seq) FROM audits WHERE tick=7`); n != 1 {
		t.Fatalf("audit seq=%d", n)
	}

	var base, paths int
	var tick int64
	if err := db.QueryRow(`SELECT tick,base,paths FROM tiles WHERE x=3 AND y=4`).Scan(&tick, &base, &paths); err != nil {
		t.Fatalf("tile: %v", err)
	}
	if tick != 9 || base != 16 || paths != 1 {
		t.Fatalf("tile read model not upserted: tick=%d base=%d paths=%d", tick, base, paths)
	}
	if n := count(`SELECT elements FROM snapshots WHERE tick=9`); n != 1 {
		t.Fatalf("snapshot elements=%d", n)
	}
}

func TestSQLiteIndex_UpsertCatalogs(t *testing.T) {
	cfgDir := "../../../configs"
	cats, err := catalogs.Load(cfgDir)
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "park.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	for i := 0; i < 2; i++ {
		if err := idx.UpsertCatalogs(cfgDir, cats, tuning.Defaults()); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	var digest string
	if err := idx.DB().QueryRow(`SELECT digest FROM catalogs WHERE name='footpaths_defs'`).Scan(&digest); err != nil {
		t.Fatalf("query: %v", err)
	}
	if digest != cats.Footpaths.DefsDigest {
		t.Fatalf("digest %s want %s", digest, cats.Footpaths.DefsDigest)
	}
	var n int
	if err := idx.DB().QueryRow(`SELECT COUNT(*) FROM catalogs`).Scan(&n); err != nil || n != 11 {
		t.Fatalf("catalog rows=%d err=%v", n, err)
	}
}

func TestIndex_QueueDropStats(t *testing.T) {
	s := &Index{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: world.TickLogEntry{Tick: 1}}

	_ = s.WriteTick(world.TickLogEntry{Tick: 2})
	_ = s.WriteAudit(world.AuditEntry{Tick: 2})
	_ = s.WriteTiles(2, []world.TileRow{{X: 1}})
	s.RecordSnapshot("/tmp/2.snap.zst", snapshot.SnapshotV1{})

	st := s.Stats()
	if st.DropTickTotal != 1 || st.DropAuditTotal != 1 || st.DropTilesTotal != 1 || st.DropSnapshotTotal != 1 {
		t.Fatalf("drops %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestDialectRebind(t *testing.T) {
	q := `INSERT INTO t(a,b) VALUES(?,?)`
	if got := (dialect{name: "sqlite"}).rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %s", got)
	}
	if got := (dialect{name: "postgres", numbered: true}).rebind(q); got != `INSERT INTO t(a,b) VALUES($1,$2)` {
		t.Fatalf("postgres rebind: %s", got)
	}
}

func TestOpenPostgresRejectsEmptyDSN(t *testing.T) {
	if _, err := OpenPostgres(" "); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReader_QueriesWhatIndexWrote(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "park.sqlite")
	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for tick := uint64(1); tick <= 3; tick++ {
		_ = idx.WriteTick(world.TickLogEntry{Tick: tick, Digest: "d", Commands: []world.RecordedCommand{
			{SessionID: "S1", Cmd: protocol.CmdMsg{ID: "a", Kind: protocol.CmdLandRaise}, OK: true, Cost: 500},
			{SessionID: "S2", Cmd: protocol.CmdMsg{ID: "b", Kind: protocol.CmdWaterRaise}},
		}})
		_ = idx.WriteAudit(world.AuditEntry{Tick: tick, Actor: "S1", Action: protocol.CmdLandRaise, Tile: [2]int{4, 4}, Base: 14 + int(tick)})
	}
	_ = idx.WriteTiles(3, []world.TileRow{{X: 4, Y: 4, Base: 17}, {X: 9, Y: 9, Base: 14}})
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r, err := OpenReader(dbPath)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	if tick, err := r.LatestTick(ctx); err != nil || tick != 3 {
		t.Fatalf("latest tick %d err %v", tick, err)
	}
	cmds, err := r.Commands(ctx, "S1", 2)
	if err != nil || len(cmds) != 2 || cmds[0].Tick != 3 || !cmds[0].OK || cmds[0].CostCents != 500 {
		t.Fatalf("commands %+v err %v", cmds, err)
	}
	audits, err := r.TileAudits(ctx, 4, 4, 10)
	if err != nil || len(audits) != 3 || audits[0].Base != 17 {
		t.Fatalf("audits %+v err %v", audits, err)
	}
	tiles, err := r.Tiles(ctx, 5, 5, 0, 0)
	if err != nil || len(tiles) != 1 || tiles[0].X != 4 {
		t.Fatalf("tiles %+v err %v", tiles, err)
	}
	snaps, err := r.Snapshots(ctx, 5)
	if err != nil || len(snaps) != 0 {
		t.Fatalf("snapshots %+v err %v", snaps, err)
	}
}
