// Package indexdb keeps a queryable secondary index of a park's tick log,
// audit trail, tile read model and snapshots. The JSONL logs stay the source
// of truth; the index may drop writes when it falls behind.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/sim/catalogs"
	"parkcraft.ai/internal/sim/tuning"
	"parkcraft.ai/internal/sim/world"
)

// SchemaVersion is stored under meta.schema_version.
const SchemaVersion = "1"

// dialect covers the differences between the SQL backends. Statements are
// written with ? placeholders and ON CONFLICT upserts, which both accept.
type dialect struct {
	name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

func (d dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// Index is an asynchronous writer over one SQL database. It implements
// world.TickLogger, world.AuditLogger and world.TileSink.
type Index struct {
	db      *sql.DB
	dialect dialect

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropAudit    atomic.Uint64
	dropTiles    atomic.Uint64
	dropSnapshot atomic.Uint64
	writeErrors  atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqAudit
	reqTiles
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	audit    world.AuditEntry
	tiles    tilesBatch
	snapshot snapshotRow
}

type tilesBatch struct {
	Tick uint64
	Rows []world.TileRow
}

type snapshotRow struct {
	Tick       uint64
	Path       string
	MapSize    int
	Elements   int
	Peeps      int
	PeepSpawns int
	CashCents  int64
	RecordedAt string
}

// Stats reports queue pressure; drops mean the index lags the JSONL logs.
type Stats struct {
	QueueDepth        int    `json:"queue_depth"`
	QueueCapacity     int    `json:"queue_capacity"`
	DropTickTotal     uint64 `json:"drop_tick_total"`
	DropAuditTotal    uint64 `json:"drop_audit_total"`
	DropTilesTotal    uint64 `json:"drop_tiles_total"`
	DropSnapshotTotal uint64 `json:"drop_snapshot_total"`
	WriteErrorTotal   uint64 `json:"write_error_total"`
}

func newIndex(db *sql.DB, d dialect, queue int) (*Index, error) {
	if err := initSchema(db); err != nil {
		return nil, err
	}
	s := &Index{db: db, dialect: d, ch: make(chan req, queue)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick BIGINT PRIMARY KEY,
			digest TEXT NOT NULL,
			joins INTEGER NOT NULL,
			leaves INTEGER NOT NULL,
			commands INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			tick BIGINT NOT NULL,
			session_id TEXT NOT NULL,
			event TEXT NOT NULL,
			name TEXT NOT NULL,
			query_only INTEGER NOT NULL,
			PRIMARY KEY (tick, session_id, event)
		);`,
		`CREATE TABLE IF NOT EXISTS commands (
			tick BIGINT NOT NULL,
			seq INTEGER NOT NULL,
			session_id TEXT NOT NULL,
			cmd_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			ok INTEGER NOT NULL,
			cost_cents BIGINT NOT NULL,
			cmd_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_commands_session_tick ON commands(session_id, tick);`,
		`CREATE TABLE IF NOT EXISTS audits (
			tick BIGINT NOT NULL,
			seq INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			cmd_id TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			base INTEGER NOT NULL,
			slope INTEGER NOT NULL,
			water INTEGER NOT NULL,
			ownership INTEGER NOT NULL,
			elements INTEGER NOT NULL,
			reason TEXT NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_actor_tick ON audits(actor, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_pos_tick ON audits(x, y, tick);`,
		`CREATE TABLE IF NOT EXISTS tiles (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			tick BIGINT NOT NULL,
			base INTEGER NOT NULL,
			slope INTEGER NOT NULL,
			water INTEGER NOT NULL,
			ownership INTEGER NOT NULL,
			fences INTEGER NOT NULL,
			paths INTEGER NOT NULL,
			PRIMARY KEY (x, y)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick BIGINT PRIMARY KEY,
			path TEXT NOT NULL,
			map_size INTEGER NOT NULL,
			elements INTEGER NOT NULL,
			peeps INTEGER NOT NULL,
			peep_spawns INTEGER NOT NULL,
			cash_cents BIGINT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Index) DB() *sql.DB { return s.db }

func (s *Index) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *Index) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTickTotal:     s.dropTick.Load(),
		DropAuditTotal:    s.dropAudit.Load(),
		DropTilesTotal:    s.dropTiles.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
		WriteErrorTotal:   s.writeErrors.Load(),
	}
}

// enqueue never blocks the world loop.
func (s *Index) enqueue(r req, drops *atomic.Uint64) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		drops.Add(1)
	}
}

func (s *Index) WriteTick(entry world.TickLogEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqTick, tick: entry}, &s.dropTick)
	return nil
}

func (s *Index) WriteAudit(entry world.AuditEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqAudit, audit: entry}, &s.dropAudit)
	return nil
}

func (s *Index) WriteTiles(tick uint64, rows []world.TileRow) error {
	if s == nil || len(rows) == 0 {
		return nil
	}
	s.enqueue(req{kind: reqTiles, tiles: tilesBatch{Tick: tick, Rows: rows}}, &s.dropTiles)
	return nil
}

func (s *Index) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil {
		return
	}
	r := snapshotRow{
		Tick:       snap.Header.Tick,
		Path:       path,
		MapSize:    snap.MapSize,
		Elements:   len(snap.Elements),
		Peeps:      len(snap.Peeps),
		PeepSpawns: len(snap.PeepSpawns),
		CashCents:  snap.CashCents,
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	s.enqueue(req{kind: reqSnapshot, snapshot: r}, &s.dropSnapshot)
}

// UpsertCatalogs stores the catalog files and the applied tuning, keyed by
// digest, so an index can be matched to the configuration that produced it.
func (s *Index) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil || cats == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	file := func(name, file, digest string, palette []string) {
		if configDir != "" {
			if b, err := os.ReadFile(filepath.Join(configDir, file)); err == nil {
				rows = append(rows, kv{name: name + "_defs", digest: digest, json: b})
			}
		}
		if b, _ := json.Marshal(palette); len(b) > 0 {
			sum := sha256.Sum256(b)
			rows = append(rows, kv{name: name + "_palette", digest: hex.EncodeToString(sum[:]), json: b})
		}
	}
	file("ride_types", "ride_types.json", cats.RideTypes.DefsDigest, cats.RideTypes.Palette)
	file("small_scenery", "small_scenery.json", cats.SmallScenery.DefsDigest, cats.SmallScenery.Palette)
	file("footpaths", "footpaths.json", cats.Footpaths.DefsDigest, cats.Footpaths.Palette)
	file("path_additions", "path_additions.json", cats.PathAdditions.DefsDigest, cats.PathAdditions.Palette)
	file("walls", "walls.json", cats.Walls.DefsDigest, cats.Walls.Palette)

	// Tuning: store the values we actually apply (canonical JSON).
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	upsertMeta := s.dialect.rebind(`INSERT INTO meta(key,value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`)
	if _, err := tx.Exec(upsertMeta, "schema_version", SchemaVersion); err != nil {
		return err
	}
	stmt, err := tx.Prepare(s.dialect.rebind(`INSERT INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET digest=excluded.digest, json=excluded.json, updated_at=excluded.updated_at`))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Index) loop() {
	ctx := context.Background()
	prep := func(q string) *sql.Stmt {
		st, err := s.db.Prepare(s.dialect.rebind(q))
		if err != nil {
			return nil
		}
		return st
	}

	// Prepared statements (on db; executed within tx).
	insertTick := prep(`INSERT INTO ticks(tick,digest,joins,leaves,commands,raw_json) VALUES(?,?,?,?,?,?)
		ON CONFLICT(tick) DO UPDATE SET digest=excluded.digest, joins=excluded.joins, leaves=excluded.leaves, commands=excluded.commands, raw_json=excluded.raw_json`)
	insertSession := prep(`INSERT INTO sessions(tick,session_id,event,name,query_only) VALUES(?,?,?,?,?)
		ON CONFLICT(tick,session_id,event) DO NOTHING`)
	insertCommand := prep(`INSERT INTO commands(tick,seq,session_id,cmd_id,kind,ok,cost_cents,cmd_json) VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(tick,seq) DO UPDATE SET session_id=excluded.session_id, cmd_id=excluded.cmd_id, kind=excluded.kind, ok=excluded.ok, cost_cents=excluded.cost_cents, cmd_json=excluded.cmd_json`)
	insertAudit := prep(`INSERT INTO audits(tick,seq,actor,action,cmd_id,x,y,base,slope,water,ownership,elements,reason,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(tick,seq) DO NOTHING`)
	upsertTile := prep(`INSERT INTO tiles(x,y,tick,base,slope,water,ownership,fences,paths) VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(x,y) DO UPDATE SET tick=excluded.tick, base=excluded.base, slope=excluded.slope, water=excluded.water, ownership=excluded.ownership, fences=excluded.fences, paths=excluded.paths`)
	insertSnapshot := prep(`INSERT INTO snapshots(tick,path,map_size,elements,peeps,peep_spawns,cash_cents,recorded_at) VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(tick) DO UPDATE SET path=excluded.path, recorded_at=excluded.recorded_at`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertSession, insertCommand, insertAudit, upsertTile, insertSnapshot} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		lastAuditTick uint64
		auditSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.writeErrors.Add(1)
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		s.writeErrors.Add(1)
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if st == nil {
			return true
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			t := r.tick
			b, _ := json.Marshal(t)
			if !exec(insertTick, int64(t.Tick), t.Digest, len(t.Joins), len(t.Leaves), len(t.Commands), string(b)) {
				continue
			}
			ok := true
			for _, j := range t.Joins {
				if ok = exec(insertSession, int64(t.Tick), j.SessionID, "join", j.Name, boolInt(j.QueryOnly)); !ok {
					break
				}
			}
			for _, id := range t.Leaves {
				if !ok {
					break
				}
				ok = exec(insertSession, int64(t.Tick), id, "leave", "", 0)
			}
			for i, c := range t.Commands {
				if !ok {
					break
				}
				cmdJSON, _ := json.Marshal(c.Cmd)
				ok = exec(insertCommand, int64(t.Tick), i, c.SessionID, c.Cmd.ID, c.Cmd.Kind, boolInt(c.OK), int64(c.Cost), string(cmdJSON))
			}

		case reqAudit:
			a := r.audit
			if a.Tick != lastAuditTick {
				lastAuditTick = a.Tick
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			raw, _ := json.Marshal(a)
			exec(insertAudit, int64(a.Tick), seq, a.Actor, a.Action, a.CmdID, a.Tile[0], a.Tile[1],
				a.Base, int(a.Slope), a.Water, int(a.Ownership), a.Elements, a.Reason, string(raw))

		case reqTiles:
			for _, row := range r.tiles.Rows {
				if !exec(upsertTile, row.X, row.Y, int64(r.tiles.Tick), row.Base, int(row.Slope), row.Water, int(row.Ownership), int(row.Fences), row.Paths) {
					break
				}
			}

		case reqSnapshot:
			sn := r.snapshot
			exec(insertSnapshot, int64(sn.Tick), sn.Path, sn.MapSize, sn.Elements, sn.Peeps, sn.PeepSpawns, sn.CashCents, sn.RecordedAt)
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
