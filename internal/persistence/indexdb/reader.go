package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Reader runs read-only queries against an index written by Index, on
// either backend.
type Reader struct {
	db      *sql.DB
	dialect dialect
}

// OpenReader opens an existing index. DSNs are resolved as in Open.
func OpenReader(dsn string) (*Reader, error) {
	d := dialect{name: "sqlite"}
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		d = dialect{name: "postgres", numbered: true}
		driver = "postgres"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return &Reader{db: db, dialect: d}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

type SnapshotInfo struct {
	Tick       uint64 `json:"tick"`
	Path       string `json:"path"`
	MapSize    int    `json:"map_size"`
	Elements   int    `json:"elements"`
	Peeps      int    `json:"peeps"`
	PeepSpawns int    `json:"peep_spawns"`
	CashCents  int64  `json:"cash_cents"`
	RecordedAt string `json:"recorded_at"`
}

type CommandRow struct {
	Tick      uint64 `json:"tick"`
	Seq       int    `json:"seq"`
	SessionID string `json:"session_id"`
	CmdID     string `json:"cmd_id"`
	Kind      string `json:"kind"`
	OK        bool   `json:"ok"`
	CostCents int64  `json:"cost_cents"`
	CmdJSON   string `json:"cmd_json"`
}

type AuditRow struct {
	Tick      uint64 `json:"tick"`
	Seq       int    `json:"seq"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	CmdID     string `json:"cmd_id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Base      int    `json:"base"`
	Slope     int    `json:"slope"`
	Water     int    `json:"water"`
	Ownership int    `json:"ownership"`
	Elements  int    `json:"elements"`
	Reason    string `json:"reason"`
}

type TileState struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Tick      uint64 `json:"tick"`
	Base      int    `json:"base"`
	Slope     int    `json:"slope"`
	Water     int    `json:"water"`
	Ownership int    `json:"ownership"`
	Fences    int    `json:"fences"`
	Paths     int    `json:"paths"`
}

func (r *Reader) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, r.dialect.rebind(q), args...)
}

// LatestTick is the highest indexed tick, 0 for an empty index.
func (r *Reader) LatestTick(ctx context.Context) (uint64, error) {
	var t int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(tick),0) FROM ticks`).Scan(&t); err != nil {
		return 0, err
	}
	if t < 0 {
		return 0, nil
	}
	return uint64(t), nil
}

func (r *Reader) Snapshots(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	rows, err := r.query(ctx, `SELECT tick,path,map_size,elements,peeps,peep_spawns,cash_cents,recorded_at FROM snapshots ORDER BY tick DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SnapshotInfo
	for rows.Next() {
		var s SnapshotInfo
		var tick int64
		if err := rows.Scan(&tick, &s.Path, &s.MapSize, &s.Elements, &s.Peeps, &s.PeepSpawns, &s.CashCents, &s.RecordedAt); err != nil {
			return nil, err
		}
		s.Tick = uint64(tick)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Commands lists the newest commands first, optionally for one session.
func (r *Reader) Commands(ctx context.Context, sessionID string, limit int) ([]CommandRow, error) {
	q := `SELECT tick,seq,session_id,cmd_id,kind,ok,cost_cents,cmd_json FROM commands ORDER BY tick DESC, seq DESC LIMIT ?`
	args := []any{limit}
	if sessionID != "" {
		q = `SELECT tick,seq,session_id,cmd_id,kind,ok,cost_cents,cmd_json FROM commands WHERE session_id=? ORDER BY tick DESC, seq DESC LIMIT ?`
		args = []any{sessionID, limit}
	}
	rows, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CommandRow
	for rows.Next() {
		var c CommandRow
		var tick int64
		var ok int
		if err := rows.Scan(&tick, &c.Seq, &c.SessionID, &c.CmdID, &c.Kind, &ok, &c.CostCents, &c.CmdJSON); err != nil {
			return nil, err
		}
		c.Tick = uint64(tick)
		c.OK = ok != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// TileAudits lists the newest changes to one tile first.
func (r *Reader) TileAudits(ctx context.Context, x, y, limit int) ([]AuditRow, error) {
	rows, err := r.query(ctx, `SELECT tick,seq,actor,action,cmd_id,x,y,base,slope,water,ownership,elements,reason FROM audits WHERE x=? AND y=? ORDER BY tick DESC, seq DESC LIMIT ?`, x, y, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AuditRow
	for rows.Next() {
		var a AuditRow
		var tick int64
		if err := rows.Scan(&tick, &a.Seq, &a.Actor, &a.Action, &a.CmdID, &a.X, &a.Y, &a.Base, &a.Slope, &a.Water, &a.Ownership, &a.Elements, &a.Reason); err != nil {
			return nil, err
		}
		a.Tick = uint64(tick)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Tiles returns the latest indexed state of the tiles in an inclusive rectangle.
func (r *Reader) Tiles(ctx context.Context, x0, y0, x1, y1 int) ([]TileState, error) {
	rows, err := r.query(ctx, `SELECT x,y,tick,base,slope,water,ownership,fences,paths FROM tiles WHERE x>=? AND x<=? AND y>=? AND y<=? ORDER BY y, x`,
		min(x0, x1), max(x0, x1), min(y0, y1), max(y0, y1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TileState
	for rows.Next() {
		var t TileState
		var tick int64
		if err := rows.Scan(&t.X, &t.Y, &tick, &t.Base, &t.Slope, &t.Water, &t.Ownership, &t.Fences, &t.Paths); err != nil {
			return nil, err
		}
		t.Tick = uint64(tick)
		out = append(out, t)
	}
	return out, rows.Err()
}
