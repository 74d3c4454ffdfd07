package worldtest

import (
	"testing"

	"parkcraft.ai/internal/protocol"
	world "parkcraft.ai/internal/sim/world"
)

type tickRecorder struct{ entries []world.TickLogEntry }

func (r *tickRecorder) WriteTick(e world.TickLogEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

type auditRecorder struct{ entries []world.AuditEntry }

func (r *auditRecorder) WriteAudit(e world.AuditEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

type tileRecorder struct{ rows map[uint64][]world.TileRow }

func (r *tileRecorder) WriteTiles(tick uint64, rows []world.TileRow) error {
	r.rows[tick] = append(r.rows[tick], rows...)
	return nil
}

func TestLoggersSeeCommands(t *testing.T) {
	cats := LoadCatalogs(t)
	w, err := world.New(FlatConfig(t), cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	ticks := &tickRecorder{}
	audits := &auditRecorder{}
	tiles := &tileRecorder{rows: map[uint64][]world.TileRow{}}
	w.SetTickLogger(ticks)
	w.SetAuditLogger(audits)
	w.SetTileSink(tiles)

	h := NewHarnessWithWorld(t, w, cats)
	if len(ticks.entries) != 1 || len(ticks.entries[0].Joins) != 1 || ticks.entries[0].Joins[0].SessionID != "S1" {
		t.Fatalf("join not logged: %+v", ticks.entries)
	}

	r := h.Do(raise(10, 10))
	if !r.OK {
		t.Fatalf("raise %+v", r)
	}
	last := ticks.entries[len(ticks.entries)-1]
	if last.Tick != r.Tick || len(last.Commands) != 1 || !last.Commands[0].OK || last.Digest == "" {
		t.Fatalf("tick entry %+v", last)
	}
	if last.Commands[0].Cmd.Kind != protocol.CmdLandRaise {
		t.Fatalf("logged command %+v", last.Commands[0].Cmd)
	}

	if len(audits.entries) != 1 {
		t.Fatalf("expected one audited tile, got %+v", audits.entries)
	}
	a := audits.entries[0]
	if a.Tile != [2]int{10, 10} || a.Actor != "S1" || a.Action != protocol.CmdLandRaise || a.Slope == 0 {
		t.Fatalf("audit %+v", a)
	}

	rows := tiles.rows[r.Tick]
	found := false
	for _, row := range rows {
		if row.X == 10 && row.Y == 10 && row.Slope == a.Slope {
			found = true
		}
	}
	if !found {
		t.Fatalf("tile sink missed the raised tile: %+v", rows)
	}
}

func TestRejectedCommandIsNotAudited(t *testing.T) {
	cats := LoadCatalogs(t)
	w, err := world.New(FlatConfig(t), cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	audits := &auditRecorder{}
	w.SetAuditLogger(audits)
	h := NewHarnessWithWorld(t, w, cats)

	if r := h.Do(raise(1, 1)); r.OK {
		t.Fatalf("raise on unowned land succeeded")
	}
	q := raise(10, 10)
	q.Query = true
	h.Do(q)
	if len(audits.entries) != 0 {
		t.Fatalf("unexpected audits %+v", audits.entries)
	}
}

func TestCommandsRunInReceiveOrder(t *testing.T) {
	cats := LoadCatalogs(t)
	h := NewHarness(t, FlatConfig(t), cats)
	first, second := h.Cmd(tarmac(10, 10, 14)), h.Cmd(tarmac(10, 10, 14))
	second.PathType = "DIRT"
	results := h.StepMulti([]world.CommandEnvelope{
		{SessionID: h.DefaultSessionID, Cmd: first},
		{SessionID: h.DefaultSessionID, Cmd: second},
	})
	if len(results) != 2 || results[0].CmdID != first.ID || results[1].CmdID != second.ID {
		t.Fatalf("results %+v", results)
	}
	if results[0].Cost != "12.00" || results[1].Cost != "6.00" {
		t.Fatalf("second command must see the first: %s then %s", results[0].Cost, results[1].Cost)
	}
	if h.W.Metrics().Commands != 2 {
		t.Fatalf("metrics %+v", h.W.Metrics())
	}
}

func TestReplayedCommandsAreMarkedInAudit(t *testing.T) {
	cats := LoadCatalogs(t)
	w, err := world.New(FlatConfig(t), cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	audits := &auditRecorder{}
	w.SetAuditLogger(audits)
	h := NewHarnessWithWorld(t, w, cats)

	if rs := h.StepMulti([]world.CommandEnvelope{{SessionID: "S1", Cmd: h.Cmd(raise(10, 10)), Replay: true}}); len(rs) != 1 || !rs[0].OK {
		t.Fatalf("replayed raise %+v", rs)
	}
	if r := h.Do(raise(12, 12)); !r.OK {
		t.Fatalf("raise %+v", r)
	}
	if len(audits.entries) != 2 {
		t.Fatalf("expected two audited tiles, got %+v", audits.entries)
	}
	if !audits.entries[0].Replay || audits.entries[1].Replay {
		t.Fatalf("replay marks %+v", audits.entries)
	}
}
