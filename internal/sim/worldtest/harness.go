package worldtest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"

	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/protocol"
	"parkcraft.ai/internal/sim/catalogs"
	"parkcraft.ai/internal/sim/tuning"
	world "parkcraft.ai/internal/sim/world"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

// ConfigDir is where the shipped catalogs and tuning live. It is resolved
// from this file so tests in any package can load them.
var ConfigDir = configDir()

func configDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "configs"
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "configs")
}

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Join() opens a session via StepOnce()
// - Do()/DoFor() send one CMD via StepOnce() and return its RESULT
// - Per-session Out channels carry RESULT JSON
// - ExportSnapshot/Debug* helpers provide deterministic preconditions
//
// It avoids touching world internals so tests can live outside the world package.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	W    *world.World

	DefaultSessionID string

	sessions map[string]chan []byte
	nextCmd  int
}

// LoadCatalogs loads the shipped catalogs or fails the test.
func LoadCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load(ConfigDir)
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

// FlatConfig is the shipped tuning on a small flat map: tiles two or more
// from the edge are owned, the ring inside them is for sale.
func FlatConfig(t *testing.T) world.WorldConfig {
	t.Helper()
	tune, err := tuning.Load(filepath.Join(ConfigDir, "tuning.yaml"))
	if err != nil {
		t.Fatalf("load tuning: %v", err)
	}
	tune.Map.Size = 32
	tune.Map.HillGrid = 0
	tune.Map.WaterHeight = 0
	tune.Park.OwnedMargin = 2
	tune.SnapshotEveryTicks = 0
	return world.ConfigFromTuning("test", tune)
}

func NewHarness(t *testing.T, cfg world.WorldConfig, cats *catalogs.Catalogs) *Harness {
	t.Helper()
	w, err := world.New(cfg, cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w, cats)
}

// NewHarnessWithWorld is like NewHarness, but uses an already-constructed world instance.
// This is useful for snapshot round-trip tests where the snapshot is imported before join.
func NewHarnessWithWorld(t *testing.T, w *world.World, cats *catalogs.Catalogs) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	h := &Harness{
		T:        t,
		Cats:     cats,
		W:        w,
		sessions: map[string]chan []byte{},
	}
	h.DefaultSessionID = "S1"
	h.Join(h.DefaultSessionID, false)
	return h
}

func (h *Harness) Join(sessionID string, queryOnly bool) protocol.WelcomeMsg {
	h.T.Helper()
	out := make(chan []byte, 64)
	resp := make(chan world.JoinResponse, 1)
	_, _ = h.W.StepOnce([]world.JoinRequest{{
		SessionID: sessionID,
		Name:      "test-" + sessionID,
		QueryOnly: queryOnly,
		Out:       out,
		Resp:      resp,
	}}, nil, nil)
	jr := <-resp
	if jr.Welcome.SessionID != sessionID {
		h.T.Fatalf("join returned session %q want %q", jr.Welcome.SessionID, sessionID)
	}
	h.sessions[sessionID] = out
	return jr.Welcome
}

// Cmd fills the envelope fields of a command.
func (h *Harness) Cmd(c protocol.CmdMsg) protocol.CmdMsg {
	h.nextCmd++
	c.Type = protocol.TypeCmd
	c.ProtocolVersion = protocol.Version
	if c.ID == "" {
		c.ID = fmt.Sprintf("C%d", h.nextCmd)
	}
	return c
}

func (h *Harness) Do(c protocol.CmdMsg) protocol.ResultMsg {
	return h.DoFor(h.DefaultSessionID, c)
}

func (h *Harness) DoFor(sessionID string, c protocol.CmdMsg) protocol.ResultMsg {
	h.T.Helper()
	c = h.Cmd(c)
	_, _ = h.W.StepOnce(nil, nil, []world.CommandEnvelope{{SessionID: sessionID, Cmd: c}})
	results := h.drain(sessionID)
	if len(results) != 1 || results[0].CmdID != c.ID {
		h.T.Fatalf("expected one RESULT for %s, got %+v", c.ID, results)
	}
	return results[0]
}

// StepMulti runs all commands in one tick and returns every RESULT the
// default session received.
func (h *Harness) StepMulti(cmds []world.CommandEnvelope) []protocol.ResultMsg {
	h.T.Helper()
	_, _ = h.W.StepOnce(nil, nil, cmds)
	return h.drain(h.DefaultSessionID)
}

func (h *Harness) StepNoop() string {
	h.T.Helper()
	_, d := h.W.StepOnce(nil, nil, nil)
	return d
}

func (h *Harness) Snapshot() (tick uint64, snap snapshot.SnapshotV1) {
	h.T.Helper()
	// Keep tick stable: export at currentTick-1 then import would restore to currentTick.
	cur := h.W.CurrentTick()
	if cur == 0 {
		return 0, h.W.ExportSnapshot(0)
	}
	tick = cur - 1
	return tick, h.W.ExportSnapshot(tick)
}

func (h *Harness) Surface(x, y int) store.Surface {
	h.T.Helper()
	sf, ok := h.W.DebugSurface(x, y)
	if !ok {
		h.T.Fatalf("no surface at %d,%d", x, y)
	}
	return sf
}

func (h *Harness) drain(sessionID string) []protocol.ResultMsg {
	h.T.Helper()
	out := h.sessions[sessionID]
	if out == nil {
		h.T.Fatalf("unknown session id: %q", sessionID)
	}
	var results []protocol.ResultMsg
	for {
		select {
		case b := <-out:
			var r protocol.ResultMsg
			if err := json.Unmarshal(b, &r); err != nil {
				h.T.Fatalf("unmarshal RESULT: %v", err)
			}
			results = append(results, r)
			continue
		default:
		}
		return results
	}
}
