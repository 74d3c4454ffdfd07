package world

import (
	"context"
	"encoding/json"
	"time"

	"parkcraft.ai/internal/sim/world/kernel/model"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingCmds []CommandEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingAdmin []adminSnapshotReq

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case req := <-w.admin:
			pendingAdmin = append(pendingAdmin, req)
		case env := <-w.inbox:
			pendingCmds = append(pendingCmds, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingCmds)
			w.handleAdminSnapshotRequests(pendingAdmin)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingCmds = pendingCmds[:0]
			pendingAdmin = pendingAdmin[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, cmds []CommandEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	digest = w.step(joins, leaves, cmds)
	return tick, digest
}

func (w *World) step(joins []JoinRequest, leaves []string, cmds []CommandEnvelope) string {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	w.stepPaused = w.paused.Load()

	// Sessions change at the tick boundary, before commands.
	recordedLeaves := make([]string, 0, len(leaves))
	for _, id := range leaves {
		if _, ok := w.clients[id]; ok {
			delete(w.clients, id)
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		if req.SessionID == "" {
			if req.Resp != nil {
				req.Resp <- JoinResponse{}
			}
			continue
		}
		w.clients[req.SessionID] = &clientState{Name: req.Name, QueryOnly: req.QueryOnly, Out: req.Out}
		if req.Resp != nil {
			req.Resp <- JoinResponse{Welcome: w.welcome(req.SessionID, req.QueryOnly)}
		}
		recordedJoins = append(recordedJoins, RecordedJoin{SessionID: req.SessionID, Name: req.Name, QueryOnly: req.QueryOnly})
	}

	// Commands run in server receive order (the inbox order).
	recorded := make([]RecordedCommand, 0, len(cmds))
	for _, env := range cmds {
		cl := w.clients[env.SessionID]
		queryOnly := cl != nil && cl.QueryOnly
		res := w.runCommand(nowTick, env.SessionID, env.Cmd, queryOnly, env.Replay)
		recorded = append(recorded, RecordedCommand{SessionID: env.SessionID, Cmd: env.Cmd, OK: res.OK, Cost: res.cost})
		if cl != nil && cl.Out != nil {
			if b, err := json.Marshal(res.msg); err == nil {
				sendOrDrop(cl.Out, b)
			}
		}
	}

	dirty := w.tiles.TakeDirty()
	if w.tileSink != nil && len(dirty) > 0 {
		_ = w.tileSink.WriteTiles(nowTick, w.tileRows(dirty))
	}

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{Tick: nowTick, Joins: recordedJoins, Leaves: recordedLeaves, Commands: recorded, Paused: w.stepPaused, Digest: digest})
	}

	// Snapshot every N ticks, starting after tick 0.
	if w.snapshotSink != nil && nowTick != 0 && w.cfg.SnapshotEveryTicks > 0 {
		if nowTick%uint64(w.cfg.SnapshotEveryTicks) == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}

	nextTick := w.tick.Add(1)
	w.recordMetrics(nextTick, len(recorded), len(dirty), float64(time.Since(stepStart).Microseconds())/1000.0)
	return digest
}

func (w *World) tileRows(xys []model.TileXY) []TileRow {
	rows := make([]TileRow, 0, len(xys))
	for _, xy := range xys {
		sf := w.tiles.SurfaceAt(xy)
		if sf == nil {
			continue
		}
		r := TileRow{
			X: xy.X, Y: xy.Y,
			Base:      sf.BaseHeight,
			Slope:     sf.Slope,
			Water:     sf.WaterHeight,
			Ownership: sf.Ownership,
			Fences:    sf.ParkFences,
		}
		r.Paths = w.countPaths(xy)
		rows = append(rows, r)
	}
	return rows
}

func sendOrDrop(ch chan []byte, b []byte) {
	select {
	case ch <- b:
	default:
		// Slow client; results are also in the tick log.
	}
}
