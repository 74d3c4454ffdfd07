package world

import (
	"context"
	"errors"
)

var (
	ErrNoSnapshotSink       = errors.New("snapshot sink not configured")
	ErrSnapshotBackpressure = errors.New("snapshot sink backpressure")
)

type adminSnapshotReq struct {
	Resp chan adminSnapshotResp
}

type adminSnapshotResp struct {
	Tick uint64
	Err  error
}

// RequestSnapshot asks the world loop to export the last completed tick to the
// snapshot sink. Safe to call from other goroutines.
func (w *World) RequestSnapshot(ctx context.Context) (tick uint64, err error) {
	if w == nil {
		return 0, ErrNoSnapshotSink
	}
	resp := make(chan adminSnapshotResp, 1)
	select {
	case w.admin <- adminSnapshotReq{Resp: resp}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case r := <-resp:
		return r.Tick, r.Err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (w *World) handleAdminSnapshotRequests(reqs []adminSnapshotReq) {
	if len(reqs) == 0 {
		return
	}
	var snapTick uint64
	if cur := w.tick.Load(); cur > 0 {
		snapTick = cur - 1
	}

	var err error
	if w.snapshotSink == nil {
		err = ErrNoSnapshotSink
	} else {
		select {
		case w.snapshotSink <- w.ExportSnapshot(snapTick):
		default:
			err = ErrSnapshotBackpressure
		}
	}

	for _, r := range reqs {
		if r.Resp == nil {
			continue
		}
		select {
		case r.Resp <- adminSnapshotResp{Tick: snapTick, Err: err}:
		default:
			// Caller gave up; never block the sim loop.
		}
	}
}
