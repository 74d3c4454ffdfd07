package world

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Clients  int `json:"clients"`
	Elements int `json:"elements"`

	Commands   int `json:"commands"`
	DirtyTiles int `json:"dirty_tiles"`

	CashCents int64 `json:"cash_cents"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	Inbox int `json:"inbox"`
	Join  int `json:"join"`
	Leave int `json:"leave"`
}

func (w *World) recordMetrics(nextTick uint64, commands, dirty int, stepMS float64) {
	w.metrics.Store(WorldMetrics{
		Tick:       nextTick,
		Clients:    len(w.clients),
		Elements:   w.tiles.Count(),
		Commands:   commands,
		DirtyTiles: dirty,
		CashCents:  int64(w.cash),
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		StepMS: stepMS,
	})
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	if v := w.metrics.Load(); v != nil {
		if m, ok := v.(WorldMetrics); ok {
			return m
		}
	}
	return WorldMetrics{}
}
