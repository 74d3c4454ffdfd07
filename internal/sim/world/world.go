package world

import (
	"fmt"
	"sync/atomic"

	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/protocol"
	"parkcraft.ai/internal/sim/catalogs"
	"parkcraft.ai/internal/sim/tuning"
	"parkcraft.ai/internal/sim/world/edit"
	"parkcraft.ai/internal/sim/world/kernel/model"
	"parkcraft.ai/internal/sim/world/terrain/gen"
	"parkcraft.ai/internal/sim/world/terrain/store"
)

type WorldConfig struct {
	ID                 string
	TickRateHz         int
	SnapshotEveryTicks int

	MapSize     int
	MaxElements int
	Gen         gen.Params

	Rules        edit.Rules
	StartingCash model.Money
	// OwnedMargin: tiles at least this far from the map edge start owned.
	OwnedMargin int
}

// ConfigFromTuning maps tuning.yaml onto a world config.
func ConfigFromTuning(id string, t tuning.Tuning) WorldConfig {
	return WorldConfig{
		ID:                 id,
		TickRateHz:         t.TickRateHz,
		SnapshotEveryTicks: t.SnapshotEveryTicks,
		MapSize:            t.Map.Size,
		MaxElements:        t.Map.MaxElements,
		Gen: gen.Params{
			Seed:             t.Map.Seed,
			BaseHeight:       t.Map.BaseHeight,
			WaterHeight:      t.Map.WaterHeight,
			HillGrid:         t.Map.HillGrid,
			HillProbPermille: t.Map.HillProbPermille,
			HillMaxSteps:     t.Map.HillMaxSteps,
		},
		Rules: edit.Rules{
			EditorMode: t.EditorMode,
			Cheats: edit.Cheats{
				Sandbox:                t.Cheats.Sandbox,
				DisableClearanceChecks: t.Cheats.DisableClearanceChecks,
				DisableSupportLimits:   t.Cheats.DisableSupportLimits,
			},
			Park: edit.ParkFlags{
				NoMoney:                t.Park.NoMoney,
				ForbidLandscapeChanges: t.Park.ForbidLandscapeChanges,
				ForbidTreeRemoval:      t.Park.ForbidTreeRemoval,
			},
			Limits: edit.Limits{
				LandMin:     t.Heights.LandMin,
				LandMax:     t.Heights.LandMax,
				WaterMin:    t.Heights.WaterMin,
				WaterMax:    t.Heights.WaterMax,
				FootpathMin: t.Heights.FootpathMin,
				FootpathMax: t.Heights.FootpathMax,
			},
			LandPrice:               t.Park.LandPrice,
			ConstructionRightsPrice: t.Park.ConstructionRightsPrice,
		},
		StartingCash: t.Park.Cash,
		OwnedMargin:  t.Park.OwnedMargin,
	}
}

type JoinRequest struct {
	SessionID string
	Name      string
	QueryOnly bool
	Out       chan []byte
	Resp      chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type CommandEnvelope struct {
	SessionID string
	Cmd       protocol.CmdMsg
	// Replay marks a command re-run from a tick log.
	Replay bool
}

type RecordedJoin struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	QueryOnly bool   `json:"query_only,omitempty"`
}

// World is a single-threaded authoritative park.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs

	tick atomic.Uint64

	// paused is requested from any goroutine; stepPaused is its value for
	// the tick being stepped.
	paused     atomic.Bool
	stepPaused bool

	tiles  *store.Store
	cash   model.Money
	ledger map[model.ExpenditureType]model.Money

	spawns []model.PeepSpawn
	peeps  []model.Peep
	litter map[model.TileXY]int

	clients map[string]*clientState

	inbox chan CommandEnvelope
	join  chan JoinRequest
	leave chan string
	admin chan adminSnapshotReq
	stop  chan struct{}

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger
	tileSink    TileSink

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	// sounds collects feedback of the command being executed.
	sounds []edit.Sound

	metrics atomic.Value
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// TileSink receives the surfaces invalidated during a tick, for read models.
type TileSink interface {
	WriteTiles(tick uint64, tiles []TileRow) error
}

type TickLogEntry struct {
	Tick     uint64            `json:"tick"`
	Joins    []RecordedJoin    `json:"joins,omitempty"`
	Leaves   []string          `json:"leaves,omitempty"`
	Commands []RecordedCommand `json:"commands,omitempty"`
	Paused   bool              `json:"paused,omitempty"`
	Digest   string            `json:"digest"`
}

type RecordedCommand struct {
	SessionID string          `json:"session_id"`
	Cmd       protocol.CmdMsg `json:"cmd"`
	OK        bool            `json:"ok"`
	Cost      model.Money     `json:"cost"`
}

// AuditEntry records one tile a command changed, with its surface afterwards.
type AuditEntry struct {
	Tick      uint64 `json:"tick"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	CmdID     string `json:"cmd_id,omitempty"`
	Tile      [2]int `json:"tile"`
	Base      int    `json:"base"`
	Slope     uint8  `json:"slope"`
	Water     int    `json:"water"`
	Ownership uint8  `json:"ownership"`
	Elements  int    `json:"elements"`
	Reason    string `json:"reason,omitempty"`
	Replay    bool   `json:"replay,omitempty"`
}

type TileRow struct {
	X         int   `json:"x"`
	Y         int   `json:"y"`
	Base      int   `json:"base"`
	Slope     uint8 `json:"slope"`
	Water     int   `json:"water"`
	Ownership uint8 `json:"ownership"`
	Fences    uint8 `json:"fences"`
	Paths     int   `json:"paths"`
}

type clientState struct {
	Name      string
	QueryOnly bool
	Out       chan []byte
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("nil catalogs")
	}
	if cfg.MapSize < 4 {
		return nil, fmt.Errorf("map size %d too small", cfg.MapSize)
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 20
	}
	w := newWorld(cfg, cats)
	w.tiles = store.Generate(cfg.MapSize, cfg.MaxElements, cfg.Gen)
	w.cash = cfg.StartingCash
	w.initOwnership()
	return w, nil
}

func newWorld(cfg WorldConfig, cats *catalogs.Catalogs) *World {
	w := &World{
		cfg:      cfg,
		catalogs: cats,
		ledger:   map[model.ExpenditureType]model.Money{},
		litter:   map[model.TileXY]int{},
		clients:  map[string]*clientState{},
		inbox:    make(chan CommandEnvelope, 1024),
		join:     make(chan JoinRequest, 64),
		leave:    make(chan string, 64),
		admin:    make(chan adminSnapshotReq, 16),
		stop:     make(chan struct{}),
	}
	w.metrics.Store(WorldMetrics{})
	return w
}

// initOwnership owns the interior, puts the ring inside the margin up for
// sale and leaves the map edge unowned, then raises the park fences.
func (w *World) initOwnership() {
	size := w.cfg.MapSize
	margin := w.cfg.OwnedMargin
	if margin < 1 {
		margin = 1
	}
	all := model.NewTileRange(0, 0, size-1, size-1)
	all.Each(func(xy model.TileXY) {
		sf := w.tiles.SurfaceAt(xy)
		if w.tiles.IsEdge(xy) {
			sf.Ownership = model.OwnershipUnowned
			return
		}
		d := min(xy.X, xy.Y, size-1-xy.X, size-1-xy.Y)
		if d >= margin {
			sf.Ownership = model.OwnershipOwned
		} else {
			sf.Ownership = model.OwnershipAvailable
		}
	})
	all.Each(func(xy model.TileXY) { store.UpdateParkFences(w.tiles, xy) })
	w.tiles.TakeDirty()
}

func (w *World) SetTickLogger(l TickLogger)                    { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)                  { w.auditLogger = l }
func (w *World) SetTileSink(s TileSink)                        { w.tileSink = s }
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) Inbox() chan<- CommandEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest      { return w.join }
func (w *World) Leave() chan<- string          { return w.leave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// SetPaused pauses or resumes construction from the next tick on. The state
// is recorded in the tick log so replays see the same refusals.
func (w *World) SetPaused(paused bool) { w.paused.Store(paused) }

func (w *World) Paused() bool { return w.paused.Load() }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) Catalogs() *catalogs.Catalogs { return w.catalogs }

func (w *World) welcome(sessionID string, queryOnly bool) protocol.WelcomeMsg {
	ref := func(palette []string, digest string) protocol.DigestRef {
		return protocol.DigestRef{Digest: digest, Count: len(palette)}
	}
	c := w.catalogs
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		WorldID:         w.cfg.ID,
		Tick:            w.tick.Load(),
		QueryOnly:       queryOnly,
		WorldParams: protocol.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			MapSize:    w.cfg.MapSize,
			EditorMode: w.cfg.Rules.EditorMode,
			Sandbox:    w.cfg.Rules.Cheats.Sandbox,
			NoMoney:    w.cfg.Rules.Park.NoMoney,
			Cash:       w.cash.String(),
		},
		Catalogs: protocol.CatalogDigests{
			RideTypes:     ref(c.RideTypes.Palette, c.RideTypes.DefsDigest),
			SmallScenery:  ref(c.SmallScenery.Palette, c.SmallScenery.DefsDigest),
			Footpaths:     ref(c.Footpaths.Palette, c.Footpaths.DefsDigest),
			PathAdditions: ref(c.PathAdditions.Palette, c.PathAdditions.DefsDigest),
			Walls:         ref(c.Walls.Palette, c.Walls.DefsDigest),
		},
	}
}
