package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"parkcraft.ai/internal/persistence/indexdb"
	persistlog "parkcraft.ai/internal/persistence/log"
	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/sim/catalogs"
	"parkcraft.ai/internal/sim/tuning"
	"parkcraft.ai/internal/sim/world"
	"parkcraft.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "park_1", "park id")
		seed       = flag.Int64("seed", 0, "terrain seed override (0 keeps tuning.yaml's seed; fresh parks only)")
		configDir  = flag.String("configs", "./configs", "config directory")
		schemaDir  = flag.String("schemas", "./schemas", "protocol schema directory (empty disables CMD validation)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable indexing (ticks/audit/tiles + catalogs + snapshot metadata)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(worldDir)
	}

	// Load tuning (required for fresh parks; snapshots carry their own rules).
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if snapshotToLoad == "" || !os.IsNotExist(tuneErr) {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if *seed != 0 {
		tune.Map.Seed = *seed
	}

	// Optional: read-model index backend (does not affect sim determinism).
	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index backend: upsert catalogs: %v", err)
		}
	}

	cfg := world.ConfigFromTuning(*worldID, tune)
	var w *world.World
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.WorldID != "" && snap.Header.WorldID != *worldID {
			logger.Fatalf("snapshot world id mismatch: flag=%s snap=%s", *worldID, snap.Header.WorldID)
		}
		cfg.TickRateHz = snap.TickRate
		cfg.MapSize = snap.MapSize
		cfg.MaxElements = snap.MaxElements
		w, err = world.NewFromSnapshot(cfg, cats, snap)
		if err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), w.CurrentTick())
	} else {
		w, err = world.New(cfg, cats)
		if err != nil {
			logger.Fatalf("world: %v", err)
		}
		logger.Printf("fresh park size=%d cash=%s", cfg.MapSize, w.Cash())
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(worldDir)
	auditLog := persistlog.NewAuditLogger(worldDir)
	defer tickLog.Close()
	defer auditLog.Close()
	if idx != nil {
		w.SetTickLogger(multiTickLogger{tickLog, idx})
		w.SetAuditLogger(persistlog.Fanout{auditLog, idx})
		w.SetTileSink(idx)
	} else {
		w.SetTickLogger(tickLog)
		w.SetAuditLogger(auditLog)
	}

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	go writeSnapshots(ctx, snapCh, worldDir, idx, logger)

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, logger)
	if dir := strings.TrimSpace(*schemaDir); dir != "" {
		if err := wsSrv.LoadCmdSchema(filepath.Join(dir, "cmd.schema.json")); err != nil {
			logger.Printf("cmd schema disabled: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, *worldID, w, idx)
	})

	enableAdminHTTP := envBool("PC_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("PC_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		// Local-only admin endpoints (do not affect simulation determinism).
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				WorldID string             `json:"world_id"`
				Tick    uint64             `json:"tick"`
				Paused  bool               `json:"paused"`
				Metrics world.WorldMetrics `json:"metrics"`
				Index   indexdb.Stats      `json:"index"`
			}{
				WorldID: *worldID,
				Tick:    w.CurrentTick(),
				Paused:  w.Paused(),
				Metrics: w.Metrics(),
				Index:   idx.Stats(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
		mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			tick, err := w.RequestSnapshot(ctx2)
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": tick, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": tick})
		})
		mux.HandleFunc("/admin/v1/pause", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			paused := r.URL.Query().Get("paused") != "false"
			w.SetPaused(paused)
			logger.Printf("park paused=%v", paused)
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "paused": paused})
		})
	} else {
		logger.Printf("admin endpoints disabled (PC_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (PC_ENABLE_PPROF_HTTP=false)")
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func writeSnapshots(ctx context.Context, snapCh <-chan snapshot.SnapshotV1, worldDir string, idx *indexdb.Index, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snapCh:
			path := filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
			if err := snapshot.WriteSnapshot(path, snap); err != nil {
				logger.Printf("snapshot write: %v", err)
				continue
			}
			if idx != nil {
				idx.RecordSnapshot(path, snap)
			}
		}
	}
}

func writeMetrics(rw http.ResponseWriter, worldID string, w *world.World, idx *indexdb.Index) {
	m := w.Metrics()
	tick := w.CurrentTick()
	if m.Tick != 0 {
		tick = m.Tick
	}

	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP parkcraft_world_tick Current park tick.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_world_tick gauge\n")
	fmt.Fprintf(rw, "parkcraft_world_tick{world=%q} %d\n", worldID, tick)

	fmt.Fprintf(rw, "# HELP parkcraft_world_clients Current number of connected sessions.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_world_clients gauge\n")
	fmt.Fprintf(rw, "parkcraft_world_clients{world=%q} %d\n", worldID, m.Clients)

	fmt.Fprintf(rw, "# HELP parkcraft_world_elements Tile elements in use.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_world_elements gauge\n")
	fmt.Fprintf(rw, "parkcraft_world_elements{world=%q} %d\n", worldID, m.Elements)

	fmt.Fprintf(rw, "# HELP parkcraft_world_cash_cents Park cash in cents.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_world_cash_cents gauge\n")
	fmt.Fprintf(rw, "parkcraft_world_cash_cents{world=%q} %d\n", worldID, m.CashCents)

	fmt.Fprintf(rw, "# HELP parkcraft_world_tick_commands Commands run in the last tick.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_world_tick_commands gauge\n")
	fmt.Fprintf(rw, "parkcraft_world_tick_commands{world=%q} %d\n", worldID, m.Commands)

	fmt.Fprintf(rw, "# HELP parkcraft_world_dirty_tiles Tiles invalidated in the last tick.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_world_dirty_tiles gauge\n")
	fmt.Fprintf(rw, "parkcraft_world_dirty_tiles{world=%q} %d\n", worldID, m.DirtyTiles)

	fmt.Fprintf(rw, "# HELP parkcraft_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_world_queue_depth gauge\n")
	fmt.Fprintf(rw, "parkcraft_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(rw, "parkcraft_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "join", m.QueueDepths.Join)
	fmt.Fprintf(rw, "parkcraft_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "leave", m.QueueDepths.Leave)

	fmt.Fprintf(rw, "# HELP parkcraft_world_step_ms Last tick step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_world_step_ms gauge\n")
	fmt.Fprintf(rw, "parkcraft_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)

	if idx == nil {
		return
	}
	s := idx.Stats()
	fmt.Fprintf(rw, "# HELP parkcraft_index_queue_depth Index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "parkcraft_index_queue_depth %d\n", s.QueueDepth)

	fmt.Fprintf(rw, "# HELP parkcraft_index_dropped_total Index writes dropped because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_index_dropped_total counter\n")
	fmt.Fprintf(rw, "parkcraft_index_dropped_total{kind=%q} %d\n", "tick", s.DropTickTotal)
	fmt.Fprintf(rw, "parkcraft_index_dropped_total{kind=%q} %d\n", "audit", s.DropAuditTotal)
	fmt.Fprintf(rw, "parkcraft_index_dropped_total{kind=%q} %d\n", "tiles", s.DropTilesTotal)
	fmt.Fprintf(rw, "parkcraft_index_dropped_total{kind=%q} %d\n", "snapshot", s.DropSnapshotTotal)

	fmt.Fprintf(rw, "# HELP parkcraft_index_write_errors_total Index transactions rolled back or failed to commit.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_index_write_errors_total counter\n")
	fmt.Fprintf(rw, "parkcraft_index_write_errors_total %d\n", s.WriteErrorTotal)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

type multiTickLogger []world.TickLogger

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	for _, l := range m {
		_ = l.WriteTick(entry)
	}
	return nil
}
