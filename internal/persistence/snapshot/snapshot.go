package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 is the full park state at a tick boundary.
type SnapshotV1 struct {
	Header Header `json:"header"`

	TickRate           int `json:"tick_rate_hz"`
	SnapshotEveryTicks int `json:"snapshot_every_ticks,omitempty"`
	MapSize            int `json:"map_size"`
	MaxElements        int `json:"max_elements"`

	Rules RulesV1 `json:"rules"`

	CashCents int64            `json:"cash_cents"`
	Ledger    map[string]int64 `json:"ledger,omitempty"`

	// Surface columns are row-major RLE strings, one value per tile.
	Surfaces SurfacesV1 `json:"surfaces"`

	Elements   []ElementV1   `json:"elements"`
	PeepSpawns []PeepSpawnV1 `json:"peep_spawns,omitempty"`
	Peeps      []PeepV1      `json:"peeps,omitempty"`
	Litter     []LitterV1    `json:"litter,omitempty"`

	CatalogDigests map[string]string `json:"catalog_digests,omitempty"`
}

type RulesV1 struct {
	EditorMode             bool `json:"editor_mode,omitempty"`
	Sandbox                bool `json:"sandbox,omitempty"`
	DisableClearanceChecks bool `json:"disable_clearance_checks,omitempty"`
	DisableSupportLimits   bool `json:"disable_support_limits,omitempty"`
	NoMoney                bool `json:"no_money,omitempty"`
	ForbidLandscapeChanges bool `json:"forbid_landscape_changes,omitempty"`
	ForbidTreeRemoval      bool `json:"forbid_tree_removal,omitempty"`

	LandPriceCents               int64 `json:"land_price_cents"`
	ConstructionRightsPriceCents int64 `json:"construction_rights_price_cents"`
}

type SurfacesV1 struct {
	Base        string `json:"base"`
	Slope       string `json:"slope"`
	Ownership   string `json:"ownership"`
	Water       string `json:"water"`
	Style       string `json:"style"`
	Edge        string `json:"edge"`
	Fences      string `json:"fences"`
	GrassLength string `json:"grass_length"`
}

// ElementV1 is a flattened non-surface tile element. Kind selects which of the
// optional fields are meaningful.
type ElementV1 struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Kind      string `json:"kind"`
	Base      int    `json:"base"`
	Clearance int    `json:"clearance"`
	Quadrants uint8  `json:"quadrants,omitempty"`
	Ghost     bool   `json:"ghost,omitempty"`

	Direction uint8  `json:"direction,omitempty"`
	Entry     uint16 `json:"entry,omitempty"`
	Sequence  uint8  `json:"sequence,omitempty"`
	RideIndex int    `json:"ride_index,omitempty"`
	RideType  uint16 `json:"ride_type,omitempty"`
	TrackType uint8  `json:"track_type,omitempty"`

	EntranceKind uint8 `json:"entrance_kind,omitempty"`

	PathSurface    uint8 `json:"path_surface,omitempty"`
	PathRailings   uint8 `json:"path_railings,omitempty"`
	PathEdges      uint8 `json:"path_edges,omitempty"`
	PathCorners    uint8 `json:"path_corners,omitempty"`
	PathSloped     bool  `json:"path_sloped,omitempty"`
	PathQueue      bool  `json:"path_queue,omitempty"`
	Addition       uint8 `json:"addition,omitempty"`
	AdditionStatus uint8 `json:"addition_status,omitempty"`
	Broken         bool  `json:"broken,omitempty"`
}

type PeepSpawnV1 struct {
	Pos       [3]int `json:"pos"`
	Direction uint8  `json:"direction"`
}

type PeepV1 struct {
	ID          string `json:"id"`
	Tile        [2]int `json:"tile"`
	Height      int    `json:"height"`
	Interrupted bool   `json:"interrupted,omitempty"`
}

type LitterV1 struct {
	Tile   [2]int `json:"tile"`
	Height int    `json:"height"`
	Count  int    `json:"count"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Read header line (ignore it for now, gob also contains header).
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
