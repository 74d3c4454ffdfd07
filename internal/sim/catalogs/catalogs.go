package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"parkcraft.ai/internal/sim/world/kernel/model"
)

type Catalogs struct {
	RideTypes     Catalog[RideTypeDef]
	SmallScenery  Catalog[SceneryDef]
	Footpaths     Catalog[FootpathDef]
	PathAdditions Catalog[PathAdditionDef]
	Walls         Catalog[WallDef]
}

// Catalog is a set of definitions with a stable palette: index i is the i-th
// id in sorted order, and that index is what tile elements store.
type Catalog[T Def] struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]T
	PaletteDigest string
	DefsDigest    string
}

type Def interface {
	Key() string
}

func (c *Catalog[T]) ByIndex(i uint16) (T, bool) {
	var zero T
	if int(i) >= len(c.Palette) {
		return zero, false
	}
	d, ok := c.Defs[c.Palette[i]]
	return d, ok
}

type RideTypeDef struct {
	ID string `json:"id"`
	// MaxSupportHeight limits half the gap between ground and track.
	MaxSupportHeight       int  `json:"max_support_height"`
	SupportsLevelCrossings bool `json:"supports_level_crossings,omitempty"`
	NeedsWater             bool `json:"needs_water,omitempty"`
}

func (d RideTypeDef) Key() string { return d.ID }

type SceneryDef struct {
	ID           string      `json:"id"`
	IsTree       bool        `json:"is_tree,omitempty"`
	RemovalPrice model.Money `json:"removal_price"`
}

func (d SceneryDef) Key() string { return d.ID }

type FootpathDef struct {
	ID string `json:"id"`
	// QueueOnly surfaces may not be placed as plain paths.
	QueueOnly bool `json:"queue_only,omitempty"`
}

func (d FootpathDef) Key() string { return d.ID }

type PathAdditionDef struct {
	ID string `json:"id"`
	// QueueOnly additions are reset when the path stops being a queue.
	QueueOnly bool `json:"queue_only,omitempty"`
}

func (d PathAdditionDef) Key() string { return d.ID }

type WallDef struct {
	ID string `json:"id"`
}

func (d WallDef) Key() string { return d.ID }

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadCatalog(filepath.Join(configDir, "ride_types.json"), &c.RideTypes); err != nil {
		return nil, err
	}
	if err := loadCatalog(filepath.Join(configDir, "small_scenery.json"), &c.SmallScenery); err != nil {
		return nil, err
	}
	if err := loadCatalog(filepath.Join(configDir, "footpaths.json"), &c.Footpaths); err != nil {
		return nil, err
	}
	if err := loadCatalog(filepath.Join(configDir, "path_additions.json"), &c.PathAdditions); err != nil {
		return nil, err
	}
	if err := loadCatalog(filepath.Join(configDir, "walls.json"), &c.Walls); err != nil {
		return nil, err
	}
	return &c, nil
}

// New builds catalogs from in-memory definitions.
func New(rides []RideTypeDef, scenery []SceneryDef, paths []FootpathDef, additions []PathAdditionDef, walls []WallDef) (*Catalogs, error) {
	var c Catalogs
	for _, step := range []func() error{
		func() error { return buildCatalog("ride_types", rides, &c.RideTypes) },
		func() error { return buildCatalog("small_scenery", scenery, &c.SmallScenery) },
		func() error { return buildCatalog("footpaths", paths, &c.Footpaths) },
		func() error { return buildCatalog("path_additions", additions, &c.PathAdditions) },
		func() error { return buildCatalog("walls", walls, &c.Walls) },
	} {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// Digests names every catalog digest, for snapshots and the index.
func (c *Catalogs) Digests() map[string]string {
	return map[string]string{
		"ride_types":     c.RideTypes.DefsDigest,
		"small_scenery":  c.SmallScenery.DefsDigest,
		"footpaths":      c.Footpaths.DefsDigest,
		"path_additions": c.PathAdditions.DefsDigest,
		"walls":          c.Walls.DefsDigest,
	}
}

func (c *Catalogs) RideType(i uint16) (RideTypeDef, bool) { return c.RideTypes.ByIndex(i) }

func (c *Catalogs) Scenery(i uint16) (SceneryDef, bool) { return c.SmallScenery.ByIndex(i) }

func (c *Catalogs) Footpath(i uint8) (FootpathDef, bool) { return c.Footpaths.ByIndex(uint16(i)) }

// PathAddition takes the element encoding: 0 is none, otherwise index+1.
func (c *Catalogs) PathAddition(a uint8) (PathAdditionDef, bool) {
	if a == 0 {
		return PathAdditionDef{}, false
	}
	return c.PathAdditions.ByIndex(uint16(a - 1))
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadCatalog[T Def](path string, out *Catalog[T]) error {
	name := filepath.Base(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var defs []T
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := buildCatalog(name, defs, out); err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)
	return nil
}

func buildCatalog[T Def](name string, defs []T, out *Catalog[T]) error {
	out.Defs = make(map[string]T, len(defs))
	for _, d := range defs {
		id := d.Key()
		if id == "" {
			return fmt.Errorf("%s: empty id", name)
		}
		if _, dup := out.Defs[id]; dup {
			return fmt.Errorf("%s: duplicate id %q", name, id)
		}
		out.Defs[id] = d
	}
	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	defsJSON, _ := json.Marshal(defs)
	out.DefsDigest = sha256Hex(defsJSON)
	return nil
}
