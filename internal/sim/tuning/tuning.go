package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"parkcraft.ai/internal/sim/world/kernel/model"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`

	Map     MapTuning    `yaml:"map"`
	Heights HeightLimits `yaml:"heights"`
	Park    ParkTuning   `yaml:"park"`

	EditorMode bool   `yaml:"editor_mode"`
	Cheats     Cheats `yaml:"cheats"`
}

type MapTuning struct {
	Size        int   `yaml:"size"`
	MaxElements int   `yaml:"max_elements"`
	BaseHeight  int   `yaml:"base_height"`
	WaterHeight int   `yaml:"water_height"`
	Seed        int64 `yaml:"seed"`

	HillGrid         int    `yaml:"hill_grid"`
	HillProbPermille uint64 `yaml:"hill_prob_permille"`
	HillMaxSteps     int    `yaml:"hill_max_steps"`
}

// HeightLimits are inclusive bounds in height units.
type HeightLimits struct {
	LandMin     int `yaml:"land_min"`
	LandMax     int `yaml:"land_max"`
	WaterMin    int `yaml:"water_min"`
	WaterMax    int `yaml:"water_max"`
	FootpathMin int `yaml:"footpath_min"`
	FootpathMax int `yaml:"footpath_max"`
}

type ParkTuning struct {
	Cash                    model.Money `yaml:"cash"`
	LandPrice               model.Money `yaml:"land_price"`
	ConstructionRightsPrice model.Money `yaml:"construction_rights_price"`

	NoMoney                bool `yaml:"no_money"`
	ForbidLandscapeChanges bool `yaml:"forbid_landscape_changes"`
	ForbidTreeRemoval      bool `yaml:"forbid_tree_removal"`

	// OwnedMargin: tiles at least this far from the map edge start owned,
	// the rest start for sale.
	OwnedMargin int `yaml:"owned_margin"`
}

type Cheats struct {
	Sandbox                bool `yaml:"sandbox"`
	DisableClearanceChecks bool `yaml:"disable_clearance_checks"`
	DisableSupportLimits   bool `yaml:"disable_support_limits"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         20,
		SnapshotEveryTicks: 3000,
		Map: MapTuning{
			Size:        128,
			MaxElements: 196096,
			BaseHeight:  14,
		},
		Heights: HeightLimits{
			LandMin:     2,
			LandMax:     142,
			WaterMin:    2,
			WaterMax:    254,
			FootpathMin: 2,
			FootpathMax: 248,
		},
		Park: ParkTuning{
			Cash:                    model.Units(10000, 0),
			LandPrice:               model.Units(20, 0),
			ConstructionRightsPrice: model.Units(10, 0),
			OwnedMargin:             1,
		},
	}
}

// Load reads a tuning file over the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Normalize fills zero values that have no meaningful zero.
func (t *Tuning) Normalize() {
	d := Defaults()
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = d.ProtocolVersion
	}
	if t.TickRateHz <= 0 {
		t.TickRateHz = d.TickRateHz
	}
	if t.SnapshotEveryTicks < 0 {
		t.SnapshotEveryTicks = 0
	}
	if t.Map.Size <= 0 {
		t.Map.Size = d.Map.Size
	}
	if t.Map.MaxElements < 0 {
		t.Map.MaxElements = 0
	}
	if t.Map.BaseHeight&1 != 0 {
		t.Map.BaseHeight++
	}
	if t.Park.OwnedMargin < 1 {
		t.Park.OwnedMargin = 1
	}
}

func (t Tuning) Validate() error {
	if t.Map.Size < 4 || t.Map.Size > 1024 {
		return fmt.Errorf("map.size must be in [4,1024], got %d", t.Map.Size)
	}
	if t.Map.MaxElements > 0 && t.Map.MaxElements < t.Map.Size*t.Map.Size {
		return fmt.Errorf("map.max_elements %d cannot hold one surface per tile", t.Map.MaxElements)
	}
	h := t.Heights
	if h.LandMin < 0 || h.LandMin >= h.LandMax {
		return fmt.Errorf("heights: land_min %d must be below land_max %d", h.LandMin, h.LandMax)
	}
	if h.WaterMin < 0 || h.WaterMin >= h.WaterMax {
		return fmt.Errorf("heights: water_min %d must be below water_max %d", h.WaterMin, h.WaterMax)
	}
	if h.FootpathMin < 0 || h.FootpathMin >= h.FootpathMax {
		return fmt.Errorf("heights: footpath_min %d must be below footpath_max %d", h.FootpathMin, h.FootpathMax)
	}
	if t.Map.BaseHeight < h.LandMin || t.Map.BaseHeight > h.LandMax {
		return fmt.Errorf("map.base_height %d outside land bounds", t.Map.BaseHeight)
	}
	if t.Park.LandPrice < 0 || t.Park.ConstructionRightsPrice < 0 {
		return fmt.Errorf("park prices must not be negative")
	}
	return nil
}
