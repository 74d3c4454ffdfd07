package catalogs

import (
	"path/filepath"
	"testing"

	"parkcraft.ai/internal/sim/world/kernel/model"
)

func TestLoadRepoCatalogs(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	i, ok := c.SmallScenery.Index["TREE_OAK"]
	if !ok {
		t.Fatalf("missing TREE_OAK")
	}
	def, ok := c.Scenery(i)
	if !ok || !def.IsTree || def.RemovalPrice != model.Units(1, 50) {
		t.Fatalf("unexpected scenery def: %+v", def)
	}
	rt, ok := c.RideType(c.RideTypes.Index["MINIATURE_RAILWAY"])
	if !ok || !rt.SupportsLevelCrossings {
		t.Fatalf("unexpected ride type: %+v", rt)
	}
	for name, d := range c.Digests() {
		if len(d) != 64 {
			t.Fatalf("digest %s has bad length", name)
		}
	}
}

func TestPaletteIsSorted(t *testing.T) {
	c, err := New(nil, []SceneryDef{{ID: "B"}, {ID: "A"}}, nil, []PathAdditionDef{{ID: "LAMP"}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.SmallScenery.Palette[0] != "A" || c.SmallScenery.Index["B"] != 1 {
		t.Fatalf("unexpected palette: %v", c.SmallScenery.Palette)
	}
	if _, ok := c.PathAddition(0); ok {
		t.Fatalf("addition 0 means none")
	}
	if d, ok := c.PathAddition(1); !ok || d.ID != "LAMP" {
		t.Fatalf("unexpected addition: %+v", d)
	}
	if _, ok := c.Scenery(9); ok {
		t.Fatalf("expected out of range lookup to fail")
	}
}

func TestDuplicateIDsRejected(t *testing.T) {
	if _, err := New(nil, nil, []FootpathDef{{ID: "TARMAC"}, {ID: "TARMAC"}}, nil, nil); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
