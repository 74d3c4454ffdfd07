package worldtest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDirIsAnchoredToModule(t *testing.T) {
	if !filepath.IsAbs(ConfigDir) {
		t.Fatalf("config dir %q should not depend on the test's working directory", ConfigDir)
	}
	for _, name := range []string{"tuning.yaml", "footpaths.json", "ride_types.json"} {
		if _, err := os.Stat(filepath.Join(ConfigDir, name)); err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
	}
}
