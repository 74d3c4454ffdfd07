package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"parkcraft.ai/internal/persistence/indexdb"
)

// openRuntimeIndex picks the read-model backend from PC_INDEX_BACKEND:
// sqlite (default, per world), postgres (PC_INDEX_POSTGRES_DSN) or none.
func openRuntimeIndex(worldDir string, disableDB bool) (*indexdb.Index, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("PC_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(worldDir, "index", "park.sqlite"))
	case "postgres":
		dsn := strings.TrimSpace(os.Getenv("PC_INDEX_POSTGRES_DSN"))
		if dsn == "" {
			return nil, fmt.Errorf("PC_INDEX_BACKEND=postgres but PC_INDEX_POSTGRES_DSN is empty")
		}
		return indexdb.OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported PC_INDEX_BACKEND: %s", backend)
	}
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
