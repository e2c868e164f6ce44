package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wurmexport.ai/internal/persistence/indexdb"
)

// openIndex opens the export run index selected by WX_INDEX_BACKEND
// (sqlite by default). A nil index means indexing is off.
func openIndex(outDir string, disableDB bool) (*indexdb.SQLiteIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("WX_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(filepath.Join(outDir, "index", "exports.sqlite"))
	default:
		return nil, fmt.Errorf("unsupported WX_INDEX_BACKEND: %s", backend)
	}
}
