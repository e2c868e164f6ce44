package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	persistlog "wurmexport.ai/internal/persistence/log"
	"wurmexport.ai/internal/sim/catalogs"
	"wurmexport.ai/internal/sim/tuning"
)

func TestSQLiteIndex_RecordExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.UpsertCatalogs(catalogs.Empty(), tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalogs: %v", err)
	}
	for i := 0; i < 4; i++ {
		_ = idx.WriteTile(persistlog.TileLogEntry{RunID: "r1", Seq: i, TileX: i % 2, TileY: i / 2, Missing: i == 3, Cells: map[string]int{"GRASS": 10}})
	}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	idx.RecordExport(ExportRow{
		RunID:         "r1",
		WorldID:       "island",
		MapDir:        "/maps/island",
		Mode:          "unscaled",
		SizeExponent:  10,
		TilesTotal:    4,
		TilesDone:     4,
		Digest:        "abc",
		Status:        "completed",
		StartedAt:     now,
		FinishedAt:    now.Add(time.Second),
		Unsupported:   []MaterialCount{{ID: 9, Name: "Stationary Water", Count: 12}},
		IgnoredLayers: []LayerRef{{ID: "annotations", Name: "Annotations"}},
	})
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var (
		status  string
		exp     int
		done    int
		digest  string
		cropped int
	)
	row := db.QueryRow(`SELECT status,size_exponent,tiles_done,digest,cropped FROM exports WHERE run_id='r1'`)
	if err := row.Scan(&status, &exp, &done, &digest, &cropped); err != nil {
		t.Fatalf("Scan export: %v", err)
	}
	if status != "completed" || exp != 10 || done != 4 || digest != "abc" || cropped != 0 {
		t.Fatalf("export row mismatch: %s %d %d %s %d", status, exp, done, digest, cropped)
	}

	var name string
	var count int
	if err := db.QueryRow(`SELECT name,count FROM unsupported_materials WHERE run_id='r1' AND material=9`).Scan(&name, &count); err != nil {
		t.Fatalf("Scan material: %v", err)
	}
	if name != "Stationary Water" || count != 12 {
		t.Fatalf("material row: %s %d", name, count)
	}

	var layers, tiles, missing int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ignored_layers WHERE run_id='r1'`).Scan(&layers); err != nil {
		t.Fatalf("Scan layers: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*), SUM(missing) FROM tiles WHERE run_id='r1'`).Scan(&tiles, &missing); err != nil {
		t.Fatalf("Scan tiles: %v", err)
	}
	if layers != 1 || tiles != 4 || missing != 1 {
		t.Fatalf("counts: layers=%d tiles=%d missing=%d", layers, tiles, missing)
	}

	var catalogRows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM catalogs`).Scan(&catalogRows); err != nil {
		t.Fatalf("Scan catalogs: %v", err)
	}
	if catalogRows != 2 {
		t.Fatalf("catalog rows=%d want 2", catalogRows)
	}
}

func TestSQLiteIndex_DropsTilesWhenFull(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	_ = s.WriteTile(persistlog.TileLogEntry{Seq: 1})
	_ = s.WriteTile(persistlog.TileLogEntry{Seq: 2})

	st := s.Stats()
	if st.DropTileTotal != 1 {
		t.Fatalf("DropTileTotal=%d want=1", st.DropTileTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}
