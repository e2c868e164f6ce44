package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	persistlog "wurmexport.ai/internal/persistence/log"
	"wurmexport.ai/internal/sim/catalogs"
	"wurmexport.ai/internal/sim/tuning"
)

// SQLiteIndex is a queryable read-model of export runs. Writes go through a
// single writer goroutine; tile rows are dropped when it falls behind.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTiles atomic.Uint64
}

type reqKind int

const (
	reqTile reqKind = iota + 1
	reqExport
)

type req struct {
	kind reqKind

	tile   persistlog.TileLogEntry
	export ExportRow
}

// ExportRow summarizes one export run.
type ExportRow struct {
	RunID        string
	WorldID      string
	MapDir       string
	Mode         string
	SizeExponent int
	Cropped      bool
	TilesTotal   int
	TilesDone    int
	Digest       string
	Status       string // completed | cancelled | failed
	StartedAt    time.Time
	FinishedAt   time.Time

	Unsupported   []MaterialCount
	IgnoredLayers []LayerRef
}

type MaterialCount struct {
	ID    int
	Name  string
	Count int
}

type LayerRef struct {
	ID   string
	Name string
}

type Stats struct {
	DropTileTotal uint64
	QueueDepth    int
	QueueCapacity int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS exports (
			run_id TEXT PRIMARY KEY,
			world_id TEXT NOT NULL,
			map_dir TEXT NOT NULL,
			mode TEXT NOT NULL,
			size_exponent INTEGER NOT NULL,
			cropped INTEGER NOT NULL,
			tiles_total INTEGER NOT NULL,
			tiles_done INTEGER NOT NULL,
			digest TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS unsupported_materials (
			run_id TEXT NOT NULL,
			material INTEGER NOT NULL,
			name TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, material)
		);`,
		`CREATE TABLE IF NOT EXISTS ignored_layers (
			run_id TEXT NOT NULL,
			layer_id TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (run_id, layer_id)
		);`,
		`CREATE TABLE IF NOT EXISTS tiles (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			tile_x INTEGER NOT NULL,
			tile_y INTEGER NOT NULL,
			missing INTEGER NOT NULL,
			micros INTEGER NOT NULL,
			cells_json TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tiles_pos ON tiles(run_id, tile_y, tile_x);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains queued writes and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		DropTileTotal: s.dropTiles.Load(),
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
	}
}

func (s *SQLiteIndex) WriteTile(entry persistlog.TileLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTile, tile: entry}:
	default:
		// The JSONL tile log remains the source of truth.
		s.dropTiles.Add(1)
	}
	return nil
}

// RecordExport queues the run summary. Unlike tile rows it is never dropped.
func (s *SQLiteIndex) RecordExport(r ExportRow) {
	if s == nil || s.closed.Load() || r.RunID == "" {
		return
	}
	s.ch <- req{kind: reqExport, export: r}
}

// UpsertCatalogs stores the terrain catalog and the tuning actually applied.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if cats != nil {
		custom := cats.Terrains.Custom
		if custom == nil {
			custom = []catalogs.CustomTerrainDef{}
		}
		if b, _ := json.Marshal(custom); len(b) > 0 {
			rows = append(rows, kv{name: "terrains", digest: cats.Terrains.Digest, json: b})
		}
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTile, _ := s.db.Prepare(`INSERT OR REPLACE INTO tiles(run_id,seq,tile_x,tile_y,missing,micros,cells_json) VALUES(?,?,?,?,?,?,?)`)
	insertExport, _ := s.db.Prepare(`INSERT OR REPLACE INTO exports(run_id,world_id,map_dir,mode,size_exponent,cropped,tiles_total,tiles_done,digest,status,started_at,finished_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertMaterial, _ := s.db.Prepare(`INSERT OR REPLACE INTO unsupported_materials(run_id,material,name,count) VALUES(?,?,?,?)`)
	insertLayer, _ := s.db.Prepare(`INSERT OR REPLACE INTO ignored_layers(run_id,layer_id,name) VALUES(?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTile, insertExport, insertMaterial, insertLayer} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTile:
			e := r.tile
			cells, _ := json.Marshal(e.Cells)
			if insertTile != nil {
				if _, err := tx.Stmt(insertTile).Exec(e.RunID, e.Seq, e.TileX, e.TileY, boolInt(e.Missing), e.Micros, string(cells)); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqExport:
			ex := r.export
			if insertExport != nil {
				if _, err := tx.Stmt(insertExport).Exec(
					ex.RunID,
					ex.WorldID,
					ex.MapDir,
					ex.Mode,
					ex.SizeExponent,
					boolInt(ex.Cropped),
					ex.TilesTotal,
					ex.TilesDone,
					ex.Digest,
					ex.Status,
					ex.StartedAt.UTC().Format(time.RFC3339Nano),
					ex.FinishedAt.UTC().Format(time.RFC3339Nano),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
			for _, m := range ex.Unsupported {
				if insertMaterial == nil {
					break
				}
				if _, err := tx.Stmt(insertMaterial).Exec(ex.RunID, m.ID, m.Name, m.Count); err != nil {
					rollback()
					break
				}
				opCount++
			}
			for _, l := range ex.IgnoredLayers {
				if insertLayer == nil || tx == nil {
					break
				}
				if _, err := tx.Stmt(insertLayer).Exec(ex.RunID, l.ID, l.Name); err != nil {
					rollback()
					break
				}
				opCount++
			}
			// Run summaries are rare; make them visible right away.
			commit()
			continue
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
