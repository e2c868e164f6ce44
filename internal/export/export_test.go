package export

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wurmexport.ai/internal/persistence/indexdb"
	persistlog "wurmexport.ai/internal/persistence/log"
	"wurmexport.ai/internal/persistence/mapfile"
	"wurmexport.ai/internal/sim/catalogs"
	"wurmexport.ai/internal/sim/raster"
	"wurmexport.ai/internal/sim/source"
	"wurmexport.ai/internal/sim/source/gen"
	"wurmexport.ai/internal/sim/terrain"
	"wurmexport.ai/internal/sim/tiles"
	"wurmexport.ai/internal/sim/tuning"
)

type recorder struct {
	fractions []float64
	cancelAt  int
	cancel    chan struct{}
}

func (r *recorder) SetProgress(f float64) {
	r.fractions = append(r.fractions, f)
	if r.cancel != nil && r.cancelAt > 0 && len(r.fractions) == r.cancelAt {
		close(r.cancel)
	}
}

func (r *recorder) Cancelled() <-chan struct{} { return r.cancel }

type memIndex struct {
	tiles []persistlog.TileLogEntry
	rows  []indexdb.ExportRow
}

func (m *memIndex) WriteTile(e persistlog.TileLogEntry) error {
	m.tiles = append(m.tiles, e)
	return nil
}

func (m *memIndex) RecordExport(r indexdb.ExportRow) { m.rows = append(m.rows, r) }

type brokenIndex struct{ memIndex }

func (b *brokenIndex) WriteTile(persistlog.TileLogEntry) error { return errors.New("disk full") }

func fixedNow() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func smallWorld(seed int64) *source.GridWorld {
	p := gen.DefaultParams(seed)
	p.WidthTiles, p.HeightTiles = 2, 2
	return gen.Generate(p)
}

func TestPlanWindow(t *testing.T) {
	for _, tc := range []struct {
		name    string
		b       source.Bounds
		mode    raster.Mode
		exp     int
		cropped bool
		tx, ty  int
	}{
		{"one tile uses the minimum", source.Bounds{Width: 1, Height: 1}, raster.Unscaled, 10, false, 1, 1},
		{"sixteen tiles fill 2048", source.Bounds{Width: 16, Height: 3}, raster.Unscaled, 11, false, 16, 3},
		{"too wide is cropped", source.Bounds{Width: 300, Height: 2}, raster.Unscaled, 15, true, 256, 2},
		{"horizontal shrinks four times", source.Bounds{Width: 300, Height: 2}, raster.HorizontalScaled, 14, false, 300, 2},
		{"vertical keeps the edge", source.Bounds{LowX: -4, Width: 9, Height: 9}, raster.VerticalScaled, 11, false, 9, 9},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w, err := PlanWindow(tc.b, tc.mode, tuning.HardMinSizeExponent, tuning.HardMaxSizeExponent)
			if err != nil {
				t.Fatalf("PlanWindow: %v", err)
			}
			if w.SizeExponent != tc.exp || w.Cropped != tc.cropped || w.TilesX != tc.tx || w.TilesY != tc.ty {
				t.Fatalf("window = %+v", w)
			}
			if w.LowX != tc.b.LowX || w.LowY != tc.b.LowY {
				t.Fatalf("origin = (%d,%d)", w.LowX, w.LowY)
			}
		})
	}
	if _, err := PlanWindow(source.Bounds{Width: 0, Height: 4}, raster.Unscaled, 10, 15); err == nil {
		t.Fatalf("expected error for empty bounds")
	}
}

func TestWindowPositionsRowMajor(t *testing.T) {
	w := Window{LowX: 5, LowY: -1, TilesX: 2, TilesY: 2}
	got := w.Positions()
	want := [][2]int{{5, -1}, {6, -1}, {5, 0}, {6, 0}}
	if len(got) != len(want) {
		t.Fatalf("positions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("positions = %v want %v", got, want)
		}
	}
}

func TestErrorMatching(t *testing.T) {
	err := configError("tuning", errors.New("bad"))
	if !errors.Is(err, ErrConfiguration) || errors.Is(err, ErrResource) {
		t.Fatalf("config error matching: %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeConfig || e.Op != "tuning" {
		t.Fatalf("As = %+v", e)
	}
	if !errors.Is(resourceError("save", os.ErrPermission), os.ErrPermission) {
		t.Fatalf("resource error does not unwrap")
	}
}

func TestExportWritesMap(t *testing.T) {
	base := t.TempDir()
	w := smallWorld(7)
	prog := &recorder{}
	idx := &memIndex{}
	tune := tuning.Defaults()
	tune.TileLog = true

	ex := New(w, Options{Tuning: tune, Progress: prog, Index: idx, WorldID: "seed-7", RunID: "run-1", Now: fixedNow})
	rep, err := ex.Export(context.Background(), base, "island")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if rep.TilesTotal != 4 || rep.TilesProcessed != 4 || rep.TilesMissing != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.SizeExponent() != 10 || rep.Cropped() || rep.BackupDir != "" {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Digest == "" {
		t.Fatalf("empty digest")
	}

	m, err := mapfile.Read(filepath.Join(base, "island"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.Digest() != rep.Digest {
		t.Fatalf("saved digest %s != report %s", m.Digest(), rep.Digest)
	}
	hist := m.Histogram()
	if hist[tiles.Hole] != 1024*1024-256*256 {
		t.Fatalf("cells outside the window = %d", hist[tiles.Hole])
	}

	if len(prog.fractions) == 0 || prog.fractions[len(prog.fractions)-1] != 1 {
		t.Fatalf("progress = %v", prog.fractions)
	}
	for i := 1; i < len(prog.fractions); i++ {
		if prog.fractions[i] < prog.fractions[i-1] {
			t.Fatalf("progress went backwards: %v", prog.fractions)
		}
	}

	if len(idx.tiles) != 4 {
		t.Fatalf("indexed %d tiles", len(idx.tiles))
	}
	for i, e := range idx.tiles {
		if e.Seq != i || e.RunID != "run-1" {
			t.Fatalf("tile entry %d = %+v", i, e)
		}
	}
	if len(idx.rows) != 1 || idx.rows[0].Status != "completed" || idx.rows[0].Digest != rep.Digest || idx.rows[0].WorldID != "seed-7" {
		t.Fatalf("rows = %+v", idx.rows)
	}

	logPath := filepath.Join(base, "island", "logs", "tiles-run-1.jsonl.zst")
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("tile log: %v", err)
	}
}

func TestExportIsIndependentOfWorkerCount(t *testing.T) {
	w := smallWorld(31)
	var digests []string
	for _, workers := range []int{1, 4} {
		tune := tuning.Defaults()
		tune.Workers = workers
		rep, err := New(w, Options{Tuning: tune}).Export(context.Background(), t.TempDir(), "m")
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		digests = append(digests, rep.Digest)
	}
	if digests[0] != digests[1] {
		t.Fatalf("digests differ: %v", digests)
	}
}

func TestExportHorizontalMode(t *testing.T) {
	tune := tuning.Defaults()
	tune.ScalingMode = tuning.ScalingHorizontal
	rep, err := New(smallWorld(3), Options{Tuning: tune}).Export(context.Background(), t.TempDir(), "m")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if rep.Mode != raster.HorizontalScaled || rep.TilesProcessed != 4 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestExportMovesExistingMap(t *testing.T) {
	base := t.TempDir()
	dest := filepath.Join(base, "island")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "old.txt"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	tune := tuning.Defaults()
	tune.BackupDir = filepath.Join(base, "backups")
	rep, err := New(smallWorld(5), Options{Tuning: tune, Now: fixedNow}).Export(context.Background(), base, "island")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := filepath.Join(base, "backups", "island.20240501120000")
	if rep.BackupDir != want {
		t.Fatalf("backup = %s want %s", rep.BackupDir, want)
	}
	if _, err := os.Stat(filepath.Join(want, "old.txt")); err != nil {
		t.Fatalf("backup contents: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "old.txt")); !os.IsNotExist(err) {
		t.Fatalf("old file still in destination: %v", err)
	}
}

func TestExportRefusesExistingMapWithoutBackups(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "island"), 0o755); err != nil {
		t.Fatal(err)
	}
	tune := tuning.Defaults()
	tune.DisableBackups = true
	_, err := New(smallWorld(5), Options{Tuning: tune}).Export(context.Background(), base, "island")
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v want configuration error", err)
	}
}

func TestExportBackupFailureIsResourceError(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "island"), 0o755); err != nil {
		t.Fatal(err)
	}
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	tune := tuning.Defaults()
	tune.BackupDir = filepath.Join(blocker, "backups")
	_, err := New(smallWorld(5), Options{Tuning: tune}).Export(context.Background(), base, "island")
	if !errors.Is(err, ErrResource) {
		t.Fatalf("err = %v want resource error", err)
	}
}

func TestExportConfigurationErrors(t *testing.T) {
	w := smallWorld(1)
	bad := tuning.Defaults()
	bad.ScalingMode = "sideways"
	if _, err := New(w, Options{Tuning: bad}).Export(context.Background(), t.TempDir(), "m"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("bad mode: %v", err)
	}
	if _, err := New(w, Options{Tuning: tuning.Defaults()}).Export(context.Background(), t.TempDir(), " "); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("empty name: %v", err)
	}
	empty := source.NewGridWorld(1, 0, 10, source.Bounds{})
	if _, err := New(empty, Options{Tuning: tuning.Defaults()}).Export(context.Background(), t.TempDir(), "m"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("empty world: %v", err)
	}
}

func TestExportCancelledBetweenTiles(t *testing.T) {
	base := t.TempDir()
	// The first call reports 0, the second finishes tile one.
	prog := &recorder{cancelAt: 2, cancel: make(chan struct{})}
	idx := &memIndex{}
	rep, err := New(smallWorld(9), Options{Tuning: tuning.Defaults(), Progress: prog, Index: idx}).
		Export(context.Background(), base, "island")
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v want cancelled", err)
	}
	if rep.TilesProcessed != 1 || rep.Digest != "" {
		t.Fatalf("report = %+v", rep)
	}
	if _, err := mapfile.ReadHeader(filepath.Join(base, "island")); err == nil {
		t.Fatalf("partial map was saved")
	}
	if len(idx.rows) != 1 || idx.rows[0].Status != "cancelled" {
		t.Fatalf("rows = %+v", idx.rows)
	}
}

func TestExportHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tune := tuning.Defaults()
	tune.Workers = 3
	rep, err := New(smallWorld(9), Options{Tuning: tune}).Export(ctx, t.TempDir(), "m")
	if !errors.Is(err, ErrCancelled) || rep.TilesProcessed != 0 {
		t.Fatalf("err = %v report = %+v", err, rep)
	}
}

func TestExportSkipsMissingTiles(t *testing.T) {
	w := source.NewGridWorld(11, 0, 100, source.Bounds{Width: 2, Height: 1})
	w.AddTile(0, 0).Fill(20, 1, terrain.Grass)
	prog := &recorder{}
	rep, err := New(w, Options{Tuning: tuning.Defaults(), Progress: prog}).Export(context.Background(), t.TempDir(), "m")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if rep.TilesProcessed != 2 || rep.TilesMissing != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if got := prog.fractions[len(prog.fractions)-1]; got != 1 {
		t.Fatalf("final progress = %v", got)
	}
}

func TestExportReportsUnsupportedAndIgnored(t *testing.T) {
	w := source.NewGridWorld(11, 0, 100, source.Bounds{Width: 1, Height: 1})
	tile := w.AddTile(0, 0)
	tile.Fill(20, 1, terrain.Water)
	notes := &source.OtherLayer{LayerID: "notes", LayerName: "Notes"}
	tile.SetLevel(notes, 3, 3, 1)
	tile.SetBit(source.ReadOnly, 0, 0, true)

	idx := &memIndex{}
	rep, err := New(w, Options{Tuning: tuning.Defaults(), Index: idx}).Export(context.Background(), t.TempDir(), "m")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(rep.UnsupportedMaterials) != 1 || rep.UnsupportedMaterials[0] != 9 || rep.UnsupportedNames[0] != "Stationary Water" {
		t.Fatalf("unsupported = %v %v", rep.UnsupportedMaterials, rep.UnsupportedNames)
	}
	if len(rep.IgnoredLayers) != 1 || rep.IgnoredLayers[0] != "Notes" {
		t.Fatalf("ignored = %v", rep.IgnoredLayers)
	}
	row := idx.rows[0]
	if len(row.Unsupported) != 1 || row.Unsupported[0].Count == 0 || len(row.IgnoredLayers) != 1 || row.IgnoredLayers[0].ID != "notes" {
		t.Fatalf("row = %+v", row)
	}
}

func TestExportAppliesCatalogNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "terrains.json"), []byte(`{"custom_terrains":[{"custom":5,"name":"W:Tundra"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cats, err := catalogs.Load(dir)
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	slot, _ := terrain.Custom(5)
	w := source.NewGridWorld(11, 0, 100, source.Bounds{Width: 1, Height: 1})
	w.AddTile(0, 0).Fill(20, 1, slot)

	base := t.TempDir()
	if _, err := New(w, Options{Tuning: tuning.Defaults(), Catalogs: cats}).Export(context.Background(), base, "m"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	m, err := mapfile.Read(filepath.Join(base, "m"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := m.SurfaceTile(10, 10); got != tiles.Tundra {
		t.Fatalf("tile = %v want tundra", got)
	}
}

func TestExportLogsIndexWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	idx := &brokenIndex{}
	rep, err := New(smallWorld(13), Options{
		Tuning: tuning.Defaults(),
		Logger: log.New(&buf, "", 0),
		Index:  idx,
	}).Export(context.Background(), t.TempDir(), "m")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if rep.TilesProcessed != 4 {
		t.Fatalf("processed = %d", rep.TilesProcessed)
	}
	if got := strings.Count(buf.String(), "disk full"); got != 4 {
		t.Fatalf("logged %d index failures:\n%s", got, buf.String())
	}
	if !strings.Contains(buf.String(), "index: tile 0: disk full") {
		t.Fatalf("log = %s", buf.String())
	}
	if len(idx.rows) != 1 || idx.rows[0].Status != "completed" {
		t.Fatalf("rows = %+v", idx.rows)
	}
}
