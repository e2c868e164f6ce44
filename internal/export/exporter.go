// Package export drives one conversion of a source world into a target map:
// it sizes the map, moves an existing destination aside, runs the raster
// pipeline over every tile of the export window and saves the result.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"wurmexport.ai/internal/persistence/archive"
	"wurmexport.ai/internal/persistence/indexdb"
	persistlog "wurmexport.ai/internal/persistence/log"
	"wurmexport.ai/internal/persistence/mapfile"
	"wurmexport.ai/internal/sim/catalogs"
	"wurmexport.ai/internal/sim/classify"
	"wurmexport.ai/internal/sim/noise"
	"wurmexport.ai/internal/sim/raster"
	"wurmexport.ai/internal/sim/source"
	"wurmexport.ai/internal/sim/terrain"
	"wurmexport.ai/internal/sim/tuning"
)

// ProgressSink receives a non-decreasing completion fraction in [0,1].
// Cancelled may return nil when the sink never cancels.
type ProgressSink interface {
	SetProgress(fraction float64)
	Cancelled() <-chan struct{}
}

// Index records per-tile statistics and the run summary.
type Index interface {
	WriteTile(entry persistlog.TileLogEntry) error
	RecordExport(r indexdb.ExportRow)
}

type Options struct {
	Tuning   tuning.Tuning
	Logger   *log.Logger
	Progress ProgressSink
	Catalogs *catalogs.Catalogs
	Index    Index

	WorldID string
	// RunID defaults to a random UUID.
	RunID string
	// Home is the fallback backup root; empty means the user's home
	// directory.
	Home string
	Now  func() time.Time
}

type Report struct {
	RunID     string
	MapDir    string
	BackupDir string
	Mode      raster.Mode
	Window    Window

	TilesTotal     int
	TilesProcessed int
	TilesMissing   int

	UnsupportedMaterials []terrain.Material
	UnsupportedNames     []string
	IgnoredLayers        []string

	Digest string
}

// SizeExponent is the target map size exponent.
func (r Report) SizeExponent() int { return r.Window.SizeExponent }

// Cropped reports whether part of the world was left out.
func (r Report) Cropped() bool { return r.Window.Cropped }

type Exporter struct {
	world source.World
	opts  Options
	log   *log.Logger
}

func New(world source.World, opts Options) *Exporter {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Exporter{world: world, opts: opts, log: opts.Logger}
}

func (e *Exporter) RunID() string { return e.opts.RunID }

// Export writes the map into <baseDir>/<name>. On cancellation the partial
// map is not saved and the returned error matches ErrCancelled.
func (e *Exporter) Export(ctx context.Context, baseDir, name string) (Report, error) {
	started := e.opts.Now()
	rep := Report{RunID: e.opts.RunID}

	tune := e.opts.Tuning
	if err := tune.Validate(); err != nil {
		return rep, configError("tuning", err)
	}
	if e.world == nil {
		return rep, configError("source", errors.New("no source world given"))
	}
	if strings.TrimSpace(name) == "" {
		return rep, configError("destination", errors.New("no map name given"))
	}
	params, err := tune.RasterParams()
	if err != nil {
		return rep, configError("tuning", err)
	}
	b := e.world.TileBounds()
	win, err := PlanWindow(b, params.Mode, tune.MinSizeExponent, tune.MaxSizeExponent)
	if err != nil {
		return rep, configError("source", err)
	}
	rep.Mode = params.Mode
	rep.Window = win
	rep.TilesTotal = win.Tiles()
	rep.MapDir = filepath.Join(baseDir, name)
	e.logPlan(b, params.Mode, win)

	if rep.BackupDir, err = e.prepareDestination(baseDir, rep.MapDir); err != nil {
		return rep, err
	}

	if e.opts.Catalogs != nil {
		if n, ok := e.world.(catalogs.Namer); ok {
			for _, t := range e.opts.Catalogs.Apply(n) {
				label, _ := e.opts.Catalogs.CustomName(t)
				e.log.Printf("custom terrain %s named %q from catalog", t, label)
			}
		}
	}

	classifier := classify.New(e.world)
	p := raster.New(e.world, noise.NewFieldSet(e.world.Seed()), classifier, params)

	m, err := mapfile.Create(rep.MapDir, win.SizeExponent)
	if err != nil {
		return rep, configError("map", err)
	}
	defer m.Close()

	var tl *persistlog.TileLogger
	if tune.TileLog {
		tl = persistlog.NewTileLogger(rep.MapDir, rep.RunID)
		defer func() {
			if err := tl.Close(); err != nil {
				e.log.Printf("tile log: %v", err)
			}
		}()
	}

	st, runErr := e.run(ctx, p, m, win, tune.Workers, tl)
	rep.TilesProcessed = st.done
	rep.TilesMissing = st.missing
	rep.UnsupportedMaterials = classifier.Unsupported().IDs()
	rep.UnsupportedNames = classifier.Unsupported().Names()
	rep.IgnoredLayers = ignoredLayers(e.world)

	status := "completed"
	switch {
	case errors.Is(runErr, ErrCancelled):
		status = "cancelled"
	case runErr != nil:
		status = "failed"
	default:
		if err := m.SaveChanges(); err != nil {
			runErr = resourceError("save", err)
			status = "failed"
		} else {
			rep.Digest = m.Digest()
		}
	}

	e.logSummary(rep, status)
	if e.opts.Index != nil {
		e.opts.Index.RecordExport(e.exportRow(rep, status, classifier.Unsupported(), started))
	}
	return rep, runErr
}

func (e *Exporter) logPlan(b source.Bounds, mode raster.Mode, win Window) {
	e.log.Printf("scaling mode: %s", mode)
	e.log.Printf("source size: %dx%d tiles from tile (%d,%d)", b.Width, b.Height, b.LowX, b.LowY)
	e.log.Printf("target size: %dx%d cells (size exponent %d), %dx%d source tiles",
		win.TargetTiles(), win.TargetTiles(), win.SizeExponent, win.TilesX, win.TilesY)
	vs := mode.VScale()
	water := float32(e.world.WaterLevel()) * vs
	e.log.Printf("heights in target units: max %d, bottom %d",
		raster.WurmHeight(float32(e.world.MaxHeight())*vs-water), raster.WurmHeight(-water))
	if win.Cropped {
		e.log.Printf("WARNING: world exceeds the largest map size; only the lowest %dx%d tiles are exported", win.TilesX, win.TilesY)
	}
}

func (e *Exporter) logSummary(rep Report, status string) {
	if len(rep.UnsupportedNames) > 0 {
		e.log.Printf("unsupported materials rendered as %s: %s", classify.DefaultTile, strings.Join(rep.UnsupportedNames, ", "))
	}
	if len(rep.IgnoredLayers) > 0 {
		e.log.Printf("ignored layers: %s", strings.Join(rep.IgnoredLayers, ", "))
	}
	e.log.Printf("export %s %s: %d/%d tiles (%d missing) digest=%s",
		rep.RunID, status, rep.TilesProcessed, rep.TilesTotal, rep.TilesMissing, rep.Digest)
}

// prepareDestination moves an existing map directory into the backup
// directory and returns where it went.
func (e *Exporter) prepareDestination(baseDir, dest string) (string, error) {
	if _, err := os.Stat(dest); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", resourceError("destination", err)
	}
	tune := e.opts.Tuning
	if tune.DisableBackups {
		return "", configError("destination", fmt.Errorf("%s already exists and backups are disabled", dest))
	}
	dir := tune.BackupDir
	if dir == "" {
		home := e.opts.Home
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		var err error
		if dir, err = archive.SelectBackupDir(baseDir, home); err != nil {
			return "", resourceError("backup", err)
		}
	}
	moved, err := archive.BackupDir(dest, dir, e.opts.Now())
	if err != nil {
		return "", resourceError("backup", err)
	}
	e.log.Printf("moved existing map %s to %s", dest, moved)
	return moved, nil
}

// ignoredLayers names the layers decoration does not use, in world order.
func ignoredLayers(w source.World) []string {
	var out []string
	for _, l := range w.AllLayers() {
		if source.Reported(l) {
			out = append(out, l.Name())
		}
	}
	return out
}

func (e *Exporter) exportRow(rep Report, status string, u *classify.UnsupportedSet, started time.Time) indexdb.ExportRow {
	row := indexdb.ExportRow{
		RunID:        rep.RunID,
		WorldID:      e.opts.WorldID,
		MapDir:       rep.MapDir,
		Mode:         rep.Mode.String(),
		SizeExponent: rep.Window.SizeExponent,
		Cropped:      rep.Window.Cropped,
		TilesTotal:   rep.TilesTotal,
		TilesDone:    rep.TilesProcessed,
		Digest:       rep.Digest,
		Status:       status,
		StartedAt:    started,
		FinishedAt:   e.opts.Now(),
	}
	for _, m := range rep.UnsupportedMaterials {
		row.Unsupported = append(row.Unsupported, indexdb.MaterialCount{ID: int(m), Name: m.Name(), Count: u.Count(m)})
	}
	for _, l := range e.world.AllLayers() {
		if source.Reported(l) {
			row.IgnoredLayers = append(row.IgnoredLayers, indexdb.LayerRef{ID: l.ID(), Name: l.Name()})
		}
	}
	return row
}

func (e *Exporter) cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}
	if e.opts.Progress == nil {
		return false
	}
	c := e.opts.Progress.Cancelled()
	if c == nil {
		return false
	}
	select {
	case <-c:
		return true
	default:
		return false
	}
}

func (e *Exporter) setProgress(fraction float64) {
	if e.opts.Progress != nil {
		e.opts.Progress.SetProgress(fraction)
	}
}
