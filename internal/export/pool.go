package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	persistlog "wurmexport.ai/internal/persistence/log"
	"wurmexport.ai/internal/persistence/mapfile"
	"wurmexport.ai/internal/sim/raster"
)

type runStats struct {
	done    int
	missing int
}

type tileJob struct {
	seq     int
	tx, ty  int
	canvas  *raster.TileCanvas
	present bool
	micros  int64
}

// run renders the window's tiles on workers goroutines, each with its own
// Scratch, and applies the finished canvases to m strictly in row-major
// order on the calling goroutine. Cancellation is checked before each tile
// is applied; tiles already being rendered complete but are discarded.
func (e *Exporter) run(ctx context.Context, p *raster.Pipeline, m *mapfile.MapData, win Window, workers int, tl *persistlog.TileLogger) (runStats, error) {
	var st runStats
	positions := win.Positions()
	total := len(positions)
	n := p.Params().Mode.EdgeLength()
	e.setProgress(0)

	// Outstanding tiles are bounded by the canvas pool, so result sends
	// never block.
	free := make(chan *raster.TileCanvas, 2*workers)
	for i := 0; i < cap(free); i++ {
		free <- raster.NewTileCanvas(n)
	}
	jobs := make(chan tileJob)
	results := make(chan tileJob, cap(free))
	stop := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := raster.NewScratch(n)
			for job := range jobs {
				start := time.Now()
				ox, oy := p.Origin(job.tx, job.ty)
				job.canvas.Reset(ox, oy)
				job.present = p.ProcessTile(s, job.canvas, job.tx, job.ty)
				job.micros = time.Since(start).Microseconds()
				results <- job
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i, pos := range positions {
			var c *raster.TileCanvas
			select {
			case c = <-free:
			case <-stop:
				return
			}
			select {
			case jobs <- tileJob{seq: i, tx: pos[0], ty: pos[1], canvas: c}:
			case <-stop:
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	shutdown := func() {
		close(stop)
		for range results {
		}
	}

	pending := map[int]tileJob{}
	for next := 0; next < total; {
		if e.cancelled(ctx) {
			shutdown()
			return st, fmt.Errorf("%w after %d of %d tiles", ErrCancelled, st.done, total)
		}
		job, ok := pending[next]
		if ok {
			delete(pending, next)
		} else {
			job = <-results
			if job.seq != next {
				pending[job.seq] = job
				continue
			}
		}
		if err := e.apply(m, job, tl); err != nil {
			shutdown()
			return st, err
		}
		free <- job.canvas
		st.done++
		if !job.present {
			st.missing++
		}
		next++
		e.setProgress(float64(st.done) / float64(total))
	}
	shutdown()
	return st, nil
}

func (e *Exporter) apply(m *mapfile.MapData, job tileJob, tl *persistlog.TileLogger) error {
	if job.present {
		if err := job.canvas.WriteTo(m); err != nil {
			return resourceError("map", err)
		}
	}
	if tl == nil && e.opts.Index == nil {
		return nil
	}
	entry := persistlog.TileLogEntry{
		RunID:   e.opts.RunID,
		Seq:     job.seq,
		TileX:   job.tx,
		TileY:   job.ty,
		OriginX: job.canvas.OriginX,
		OriginY: job.canvas.OriginY,
		Missing: !job.present,
		Micros:  job.micros,
	}
	if job.present {
		entry.Cells = job.canvas.Histogram()
	}
	if tl != nil {
		if err := tl.WriteTile(entry); err != nil {
			e.log.Printf("tile log: %v", err)
		}
	}
	if e.opts.Index != nil {
		if err := e.opts.Index.WriteTile(entry); err != nil {
			e.log.Printf("index: tile %d: %v", job.seq, err)
		}
	}
	return nil
}
