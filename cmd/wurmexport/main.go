package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"wurmexport.ai/internal/export"
	"wurmexport.ai/internal/persistence/snapshot"
	"wurmexport.ai/internal/sim/catalogs"
	"wurmexport.ai/internal/sim/source"
	"wurmexport.ai/internal/sim/tuning"
	"wurmexport.ai/internal/transport/progress"
)

func main() {
	var (
		worldPath  = flag.String("world", "", "path to the source world file (.world.zst)")
		outDir     = flag.String("out", "./maps", "directory that receives the map directory")
		mapName    = flag.String("name", "", "map directory name (default: world id)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to export.yaml (default: <configs>/export.yaml)")
		scaling    = flag.String("scaling", "", "override scaling_mode: unscaled | horizontal | vertical")
		workers    = flag.Int("workers", 0, "override worker count (0 keeps the configured value)")
		disableDB  = flag.Bool("disable_db", false, "do not record the run in the export index")
		listen     = flag.String("progress_listen", "127.0.0.1:8091", "loopback websocket progress address (empty to disable)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[wurmexport] ", log.LstdFlags|log.Lmicroseconds)

	if strings.TrimSpace(*worldPath) == "" {
		fmt.Fprintln(os.Stderr, "missing -world")
		os.Exit(2)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "export.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if *scaling != "" {
		tune.ScalingMode = strings.ToLower(strings.TrimSpace(*scaling))
	}
	if *workers > 0 {
		tune.Workers = *workers
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	snap, err := snapshot.ReadWorld(*worldPath)
	if err != nil {
		logger.Fatalf("read world: %v", err)
	}
	w, err := source.FromSnapshot(snap)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	worldID := snap.Header.WorldID
	if worldID == "" {
		worldID = strings.TrimSuffix(filepath.Base(*worldPath), ".world.zst")
	}
	name := strings.TrimSpace(*mapName)
	if name == "" {
		name = worldID
	}

	idx, err := openIndex(*outDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	opts := export.Options{
		Tuning:   tune,
		Logger:   logger,
		Catalogs: cats,
		WorldID:  worldID,
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		opts.Index = idx
	}

	ctx, cancel := signalContext()
	defer cancel()

	var prog *progress.Server
	if addr := strings.TrimSpace(*listen); addr != "" {
		prog = progress.NewServer(logger)
		stop, err := serveProgress(addr, prog, logger)
		if err != nil {
			logger.Fatalf("progress listener: %v", err)
		}
		defer stop()
		opts.Progress = prog
	}

	ex := export.New(w, opts)
	if prog != nil {
		prog.SetRunID(ex.RunID())
	}
	rep, err := ex.Export(ctx, *outDir, name)
	if prog != nil {
		prog.Finish(status(err), rep.Digest)
	}
	if err != nil {
		logger.Printf("export: %v", err)
		if idx != nil {
			_ = idx.Close()
		}
		os.Exit(exitCode(err))
	}
	logger.Printf("map written to %s (exponent %d, digest %s)", rep.MapDir, rep.SizeExponent(), rep.Digest)
}

func status(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, export.ErrCancelled):
		return "cancelled"
	default:
		return "failed"
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, export.ErrConfiguration):
		return 2
	case errors.Is(err, export.ErrCancelled):
		return 130
	default:
		return 1
	}
}

func serveProgress(addr string, s *progress.Server, logger *log.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/progress", s.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("progress listener: %v", err)
		}
	}()
	logger.Printf("progress on ws://%s/v1/progress", ln.Addr())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
