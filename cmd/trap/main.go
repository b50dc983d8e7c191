// Command trap watches a camera and saves a snapshot whenever consecutive
// frames differ by enough edges.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/trapcam/internal/camera"
	"github.com/banshee-data/trapcam/internal/config"
	"github.com/banshee-data/trapcam/internal/db"
	"github.com/banshee-data/trapcam/internal/fsutil"
	"github.com/banshee-data/trapcam/internal/monitoring"
	"github.com/banshee-data/trapcam/internal/output"
	"github.com/banshee-data/trapcam/internal/pipeline"
	"github.com/banshee-data/trapcam/internal/timeutil"
	"github.com/banshee-data/trapcam/internal/version"
)

var (
	configPath  = flag.String("config", config.DefaultConfigPath, "Path to the JSON settings file")
	dbPath      = flag.String("db", "trap_events.db", "SQLite event database (empty disables)")
	adminListen = flag.String("admin-listen", "", "Serve /debug/ admin routes on this address (e.g. localhost:8090)")
	replayDir   = flag.String("replay", "", "Replay still images from this directory instead of opening the camera")
	debug       = flag.Bool("debug", false, "Enable diagnostic logging")
	trace       = flag.Bool("trace", false, "Enable per-frame trace logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("trap"))
		return
	}

	monitoring.NewLogWriters(os.Stderr, *debug || *trace, *trace).
		Apply(camera.SetLogWriters, pipeline.SetLogWriters)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.Printf("%s starting with %s", version.String("trap"), *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cam := newCamera(cfg, *replayDir)
	var reset func(context.Context) error
	if id := cfg.GetResetID(); id != "" && *replayDir == "" {
		reset = func(ctx context.Context) error { return camera.ResetDevice(ctx, id) }
		if err := reset(ctx); err != nil {
			log.Printf("startup camera reset failed: %v", err)
		}
	}

	opts := pipeline.Options{
		Camera: cam,
		Config: cfg,
		Saver:  output.NewSaver(fsutil.OSFileSystem{}, cfg.GetEncoding(), cfg.GetJPEGQuality()),
		Reset:  reset,
	}

	var events *db.DB
	if *dbPath != "" {
		events, err = db.Open(*dbPath)
		if err != nil {
			log.Fatalf("failed to open event database: %v", err)
		}
		defer events.Close()
		opts.Events = events
		opts.Summaries = events
	}

	p, err := pipeline.New(opts)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}

	var wg sync.WaitGroup
	if *adminListen != "" {
		mux := http.NewServeMux()
		p.AttachAdminRoutes(mux)
		if events != nil {
			if err := events.AttachAdminRoutes(mux); err != nil {
				log.Fatalf("failed to attach database routes: %v", err)
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveAdmin(ctx, *adminListen, mux)
		}()
	}

	err = p.Run(ctx)
	stop()
	wg.Wait()

	switch {
	case errors.Is(err, pipeline.ErrCaptureTimeout):
		log.Printf("capture stalled, exiting so the supervisor can restart us: %v", err)
		os.Exit(1)
	case err != nil:
		log.Fatalf("pipeline failed: %v", err)
	}
	log.Printf("shutdown complete")
}

// newCamera opens the configured device, or a replay of dir when set.
func newCamera(cfg *config.Config, dir string) camera.Camera {
	s := camera.Settings{
		Device:    cfg.GetDevice(),
		Width:     cfg.GetWidth(),
		Height:    cfg.GetHeight(),
		Format:    cfg.GetPixelFormat(),
		FrameRate: cfg.GetFrameRate(),
	}
	if dir != "" {
		log.Printf("replaying images from %s at %d fps", dir, s.FrameRate)
		return camera.NewReplay(fsutil.OSFileSystem{}, dir, s, timeutil.RealClock{})
	}
	log.Printf("capturing %s %dx%d %s at %d fps", s.Device, s.Width, s.Height, s.Format, s.FrameRate)
	return camera.NewV4L2(s)
}

func serveAdmin(ctx context.Context, addr string, h http.Handler) {
	server := &http.Server{Addr: addr, Handler: h}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("admin server failed: %v", err)
		}
	}()
	log.Printf("admin routes on http://%s/debug/", addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("admin server shutdown error: %v", err)
		server.Close()
	}
}
