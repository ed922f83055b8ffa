package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/airdraw/internal/app"
	"github.com/ayusman/airdraw/internal/canvas"
	"github.com/ayusman/airdraw/internal/capture"
	"github.com/ayusman/airdraw/internal/config"
	"github.com/ayusman/airdraw/internal/detector"
	"github.com/ayusman/airdraw/internal/engine"
	"github.com/ayusman/airdraw/internal/panel"
	"github.com/ayusman/airdraw/internal/render"
	"github.com/ayusman/airdraw/internal/server"
	"github.com/ayusman/airdraw/internal/store"
	"github.com/ayusman/airdraw/internal/tray"
)

func main() {
	configPath := flag.String("config", "airdraw.yaml", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "airdraw: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	preview := render.NewPreview()
	sinks := []render.Sink{preview}

	var window *render.Window
	if cfg.Display.Window {
		window = render.NewWindow(cfg.Display.Title)
		defer window.Close()
		sinks = append(sinks, window)
	}

	var trayUI *tray.Tray
	appCfg, err := buildAppConfig(cfg, st, sinks, logger)
	if err != nil {
		return err
	}
	if cfg.Tray.Enabled {
		appCfg.OnStatus = func(s engine.Status) {
			if trayUI != nil {
				trayUI.SetStatus(s)
			}
		}
	}

	a, err := app.New(appCfg)
	if err != nil {
		return err
	}
	defer a.Stop()

	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.New(server.Config{
			StaticDir: findWebDir(cfg.Server.StaticDir),
			Store:     st,
			Preview:   preview,
			Status:    a,
			Commands:  a,
			Logger:    logger,
		})
		go func() {
			if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
				logger.Error("http server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	switch {
	case cfg.Tray.Enabled:
		trayUI = tray.New(a)
		trayUI.OnQuit(stop)
		trayUI.OnError(func(err error) { logger.Warn("tray command rejected", "error", err) })
		if err := a.Start(); err != nil {
			return fmt.Errorf("failed to start drawing loop: %w", err)
		}
		go func() {
			select {
			case <-ctx.Done():
			case <-a.Done():
			}
			trayUI.Quit()
		}()
		// Blocks on the main thread until the tray quits.
		trayUI.Run()
		return loopErr(a.Err())

	case window != nil:
		return loopErr(a.Run(ctx))

	default:
		if err := a.Start(); err != nil {
			return fmt.Errorf("failed to start drawing loop: %w", err)
		}
		select {
		case <-ctx.Done():
		case <-a.Done():
		}
		return loopErr(a.Err())
	}
}

// buildAppConfig maps the file configuration onto the host collaborators.
func buildAppConfig(cfg *config.Config, st *store.Store, sinks []render.Sink, logger *slog.Logger) (app.Config, error) {
	var surface canvas.Surface
	switch cfg.Canvas.Backend {
	case config.BackendSoftware:
		surface = canvas.NewRasterSurface(cfg.Camera.Width, cfg.Camera.Height)
	default:
		surface = canvas.NewMatSurface(cfg.Camera.Width, cfg.Camera.Height)
	}

	appCfg := app.Config{
		DetectorConfig: detector.Config{
			MaxHands:        cfg.Detector.MaxHands,
			MinConfidence:   cfg.Detector.MinConfidence,
			MinTrackingConf: cfg.Detector.MinTrackingConfidence,
		},
		Surface: surface,
		Engine: engine.Config{
			Smoothing:       cfg.Engine.Smoothing,
			History:         cfg.Engine.History,
			PinchThreshold:  cfg.Engine.PinchThreshold,
			MenuCooldown:    cfg.Engine.MenuCooldown,
			ActionCooldown:  cfg.Engine.ActionCooldown,
			EraserThickness: cfg.Engine.EraserThickness,
			Panel: panel.Config{
				MinThickness:     cfg.Engine.MinThickness,
				MaxThickness:     cfg.Engine.MaxThickness,
				DefaultThickness: cfg.Engine.DefaultThickness,
			},
			Logger: logger,
		},
		Compositor: render.Config{
			Width:         cfg.Camera.Width,
			Height:        cfg.Camera.Height,
			CanvasOpacity: cfg.Canvas.Opacity,
			GridSpacing:   cfg.Canvas.GridSpacing,
		},
		Sinks:           sinks,
		Store:           st,
		OutputDir:       cfg.Output.Dir,
		Format:          cfg.Output.Format,
		IdleFPS:         cfg.Camera.IdleFPS,
		ActiveFPS:       cfg.Camera.ActiveFPS,
		IdleTimeout:     cfg.Camera.IdleTimeout,
		MotionThreshold: cfg.Camera.MotionThreshold,
		Logger:          logger,
	}

	// A replay session drives the engine without a camera.
	if cfg.Detector.Replay != "" {
		replay, err := detector.LoadReplay(cfg.Detector.Replay, cfg.Detector.ReplayLoop)
		if err != nil {
			return app.Config{}, err
		}
		appCfg.Detector = replay
		logger.Info("replaying landmark session", "path", cfg.Detector.Replay, "frames", replay.Remaining())
		return appCfg, nil
	}

	appCfg.Camera = capture.NewCamera(capture.Config{
		Device: cfg.Camera.Device,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
		FPS:    cfg.Camera.IdleFPS,
		Mirror: cfg.Camera.Mirror,
	})
	return appCfg, nil
}

// loopErr treats a finished replay or a quit request as a clean exit.
func loopErr(err error) error {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, app.ErrQuit) {
		return nil
	}
	return err
}

// findWebDir returns dir if set, otherwise the first "web" directory found
// near the working directory. Returns "" if none exists.
func findWebDir(dir string) string {
	candidates := []string{"web", "../web", "../../web"}
	if dir != "" {
		candidates = []string{dir}
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
