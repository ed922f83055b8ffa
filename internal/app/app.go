// Package app hosts the drawing loop: it reads camera frames, runs hand
// detection, steps the engine, composites the preview and fans it out to the
// configured sinks.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/airdraw/internal/canvas"
	"github.com/ayusman/airdraw/internal/capture"
	"github.com/ayusman/airdraw/internal/detector"
	"github.com/ayusman/airdraw/internal/engine"
	"github.com/ayusman/airdraw/internal/render"
	"github.com/ayusman/airdraw/internal/store"
	"gocv.io/x/gocv"
)

// Host defaults.
const (
	DefaultCommandBuffer = 32
	// DefaultMessageTTL keeps overlay messages such as "Saved" on screen
	// across frames instead of for the single frame that produced them.
	DefaultMessageTTL    = 2 * time.Second
)

var (
	// ErrQueueFull is returned by Submit when the command queue is saturated.
	ErrQueueFull = errors.New("command queue full")
	// ErrQuit is returned by the loop when a sink asked to stop.
	ErrQuit = errors.New("quit requested")
	// ErrNoSource is returned when neither a camera nor a detector is configured.
	ErrNoSource = errors.New("no camera or detector configured")
)

// Config holds configuration options for the application.
type Config struct {
	// Camera may be nil when Detector does not need pixels (replay sessions).
	Camera   capture.Source
	Detector detector.Detector
	// DetectorConfig is used when Detector is nil and MediaPipe is started.
	DetectorConfig detector.Config

	// Surface is the persistent canvas. Nil creates an OpenCV surface.
	// The App owns it and closes it on Stop.
	Surface    canvas.Surface
	Engine     engine.Config
	Compositor render.Config
	Sinks      []render.Sink

	Store     *store.Store
	OutputDir string
	Format    string

	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	MotionThreshold float64

	CommandBuffer int
	MessageTTL    time.Duration
	// OnStatus is called from the loop whenever the engine status changes.
	OnStatus func(engine.Status)
	Logger   *slog.Logger
	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

// App owns the engine and the frame loop.
type App struct {
	config     Config
	camera     capture.Source
	detector   detector.Detector
	engine     *engine.Engine
	compositor *render.Compositor
	motion     *capture.MotionDetector
	pacer      *capture.Pacer
	commands   chan engine.Command
	logger     *slog.Logger
	clock      func() time.Time

	out          gocv.Mat
	message      string
	messageUntil time.Time

	statusMu sync.RWMutex
	status   engine.Status

	mu        sync.Mutex
	stopCh    chan struct{}
	doneCh    chan struct{}
	err       error
	closeOnce sync.Once
}

// New creates a new App. Without a detector it tries MediaPipe and falls back
// to an idle mock detector.
func New(config Config) (*App, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "app")

	if config.Camera == nil && config.Detector == nil {
		return nil, ErrNoSource
	}

	if config.CommandBuffer <= 0 {
		config.CommandBuffer = DefaultCommandBuffer
	}
	if config.MessageTTL <= 0 {
		config.MessageTTL = DefaultMessageTTL
	}
	if config.OutputDir == "" {
		config.OutputDir = canvas.DefaultOutputDir
	}
	if config.Format == "" {
		config.Format = canvas.DefaultFormat
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Compositor.Width <= 0 {
		config.Compositor.Width = canvas.DefaultWidth
	}
	if config.Compositor.Height <= 0 {
		config.Compositor.Height = canvas.DefaultHeight
	}

	surface := config.Surface
	if surface == nil {
		surface = canvas.NewMatSurface(config.Compositor.Width, config.Compositor.Height)
	}

	det := config.Detector
	if det == nil {
		if mp, err := detector.NewMediaPipeDetector(config.DetectorConfig); err == nil {
			det = mp
			logger.Info("using MediaPipe hand detection")
		} else {
			logger.Warn("MediaPipe not available, using mock detector", "error", err)
			det = detector.NewMockDetector()
		}
	}

	if config.Engine.Logger == nil {
		config.Engine.Logger = config.Logger
	}
	saver := &recordingSaver{
		export: engine.ExportSaver{Dir: config.OutputDir, Format: config.Format},
		store:  config.Store,
		logger: logger,
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		detector:   det,
		engine:     engine.New(surface, saver, config.Engine),
		compositor: render.NewCompositor(config.Compositor),
		motion:     capture.NewMotionDetector(config.MotionThreshold),
		pacer:      capture.NewPacer(config.IdleFPS, config.ActiveFPS, config.IdleTimeout),
		commands:   make(chan engine.Command, config.CommandBuffer),
		logger:     logger,
		clock:      config.Clock,
		out:        gocv.NewMat(),
	}

	if err := a.restore(); err != nil {
		logger.Warn("failed to restore settings", "error", err)
	}
	a.status = a.engine.Status()
	return a, nil
}

// Engine returns the drawing engine. Only the frame loop may mutate it.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// Submit queues a command for the next frame without blocking.
func (a *App) Submit(cmd engine.Command) error {
	select {
	case a.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// SetEnabled queues a pause or resume.
func (a *App) SetEnabled(enabled bool) error {
	value := 0
	if enabled {
		value = 1
	}
	return a.Submit(engine.Command{Kind: engine.CmdSetEnabled, Value: value})
}

// Status returns the status published by the last frame.
func (a *App) Status() engine.Status {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.status
}

// IsEnabled reports whether the engine is processing hands.
func (a *App) IsEnabled() bool {
	return a.Status().Enabled
}

// Start runs the loop in a goroutine.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}
	if err := a.openCamera(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go func(stop <-chan struct{}, done chan<- struct{}) {
		err := a.loop(stop)
		a.mu.Lock()
		a.err = err
		a.mu.Unlock()
		close(done)
	}(a.stopCh, a.doneCh)

	a.logger.Info("drawing loop started", "fps", a.pacer.FPS())
	return nil
}

// Run opens the camera and runs the loop on the calling goroutine until ctx
// is cancelled or the loop ends. Native windows need this on the main thread.
// Cancellation returns nil.
func (a *App) Run(ctx context.Context) error {
	if err := a.openCamera(); err != nil {
		return err
	}
	a.logger.Info("drawing loop started", "fps", a.pacer.FPS())
	return a.loop(ctx.Done())
}

func (a *App) openCamera() error {
	if a.camera == nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.pacer.FPS())
	return nil
}

// Done returns a channel closed when the loop exits on its own or after Stop.
// It is nil before Start.
func (a *App) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doneCh
}

// Err returns the reason the loop ended, if any.
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Stop halts the loop, persists settings and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh = nil
	a.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	a.closeOnce.Do(a.release)
}

func (a *App) release() {
	if err := a.persist(); err != nil {
		a.logger.Warn("failed to persist settings", "error", err)
	}

	if a.camera != nil {
		if err := a.camera.Close(); err != nil {
			a.logger.Warn("error closing camera", "error", err)
		}
	}
	a.motion.Close()
	if err := a.detector.Close(); err != nil {
		a.logger.Warn("error closing detector", "error", err)
	}
	a.compositor.Close()
	if err := a.engine.Surface().Close(); err != nil {
		a.logger.Warn("error closing canvas", "error", err)
	}
	a.out.Close()

	a.logger.Info("drawing loop stopped")
}

func (a *App) publish(s engine.Status) {
	a.statusMu.Lock()
	changed := s != a.status
	a.status = s
	a.statusMu.Unlock()

	if changed && a.config.OnStatus != nil {
		a.config.OnStatus(s)
	}
}
