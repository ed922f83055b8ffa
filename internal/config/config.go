// Package config loads the YAML configuration of the drawing host.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full runtime configuration.
type Config struct {
	Camera   CameraConfig   `yaml:"camera"`
	Detector DetectorConfig `yaml:"detector"`
	Engine   EngineConfig   `yaml:"engine"`
	Canvas   CanvasConfig   `yaml:"canvas"`
	Output   OutputConfig   `yaml:"output"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	Display  DisplayConfig  `yaml:"display"`
	Tray     TrayConfig     `yaml:"tray"`
	Log      LogConfig      `yaml:"log"`
}

// CameraConfig configures frame acquisition and pacing.
type CameraConfig struct {
	Device          int           `yaml:"device"`
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	Mirror          bool          `yaml:"mirror"`
	IdleFPS         int           `yaml:"idle_fps"`
	ActiveFPS       int           `yaml:"active_fps"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	MotionThreshold float64       `yaml:"motion_threshold"`
}

// DetectorConfig configures hand detection. A non-empty Replay path plays
// back a recorded session instead of running inference.
type DetectorConfig struct {
	MaxHands              int     `yaml:"max_hands"`
	MinConfidence         float64 `yaml:"min_confidence"`
	MinTrackingConfidence float64 `yaml:"min_tracking_confidence"`
	Replay                string  `yaml:"replay"`
	ReplayLoop            bool    `yaml:"replay_loop"`
}

// EngineConfig configures smoothing, gesture thresholds and controls.
type EngineConfig struct {
	Smoothing        float64       `yaml:"smoothing"`
	History          int           `yaml:"history"`
	PinchThreshold   float64       `yaml:"pinch_threshold"`
	MenuCooldown     time.Duration `yaml:"menu_cooldown"`
	ActionCooldown   time.Duration `yaml:"action_cooldown"`
	DefaultThickness int           `yaml:"default_thickness"`
	MinThickness     int           `yaml:"min_thickness"`
	MaxThickness     int           `yaml:"max_thickness"`
	EraserThickness  int           `yaml:"eraser_thickness"`
}

// CanvasConfig selects the surface backend and compositing.
type CanvasConfig struct {
	Backend     string  `yaml:"backend"` // opencv | software
	Opacity     float64 `yaml:"opacity"`
	GridSpacing int     `yaml:"grid_spacing"`
}

// OutputConfig configures saved drawings.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png | jpg
}

// StoreConfig configures the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// DisplayConfig configures the native preview window.
type DisplayConfig struct {
	Window bool   `yaml:"window"`
	Title  string `yaml:"title"`
}

// TrayConfig configures the system tray.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Canvas backends.
const (
	BackendOpenCV   = "opencv"
	BackendSoftware = "software"
)

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		Camera: CameraConfig{
			Device:          0,
			Width:           1280,
			Height:          720,
			Mirror:          true,
			IdleFPS:         5,
			ActiveFPS:       15,
			IdleTimeout:     2 * time.Second,
			MotionThreshold: 1.0,
		},
		Detector: DetectorConfig{
			MaxHands:              1,
			MinConfidence:         0.9,
			MinTrackingConfidence: 0.5,
		},
		Engine: EngineConfig{
			Smoothing:        0.5,
			History:          6,
			PinchThreshold:   30,
			MenuCooldown:     time.Second,
			ActionCooldown:   200 * time.Millisecond,
			DefaultThickness: 2,
			MinThickness:     1,
			MaxThickness:     10,
			EraserThickness:  20,
		},
		Canvas: CanvasConfig{
			Backend:     BackendOpenCV,
			Opacity:     0.7,
			GridSpacing: 50,
		},
		Output: OutputConfig{
			Dir:    "saved_drawings",
			Format: "png",
		},
		Store: StoreConfig{
			Path: "airdraw.db",
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		Display: DisplayConfig{
			Window: true,
			Title:  "Air Drawing",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file yields
// the defaults; an empty path skips reading.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate clamps numeric values to safe ranges and rejects unknown enums.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.Camera.Width <= 0 {
		c.Camera.Width = def.Camera.Width
	}
	if c.Camera.Height <= 0 {
		c.Camera.Height = def.Camera.Height
	}
	if c.Camera.IdleFPS <= 0 {
		c.Camera.IdleFPS = def.Camera.IdleFPS
	}
	if c.Camera.ActiveFPS < c.Camera.IdleFPS {
		c.Camera.ActiveFPS = max(def.Camera.ActiveFPS, c.Camera.IdleFPS)
	}
	if c.Camera.IdleTimeout <= 0 {
		c.Camera.IdleTimeout = def.Camera.IdleTimeout
	}
	if c.Camera.MotionThreshold <= 0 {
		c.Camera.MotionThreshold = def.Camera.MotionThreshold
	}

	if c.Detector.MaxHands <= 0 {
		c.Detector.MaxHands = def.Detector.MaxHands
	}
	if c.Detector.MinConfidence <= 0 || c.Detector.MinConfidence > 1 {
		c.Detector.MinConfidence = def.Detector.MinConfidence
	}
	if c.Detector.MinTrackingConfidence <= 0 || c.Detector.MinTrackingConfidence > 1 {
		c.Detector.MinTrackingConfidence = def.Detector.MinTrackingConfidence
	}

	e := &c.Engine
	if e.Smoothing < 0 || e.Smoothing >= 1 {
		e.Smoothing = def.Engine.Smoothing
	}
	if e.History <= 0 {
		e.History = def.Engine.History
	}
	if e.PinchThreshold <= 0 {
		e.PinchThreshold = def.Engine.PinchThreshold
	}
	if e.MenuCooldown <= 0 {
		e.MenuCooldown = def.Engine.MenuCooldown
	}
	if e.ActionCooldown <= 0 {
		e.ActionCooldown = def.Engine.ActionCooldown
	}
	if e.MinThickness <= 0 {
		e.MinThickness = def.Engine.MinThickness
	}
	if e.MaxThickness < e.MinThickness {
		e.MaxThickness = max(def.Engine.MaxThickness, e.MinThickness)
	}
	e.DefaultThickness = min(max(e.DefaultThickness, e.MinThickness), e.MaxThickness)
	if e.EraserThickness <= 0 {
		e.EraserThickness = def.Engine.EraserThickness
	}

	c.Canvas.Backend = strings.ToLower(c.Canvas.Backend)
	switch c.Canvas.Backend {
	case "":
		c.Canvas.Backend = BackendOpenCV
	case BackendOpenCV, BackendSoftware:
	default:
		return fmt.Errorf("canvas.backend: unsupported backend %q (use opencv or software)", c.Canvas.Backend)
	}
	if c.Canvas.Opacity <= 0 || c.Canvas.Opacity > 1 {
		c.Canvas.Opacity = def.Canvas.Opacity
	}
	if c.Canvas.GridSpacing <= 0 {
		c.Canvas.GridSpacing = def.Canvas.GridSpacing
	}

	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	c.Output.Format = strings.TrimPrefix(strings.ToLower(c.Output.Format), ".")
	switch c.Output.Format {
	case "":
		c.Output.Format = def.Output.Format
	case "png", "jpg", "jpeg":
	default:
		return fmt.Errorf("output.format: unsupported format %q (use png or jpg)", c.Output.Format)
	}

	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Display.Title == "" {
		c.Display.Title = def.Display.Title
	}
	// The tray owns the main thread, which a native window also needs.
	if c.Tray.Enabled {
		c.Display.Window = false
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Level {
	case "":
		c.Log.Level = def.Log.Level
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unsupported level %q", c.Log.Level)
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	switch c.Log.Format {
	case "":
		c.Log.Format = def.Log.Format
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported format %q (use text or json)", c.Log.Format)
	}

	return nil
}
