// Package config resolves mudra's settings from defaults, a TOML file and
// MUDRA_* environment variables. Command-line flags are layered on top by
// the CLI.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Config is the fully resolved configuration.
type Config struct {
	Camera          capture.Config
	IdleFPS         int
	MotionThreshold float64
	IdleAfter       time.Duration

	Gesture     gesture.Config
	Detector    detector.Config
	FacePadding float64

	Addr      string
	StaticDir string
	DBPath    string
	PluginDir string
	Tray      bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Camera:          capture.DefaultConfig(),
		IdleFPS:         5,
		MotionThreshold: 1.0,
		IdleAfter:       2 * time.Second,
		Gesture:         gesture.DefaultConfig(),
		Detector:        detector.DefaultConfig(),
		FacePadding:     detector.DefaultFacePadding,
		Addr:            "127.0.0.1:8080",
		DBPath:          DefaultDBPath(),
		PluginDir:       DefaultPluginDir(),
		Tray:            true,
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if err := c.Gesture.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Camera.FPS <= 0 {
		errs = append(errs, fmt.Errorf("camera fps must be positive, got %d", c.Camera.FPS))
	}
	if c.IdleFPS <= 0 || c.IdleFPS > c.Camera.FPS {
		errs = append(errs, fmt.Errorf("idle fps must be in (0, %d], got %d", c.Camera.FPS, c.IdleFPS))
	}
	if c.MotionThreshold <= 0 {
		errs = append(errs, fmt.Errorf("motion threshold must be positive, got %g", c.MotionThreshold))
	}
	if c.FacePadding < 0 {
		errs = append(errs, fmt.Errorf("face padding must not be negative, got %g", c.FacePadding))
	}
	if c.Detector.MaxHands <= 0 {
		errs = append(errs, fmt.Errorf("max hands must be positive, got %d", c.Detector.MaxHands))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("server address is empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	return errors.Join(errs...)
}

// Load resolves defaults, then the TOML file at path (a missing file is
// not an error), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg.Apply(file)

	env, err := LoadEnv()
	if err != nil {
		return cfg, err
	}
	cfg.Apply(env)

	return cfg, nil
}

// Apply overwrites the fields that are set in f.
func (c *Config) Apply(f File) {
	set(&c.Camera.DeviceID, f.Camera.Device)
	set(&c.Camera.Width, f.Camera.Width)
	set(&c.Camera.Height, f.Camera.Height)
	set(&c.Camera.FPS, f.Camera.FPS)
	set(&c.Camera.Mirror, f.Camera.Mirror)
	set(&c.IdleFPS, f.Camera.IdleFPS)
	set(&c.MotionThreshold, f.Camera.MotionThreshold)
	setDuration(&c.IdleAfter, f.Camera.IdleAfter)

	setDuration(&c.Gesture.SwipeCooldown, f.Gesture.SwipeCooldown)
	set(&c.Gesture.SwipeThreshold, f.Gesture.SwipeThreshold)
	set(&c.Gesture.MinSwipeSamples, f.Gesture.MinSwipeSamples)
	set(&c.Gesture.HistorySize, f.Gesture.HistorySize)
	setDuration(&c.Gesture.PlayPauseCooldown, f.Gesture.PlayPauseCooldown)
	set(&c.Gesture.PinchSensitivity, f.Gesture.PinchSensitivity)
	set(&c.Gesture.ThumbUpMargin, f.Gesture.ThumbUpMargin)

	set(&c.Detector.MaxHands, f.Detector.MaxHands)
	set(&c.Detector.MinConfidence, f.Detector.MinConfidence)
	set(&c.Detector.MinTrackingConf, f.Detector.MinTracking)
	set(&c.Detector.DetectFaces, f.Detector.Faces)
	set(&c.Detector.ScriptPath, f.Detector.Script)
	set(&c.FacePadding, f.Detector.FacePadding)

	set(&c.Addr, f.Server.Addr)
	set(&c.StaticDir, f.Server.StaticDir)
	set(&c.Tray, f.Server.Tray)
	set(&c.DBPath, f.Paths.DB)
	set(&c.PluginDir, f.Paths.Plugins)
}

func set[T any](target *T, value *T) {
	if value != nil {
		*target = *value
	}
}

func setDuration(target *time.Duration, value *Duration) {
	if value != nil {
		*target = time.Duration(*value)
	}
}
