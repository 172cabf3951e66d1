package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// File is one override layer. It is decoded from the TOML config file and
// from MUDRA_* environment variables; nil fields leave the lower layer alone.
type File struct {
	Camera   CameraSection   `toml:"camera"`
	Gesture  GestureSection  `toml:"gesture"`
	Detector DetectorSection `toml:"detector"`
	Server   ServerSection   `toml:"server"`
	Paths    PathsSection    `toml:"paths"`
}

// CameraSection maps capture settings.
type CameraSection struct {
	Device          *int      `toml:"device" env:"MUDRA_CAMERA_DEVICE"`
	Width           *int      `toml:"width" env:"MUDRA_CAMERA_WIDTH"`
	Height          *int      `toml:"height" env:"MUDRA_CAMERA_HEIGHT"`
	FPS             *int      `toml:"fps" env:"MUDRA_CAMERA_FPS"`
	IdleFPS         *int      `toml:"idle-fps" env:"MUDRA_CAMERA_IDLE_FPS"`
	Mirror          *bool     `toml:"mirror" env:"MUDRA_CAMERA_MIRROR"`
	MotionThreshold *float64  `toml:"motion-threshold" env:"MUDRA_MOTION_THRESHOLD"`
	IdleAfter       *Duration `toml:"idle-after" env:"MUDRA_IDLE_AFTER"`
}

// GestureSection maps the gesture engine tunables.
type GestureSection struct {
	SwipeThreshold    *float64  `toml:"swipe-threshold" env:"MUDRA_SWIPE_THRESHOLD"`
	SwipeCooldown     *Duration `toml:"swipe-cooldown" env:"MUDRA_SWIPE_COOLDOWN"`
	MinSwipeSamples   *int      `toml:"min-swipe-samples" env:"MUDRA_MIN_SWIPE_SAMPLES"`
	HistorySize       *int      `toml:"history-size" env:"MUDRA_HISTORY_SIZE"`
	PlayPauseCooldown *Duration `toml:"play-pause-cooldown" env:"MUDRA_PLAY_PAUSE_COOLDOWN"`
	PinchSensitivity  *float64  `toml:"pinch-sensitivity" env:"MUDRA_PINCH_SENSITIVITY"`
	ThumbUpMargin     *float64  `toml:"thumb-up-margin" env:"MUDRA_THUMB_UP_MARGIN"`
}

// DetectorSection maps the landmark detector settings.
type DetectorSection struct {
	MaxHands      *int     `toml:"max-hands" env:"MUDRA_MAX_HANDS"`
	MinConfidence *float64 `toml:"min-confidence" env:"MUDRA_MIN_CONFIDENCE"`
	MinTracking   *float64 `toml:"min-tracking" env:"MUDRA_MIN_TRACKING"`
	Faces         *bool    `toml:"faces" env:"MUDRA_DETECT_FACES"`
	FacePadding   *float64 `toml:"face-padding" env:"MUDRA_FACE_PADDING"`
	Script        *string  `toml:"script" env:"MUDRA_DETECTOR_SCRIPT"`
}

// ServerSection maps the HTTP server and tray settings.
type ServerSection struct {
	Addr      *string `toml:"addr" env:"MUDRA_ADDR"`
	StaticDir *string `toml:"static-dir" env:"MUDRA_STATIC_DIR"`
	Tray      *bool   `toml:"tray" env:"MUDRA_TRAY"`
}

// PathsSection maps storage locations.
type PathsSection struct {
	DB      *string `toml:"db" env:"MUDRA_DB"`
	Plugins *string `toml:"plugins" env:"MUDRA_PLUGIN_DIR"`
}

// Duration is a time.Duration written as a Go duration string ("300ms").
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// LoadFile reads a TOML config from the given path. Missing file is not an error.
func LoadFile(path string) (File, error) {
	if path == "" {
		return File{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("failed to stat config: %w", err)
	}

	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return File{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return File{}, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return f, nil
}

// File returns c as a fully populated override layer.
func (c Config) File() File {
	return File{
		Camera: CameraSection{
			Device:          ptr(c.Camera.DeviceID),
			Width:           ptr(c.Camera.Width),
			Height:          ptr(c.Camera.Height),
			FPS:             ptr(c.Camera.FPS),
			IdleFPS:         ptr(c.IdleFPS),
			Mirror:          ptr(c.Camera.Mirror),
			MotionThreshold: ptr(c.MotionThreshold),
			IdleAfter:       ptr(Duration(c.IdleAfter)),
		},
		Gesture: GestureSection{
			SwipeThreshold:    ptr(c.Gesture.SwipeThreshold),
			SwipeCooldown:     ptr(Duration(c.Gesture.SwipeCooldown)),
			MinSwipeSamples:   ptr(c.Gesture.MinSwipeSamples),
			HistorySize:       ptr(c.Gesture.HistorySize),
			PlayPauseCooldown: ptr(Duration(c.Gesture.PlayPauseCooldown)),
			PinchSensitivity:  ptr(c.Gesture.PinchSensitivity),
			ThumbUpMargin:     ptr(c.Gesture.ThumbUpMargin),
		},
		Detector: DetectorSection{
			MaxHands:      ptr(c.Detector.MaxHands),
			MinConfidence: ptr(c.Detector.MinConfidence),
			MinTracking:   ptr(c.Detector.MinTrackingConf),
			Faces:         ptr(c.Detector.DetectFaces),
			FacePadding:   ptr(c.FacePadding),
			Script:        ptr(c.Detector.ScriptPath),
		},
		Server: ServerSection{
			Addr:      ptr(c.Addr),
			StaticDir: ptr(c.StaticDir),
			Tray:      ptr(c.Tray),
		},
		Paths: PathsSection{
			DB:      ptr(c.DBPath),
			Plugins: ptr(c.PluginDir),
		},
	}
}

// WriteTOML encodes the effective configuration.
func (c Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c.File())
}

func ptr[T any](v T) *T {
	return &v
}
