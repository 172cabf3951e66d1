// Package app runs mudra's capture loop: frames go through the landmark
// detector and the gesture engine, and emitted commands go to the sink and
// the event log.
package app

import (
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline defaults.
const (
	DefaultIdleFPS   = 5
	DefaultIdleAfter = 2 * time.Second
	// reopenAfter is the number of consecutive failed reads before the
	// camera is closed and opened again.
	reopenAfter = 10
)

// Sink receives emitted commands. Send must not block.
type Sink interface {
	Send(cmd gesture.Command) bool
}

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Camera   capture.Camera
	Detector detector.Detector
	Sink     Sink

	Gesture         gesture.Config
	FacePadding     float64
	MotionThreshold float64
	IdleFPS         int
	IdleAfter       time.Duration
}

// Status is the advisory state published after every frame.
type Status struct {
	Enabled     bool      `json:"enabled"`
	Label       string    `json:"label"`
	Category    string    `json:"category"`
	Command     string    `json:"command,omitempty"`
	LastCommand string    `json:"last_command,omitempty"`
	Hands       int       `json:"hands"`
	Faces       int       `json:"faces"`
	HistoryLen  int       `json:"history_len"`
	FPS         int       `json:"fps"`
	At          time.Time `json:"at"`
}

// App orchestrates capture, detection, the gesture engine and delivery.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	sink     Sink
	engine   *gesture.Engine

	// activeFPS is the camera's configured rate, restored on activity.
	activeFPS int

	// procMu serializes engine access between the loop and ProcessObservation.
	procMu      sync.Mutex
	lastCommand gesture.Command

	mu      sync.RWMutex
	enabled bool
	status  Status
	stopCh  chan struct{}
	doneCh  chan struct{}

	statuses *hub[Status]
	frames   *hub[[]byte]
}

// New creates an App. A nil Camera opens the default device and a nil
// Detector tries MediaPipe before falling back to the mock detector.
func New(config Config) *App {
	if config.Gesture == (gesture.Config{}) {
		config.Gesture = gesture.DefaultConfig()
	}
	if config.FacePadding < 0 {
		config.FacePadding = detector.DefaultFacePadding
	}
	if config.MotionThreshold <= 0 {
		config.MotionThreshold = 1.0
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = DefaultIdleFPS
	}
	if config.IdleAfter <= 0 {
		config.IdleAfter = DefaultIdleAfter
	}
	if config.Camera == nil {
		config.Camera = capture.NewCamera(capture.DefaultConfig())
	}

	a := &App{
		config:    config,
		camera:    config.Camera,
		motion:    capture.NewMotionDetector(config.MotionThreshold),
		detector:  config.Detector,
		sink:      config.Sink,
		engine:    gesture.NewEngine(config.Gesture),
		activeFPS: config.Camera.FPS(),
		enabled:   true,
		statuses:  newHub[Status](),
		frames:    newHub[[]byte](),
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	a.enabled = a.loadEnabled()
	a.status = Status{Enabled: a.enabled, Label: gesture.LabelSearching, Category: gesture.CategoryNone.String()}

	return a
}

func (a *App) loadEnabled() bool {
	if a.config.Store == nil {
		return true
	}
	v, err := a.config.Store.Settings().Get(store.SettingEnabled)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Failed to read enabled setting: %v", err)
		}
		return true
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return enabled
}

// SetEnabled switches gesture detection on or off. Disabling drops all
// cross-frame gesture state so re-enabling starts fresh.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.status.Enabled = enabled
	status := a.status
	a.mu.Unlock()

	if !changed {
		return
	}

	if !enabled {
		a.procMu.Lock()
		a.engine.Reset()
		a.procMu.Unlock()
	}

	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingEnabled, strconv.FormatBool(enabled)); err != nil {
			log.Printf("Failed to persist enabled setting: %v", err)
		}
	}

	log.Printf("Gesture detection enabled: %v", enabled)
	a.statuses.publish(status)
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Status returns the most recent status.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// SubscribeStatus streams every published status until cancel is called.
func (a *App) SubscribeStatus() (<-chan Status, func()) {
	return a.statuses.subscribe(16)
}

// SubscribeFrames streams JPEG-encoded camera frames until cancel is called.
// Frames are only encoded while at least one subscriber exists.
func (a *App) SubscribeFrames() (<-chan []byte, func()) {
	return a.frames.subscribe(2)
}

// Start opens the camera and begins the processing loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.IdleFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the processing loop, waits for the current frame to finish and
// releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()
	if err := a.detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}

	log.Println("Detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}
