package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Result is the outcome of processing one frame.
type Result struct {
	// Command is the emitted command, CommandNone if nothing fired.
	Command Command
	// Category is the resolved gesture category of the frame.
	Category Category
	// Pose holds the raw predicates behind Category.
	Pose Pose
	// Label is the advisory status text for display.
	Label string
	// HistoryLen is the swipe history length after the frame.
	HistoryLen int
}

// Engine is the per-stream gesture state machine. It is not safe for
// concurrent use; the processing loop that owns it calls Process once per frame.
type Engine struct {
	cfg       Config
	history   *MotionHistory
	pinch     *PinchTracker
	swipeGate *Cooldown
	playGate  *Cooldown
}

// NewEngine creates an Engine in its stream-start state.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:       cfg,
		history:   NewMotionHistory(cfg.HistorySize),
		pinch:     NewPinchTracker(cfg.PinchSensitivity),
		swipeGate: NewCooldown(cfg.SwipeCooldown),
		playGate:  NewCooldown(cfg.PlayPauseCooldown),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// History exposes the swipe history buffer for inspection.
func (e *Engine) History() *MotionHistory {
	return e.history
}

// Pinch exposes the pinch tracker for inspection.
func (e *Engine) Pinch() *PinchTracker {
	return e.pinch
}

// Reset discards all cross-frame state.
func (e *Engine) Reset() {
	e.history.Clear()
	e.pinch.Reset()
	e.swipeGate.Reset()
	e.playGate.Reset()
}

// Process consumes the active hand of one frame (nil if none was selected)
// and returns at most one command.
//
// Frame order:
//  1. pinch tracker: volume steps while the pinch shape holds without a raised thumb
//  2. thumb-up: play-pause, gated by its own cooldown
//  3. otherwise swipe fist: sample the centroid, fire a track command when the
//     history shows a horizontal swipe and the swipe cooldown has elapsed
//
// A hand that is missing or has non-finite coordinates is a no-gesture frame.
func (e *Engine) Process(hand *detector.HandLandmarks, now time.Time) Result {
	hasHand := hand != nil && hand.Valid()
	if !hasHand {
		hand = nil
	}

	pose := Classify(hand, e.cfg)
	res := Result{
		Category: pose.Category(),
		Pose:     pose,
		Label:    pose.Label(hasHand),
	}

	if pose.PinchActive() {
		res.Command = e.pinch.Observe(pose.PinchDistance)
	} else {
		e.pinch.Reset()
	}

	switch {
	case pose.ThumbUp:
		e.history.Clear()
		if e.playGate.Ready(now) {
			e.playGate.Stamp(now)
			res.Command = CommandPlayPause
		}

	case pose.SwipeActive():
		e.history.Push(MotionSample{X: pose.Centroid.X, Y: pose.Centroid.Y, At: now})
		if res.Command != CommandNone || !e.swipeGate.Ready(now) {
			break
		}
		switch e.history.Swipe(e.cfg.MinSwipeSamples, e.cfg.SwipeThreshold) {
		case SwipeLeft:
			res.Command = CommandTrackPrevious
		case SwipeRight:
			res.Command = CommandTrackNext
		}
		if res.Command != CommandNone {
			e.swipeGate.Stamp(now)
			e.history.Clear()
		}

	default:
		e.history.Clear()
	}

	res.HistoryLen = e.history.Len()
	return res
}
