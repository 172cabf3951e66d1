// Package gesture turns per-frame hand landmarks into debounced media commands.
//
// The Engine owns all cross-frame state (swipe history, pinch baseline and
// cooldown clocks) and is driven by exactly one goroutine, one frame at a time.
package gesture

import (
	"errors"
	"time"
)

// Config holds the thresholds and debounce intervals of the engine.
type Config struct {
	// SwipeThreshold is the minimum horizontal centroid travel, in normalized
	// image units, between the oldest and newest history samples.
	SwipeThreshold float64
	// SwipeCooldown is the minimum time between two track commands.
	SwipeCooldown time.Duration
	// MinSwipeSamples is how many fist samples must be buffered before a swipe can fire.
	MinSwipeSamples int
	// HistorySize is the capacity of the swipe history ring buffer.
	HistorySize int
	// PlayPauseCooldown is the minimum time between two play-pause commands.
	PlayPauseCooldown time.Duration
	// PinchSensitivity is the thumb-index distance change that triggers a volume step.
	PinchSensitivity float64
	// ThumbUpMargin is how far above the thumb IP joint the tip must be.
	ThumbUpMargin float64
}

// DefaultConfig returns a Config with the tuned default values.
func DefaultConfig() Config {
	return Config{
		SwipeThreshold:    0.04,
		SwipeCooldown:     300 * time.Millisecond,
		MinSwipeSamples:   3,
		HistorySize:       10,
		PlayPauseCooldown: 1200 * time.Millisecond,
		PinchSensitivity:  0.01,
		ThumbUpMargin:     0.05,
	}
}

// Validate checks that the config can drive an Engine.
func (c Config) Validate() error {
	var errs []error
	if c.SwipeThreshold <= 0 {
		errs = append(errs, errors.New("swipe threshold must be positive"))
	}
	if c.SwipeCooldown < 0 {
		errs = append(errs, errors.New("swipe cooldown must not be negative"))
	}
	if c.MinSwipeSamples < 2 {
		errs = append(errs, errors.New("min swipe samples must be at least 2"))
	}
	if c.HistorySize < c.MinSwipeSamples {
		errs = append(errs, errors.New("history size must be at least min swipe samples"))
	}
	if c.PlayPauseCooldown < 0 {
		errs = append(errs, errors.New("play-pause cooldown must not be negative"))
	}
	if c.PinchSensitivity <= 0 {
		errs = append(errs, errors.New("pinch sensitivity must be positive"))
	}
	if c.ThumbUpMargin < 0 {
		errs = append(errs, errors.New("thumb-up margin must not be negative"))
	}
	return errors.Join(errs...)
}
