package gesture

import (
	"math"
	"time"
)

// MotionSample is one hand centroid observation.
type MotionSample struct {
	X  float64
	Y  float64
	At time.Time
}

// Direction is the horizontal direction of a swipe.
type Direction int

const (
	// NoSwipe means the buffered motion does not qualify as a swipe.
	NoSwipe Direction = iota
	// SwipeLeft is motion toward smaller x.
	SwipeLeft
	// SwipeRight is motion toward larger x.
	SwipeRight
)

// MotionHistory is a fixed-capacity ring buffer of centroid samples.
// When full, pushing evicts the oldest sample.
type MotionHistory struct {
	buf   []MotionSample
	start int
	n     int
}

// NewMotionHistory creates a MotionHistory holding at most capacity samples.
func NewMotionHistory(capacity int) *MotionHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &MotionHistory{buf: make([]MotionSample, capacity)}
}

// Push appends s, evicting the oldest sample if the buffer is full.
func (h *MotionHistory) Push(s MotionSample) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = s
		h.n++
		return
	}
	h.buf[h.start] = s
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of buffered samples.
func (h *MotionHistory) Len() int {
	return h.n
}

// Cap returns the buffer capacity.
func (h *MotionHistory) Cap() int {
	return len(h.buf)
}

// Clear discards all samples.
func (h *MotionHistory) Clear() {
	h.start = 0
	h.n = 0
}

// Samples returns the buffered samples, oldest first.
func (h *MotionHistory) Samples() []MotionSample {
	out := make([]MotionSample, h.n)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

func (h *MotionHistory) first() MotionSample {
	return h.buf[h.start]
}

func (h *MotionHistory) last() MotionSample {
	return h.buf[(h.start+h.n-1)%len(h.buf)]
}

// Swipe compares the oldest and newest samples. It reports a direction when
// at least minSamples are buffered, the horizontal travel exceeds threshold
// and the motion is more horizontal than vertical.
func (h *MotionHistory) Swipe(minSamples int, threshold float64) Direction {
	if h.n < minSamples || h.n == 0 {
		return NoSwipe
	}

	first, last := h.first(), h.last()
	dx := last.X - first.X
	dy := last.Y - first.Y

	if math.Abs(dx) <= threshold || math.Abs(dx) <= math.Abs(dy) {
		return NoSwipe
	}
	if dx < 0 {
		return SwipeLeft
	}
	return SwipeRight
}
