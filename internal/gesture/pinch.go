package gesture

import "math"

// PinchTracker turns relative changes of the thumb-index distance into volume
// steps. Each step rebases the reference, so a held static pinch emits nothing.
type PinchTracker struct {
	sensitivity float64
	baseline    float64
	hasBaseline bool
}

// NewPinchTracker creates a PinchTracker that fires when the distance moves
// by more than sensitivity from the last baseline.
func NewPinchTracker(sensitivity float64) *PinchTracker {
	return &PinchTracker{sensitivity: sensitivity}
}

// Observe feeds the current thumb-index distance. The first observation after
// a reset only records the baseline.
func (p *PinchTracker) Observe(distance float64) Command {
	if !p.hasBaseline {
		p.baseline = distance
		p.hasBaseline = true
		return CommandNone
	}

	diff := distance - p.baseline
	if math.Abs(diff) <= p.sensitivity {
		return CommandNone
	}

	p.baseline = distance
	if diff > 0 {
		return CommandVolumeUp
	}
	return CommandVolumeDown
}

// Baseline returns the current reference distance, if any.
func (p *PinchTracker) Baseline() (float64, bool) {
	return p.baseline, p.hasBaseline
}

// Reset drops the baseline.
func (p *PinchTracker) Reset() {
	p.baseline = 0
	p.hasBaseline = false
}
