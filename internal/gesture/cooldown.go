package gesture

import "time"

// Cooldown suppresses a command category for an interval after it fires.
type Cooldown struct {
	interval time.Duration
	last     time.Time
	stamped  bool
}

// NewCooldown creates a Cooldown with the given minimum interval.
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{interval: interval}
}

// Ready reports whether more than the interval has elapsed since the last
// Stamp. A gate that was never stamped is always ready.
func (c *Cooldown) Ready(now time.Time) bool {
	return !c.stamped || now.Sub(c.last) > c.interval
}

// Stamp records that the category fired at now.
func (c *Cooldown) Stamp(now time.Time) {
	c.last = now
	c.stamped = true
}

// Reset forgets the last trigger.
func (c *Cooldown) Reset() {
	c.last = time.Time{}
	c.stamped = false
}
