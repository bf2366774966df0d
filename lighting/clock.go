package lighting

import (
	"sync"
	"time"
)

// Clock owns simulated time plus a time-speed multiplier. Speed 0 pauses,
// 1 tracks wall time, N runs N times faster; a negative speed runs the
// simulation backward. The instant only ever moves in the direction of the
// speed's sign, and only through Advance or the explicit setters.
type Clock struct {
	mu      sync.RWMutex
	instant time.Time
	speed   float64
}

// NewClock constructs a clock positioned at start.
func NewClock(start time.Time, speed float64) *Clock {
	return &Clock{instant: start.UTC(), speed: speed}
}

// Now returns the current simulated instant.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instant
}

// SetTime replaces the simulated instant.
func (c *Clock) SetTime(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instant = t.UTC()
}

// Speed returns the time-speed multiplier.
func (c *Clock) Speed() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.speed
}

// SetSpeed sets the time-speed multiplier. 0 pauses the clock.
func (c *Clock) SetSpeed(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = v
}

// Paused reports whether Advance is currently a no-op.
func (c *Clock) Paused() bool {
	return c.Speed() == 0
}

// Advance moves simulated time by dtSeconds of wall time scaled by the
// speed multiplier and returns the new instant. A paused clock never moves,
// whatever dt is. Calling twice with the same dt advances twice; there is
// no debouncing here.
func (c *Clock) Advance(dtSeconds float64) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.speed != 0 {
		c.instant = c.instant.Add(time.Duration(dtSeconds * c.speed * float64(time.Second)))
	}
	return c.instant
}
