package lighting

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/echoflaresat/planetshade/base"
	"github.com/echoflaresat/planetshade/earth"
)

// Location is an observer position on the surface, in degrees.
type Location struct {
	Latitude  float64 // [-90, 90]
	Longitude float64 // [-180, 180]
}

// SunState is the lighting truth published to the shading stage: a unit
// direction from the planet center toward the sun plus intensity scalars.
// It is derived from the clock and the active sun model, never mutated on
// its own.
type SunState struct {
	Direction   base.Vec3
	Declination float64 // radians
	Intensity   float64
	Ambient     float64
}

// TimeInfo is a display snapshot of the simulated clock for UI layers.
type TimeInfo struct {
	Date        time.Time
	Hours       int
	Minutes     int
	DayFraction float64
}

// Controller composes the simulation clock with the active sun model and
// owns the sun state every shading model reads. Construct one per lighting
// session and hand it to each shading model; there is no ambient global.
//
// Update is expected once per render frame from the host loop. All derived
// fields of the sun state change together under the lock, so a reader never
// observes a half-applied update.
type Controller struct {
	mu         sync.RWMutex
	clock      *Clock
	location   *Location
	simplified bool
	state      SunState
	log        *zap.Logger
}

// NewController builds a controller starting at the given instant, running
// in simplified mode at real-time speed. A nil logger is replaced with a
// no-op one.
func NewController(start time.Time, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		clock:      NewClock(start, 1),
		simplified: true,
		state:      SunState{Intensity: 1.0, Ambient: 0.1},
		log:        log,
	}
	c.mu.Lock()
	c.recompute(start)
	c.mu.Unlock()
	return c
}

// Clock exposes the underlying simulated clock.
func (c *Controller) Clock() *Clock {
	return c.clock
}

// SetDate replaces the simulated instant and recomputes the sun state
// synchronously.
func (c *Controller) SetDate(t time.Time) {
	c.clock.SetTime(t)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recompute(t.UTC())
}

// SetTimeOfDay moves the clock to hours:minutes on the current simulated
// date. Out-of-range values roll over through normal date arithmetic.
func (c *Controller) SetTimeOfDay(hours, minutes int) {
	cur := c.clock.Now().UTC()
	t := time.Date(cur.Year(), cur.Month(), cur.Day(), hours, minutes, 0, 0, time.UTC)
	c.SetDate(t)
}

// SetLocation stores the observer location and switches to the full
// astronomical model.
func (c *Controller) SetLocation(latDeg, lonDeg float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = &Location{Latitude: latDeg, Longitude: lonDeg}
	c.simplified = false
	c.recompute(c.clock.Now())
	c.log.Debug("observer location set",
		zap.Float64("lat", latDeg), zap.Float64("lon", lonDeg))
}

// Location returns the stored observer location, or nil if none was set.
func (c *Controller) Location() *Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.location
}

// SetSimplifiedMode switches between the simplified and full sun models
// without touching the stored location. Switching back and forth leaves no
// residual state; the next recompute depends only on clock and location.
func (c *Controller) SetSimplifiedMode(simplified bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.simplified = simplified
	c.recompute(c.clock.Now())
}

// SetTimeSpeed sets the clock's acceleration multiplier; 0 pauses.
func (c *Controller) SetTimeSpeed(v float64) {
	c.clock.SetSpeed(v)
}

// SetIntensity overrides the published sun intensity.
func (c *Controller) SetIntensity(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Intensity = v
}

// SetAmbientIntensity overrides the published ambient intensity.
func (c *Controller) SetAmbientIntensity(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Ambient = v
}

// Update advances the clock by one frame's elapsed wall time and
// recomputes the sun state. A paused clock makes this a no-op. Calling it
// twice with the same delta advances twice.
func (c *Controller) Update(deltaTimeSeconds float64) {
	if c.clock.Paused() {
		return
	}
	t := c.clock.Advance(deltaTimeSeconds)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recompute(t)
}

// Sun returns the current sun state snapshot. Capture it once per draw
// submission so every sample in a frame sees one lighting truth.
func (c *Controller) Sun() SunState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Simplified reports whether the cheap sun model is active.
func (c *Controller) Simplified() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.simplified
}

// TimeInfo returns the clock snapshot consumed by UI display layers.
// DayFraction keeps the sub-second part of the instant, so it moves
// continuously under small Update deltas.
func (c *Controller) TimeInfo() TimeInfo {
	t := c.clock.Now().UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return TimeInfo{
		Date:        t,
		Hours:       t.Hour(),
		Minutes:     t.Minute(),
		DayFraction: float64(t.Sub(midnight)) / float64(24*time.Hour),
	}
}

// recompute rebuilds the derived sun state from the clock and the active
// model. Callers hold c.mu.
func (c *Controller) recompute(t time.Time) {
	if c.simplified || c.location == nil {
		c.state.Direction = earth.SimplifiedSunDirection(t)
		c.state.Declination = earth.Declination(t)
		return
	}
	a := earth.SunPosition(t, c.location.Latitude, c.location.Longitude)
	c.state.Direction = earth.SunDirection(a)
	c.state.Declination = a.Declination
}
