package lighting

import (
	"math"
	"testing"
	"time"

	"github.com/echoflaresat/planetshade/earth"
)

var equinoxNoon = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

func TestControllerPublishesUnitDirection(t *testing.T) {
	c := NewController(equinoxNoon, nil)

	sun := c.Sun()
	if n := sun.Direction.Norm(); math.Abs(n-1) > 1e-9 {
		t.Fatalf("direction norm = %g, want 1", n)
	}
	if sun.Intensity <= 0 {
		t.Fatalf("default intensity = %g, want > 0", sun.Intensity)
	}
}

func TestControllerUpdateAdvancesAndRecomputes(t *testing.T) {
	c := NewController(equinoxNoon, nil)
	c.SetTimeSpeed(3600) // one simulated hour per wall second

	before := c.Sun().Direction
	c.Update(6)

	if got := c.Clock().Now(); !got.Equal(equinoxNoon.Add(6 * time.Hour)) {
		t.Fatalf("clock = %v, want +6h", got)
	}
	after := c.Sun().Direction
	if angle := math.Acos(clampDot(before.Dot(after))); angle < 1 {
		t.Fatalf("sun only moved %g rad over six simulated hours", angle)
	}
}

func TestControllerUpdateWhilePausedIsNoop(t *testing.T) {
	c := NewController(equinoxNoon, nil)
	c.SetTimeSpeed(0)

	before := c.Sun().Direction
	c.Update(1e6)

	if got := c.Clock().Now(); !got.Equal(equinoxNoon) {
		t.Fatalf("paused update moved the clock to %v", got)
	}
	if after := c.Sun().Direction; after != before {
		t.Fatalf("paused update changed the sun direction")
	}
}

func TestControllerSetTimeOfDayRollsOver(t *testing.T) {
	c := NewController(equinoxNoon, nil)

	c.SetTimeOfDay(25, 90)

	got := c.Clock().Now()
	want := time.Date(2024, time.March, 21, 2, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("SetTimeOfDay(25,90) = %v, want %v", got, want)
	}
}

func TestControllerLocationSwitchesToFullModel(t *testing.T) {
	c := NewController(equinoxNoon, nil)
	if !c.Simplified() {
		t.Fatal("controller should start in simplified mode")
	}

	c.SetLocation(0, 0)
	if c.Simplified() {
		t.Fatal("SetLocation did not activate the full model")
	}

	want := earth.SunDirection(earth.SunPosition(equinoxNoon, 0, 0))
	if got := c.Sun().Direction; got != want {
		t.Fatalf("full-model direction = %v, want %v", got, want)
	}
}

func TestControllerModeSwitchHasNoResidualState(t *testing.T) {
	c := NewController(equinoxNoon, nil)
	c.SetLocation(48.85, 2.35)

	full := c.Sun().Direction

	c.SetSimplifiedMode(true)
	if c.Sun().Direction == full {
		t.Fatal("simplified mode still reports the full-model direction")
	}

	c.SetSimplifiedMode(false)
	if got := c.Sun().Direction; got != full {
		t.Fatalf("after round-trip mode switch direction = %v, want %v", got, full)
	}
}

func TestControllerIntensityOverrides(t *testing.T) {
	c := NewController(equinoxNoon, nil)
	dir := c.Sun().Direction

	c.SetIntensity(2.5)
	c.SetAmbientIntensity(0.01)

	sun := c.Sun()
	if sun.Intensity != 2.5 || sun.Ambient != 0.01 {
		t.Fatalf("overrides not applied: %+v", sun)
	}
	if sun.Direction != dir {
		t.Fatal("intensity override recomputed the direction")
	}
}

func TestControllerTimeInfo(t *testing.T) {
	c := NewController(time.Date(2024, time.June, 21, 18, 45, 0, 0, time.UTC), nil)

	info := c.TimeInfo()
	if info.Hours != 18 || info.Minutes != 45 {
		t.Fatalf("TimeInfo = %+v, want 18:45", info)
	}
	wantFrac := (18.0*3600 + 45*60) / 86400.0
	if math.Abs(info.DayFraction-wantFrac) > 1e-9 {
		t.Fatalf("DayFraction = %g, want %g", info.DayFraction, wantFrac)
	}
}

func TestControllerDayFractionIsContinuous(t *testing.T) {
	start := time.Date(2024, time.June, 21, 18, 45, 0, 250e6, time.UTC)
	c := NewController(start, nil)

	// Sub-second parts of the instant are not discarded.
	wantFrac := (18.0*3600 + 45*60 + 0.25) / 86400.0
	if got := c.TimeInfo().DayFraction; math.Abs(got-wantFrac) > 1e-12 {
		t.Fatalf("DayFraction = %g, want %g", got, wantFrac)
	}

	// Deltas below one second still move the fraction forward.
	before := c.TimeInfo().DayFraction
	c.Update(0.1)
	after := c.TimeInfo().DayFraction
	if after <= before {
		t.Fatalf("DayFraction did not advance: %g -> %g", before, after)
	}
	if math.Abs((after-before)*86400-0.1) > 1e-9 {
		t.Fatalf("DayFraction moved %g s, want 0.1 s", (after-before)*86400)
	}
}

func clampDot(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
