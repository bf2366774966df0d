package shade

import (
	"math"
	"testing"
	"time"

	"github.com/echoflaresat/planetshade/base"
	"github.com/echoflaresat/planetshade/earth"
	"github.com/echoflaresat/planetshade/lighting"
	"github.com/echoflaresat/planetshade/texture"
)

func TestSmoothstep(t *testing.T) {
	cases := []struct {
		edge0, edge1, x, want float64
	}{
		{-0.25, 0.5, -0.3, 0.0},
		{-0.25, 0.5, -0.25, 0.0},
		{-0.25, 0.5, 0.5, 1.0},
		{-0.25, 0.5, 0.9, 1.0},
		{0, 1, 0.5, 0.5},
	}
	for _, c := range cases {
		if got := Smoothstep(c.edge0, c.edge1, c.x); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Smoothstep(%g,%g,%g) = %g, want %g", c.edge0, c.edge1, c.x, got, c.want)
		}
	}

	// Monotonic across the transition band.
	prev := -1.0
	for x := -0.25; x <= 0.5; x += 0.01 {
		v := Smoothstep(-0.25, 0.5, x)
		if v < prev {
			t.Fatalf("Smoothstep not monotonic at %g", x)
		}
		prev = v
	}
}

func TestDayNightFactorBounds(t *testing.T) {
	for x := -2.0; x <= 2.0; x += 0.05 {
		f := dayNightFactor(x)
		if f < 0.25-1e-12 || f > 1+1e-12 {
			t.Fatalf("dayNightFactor(%g) = %g outside [0.25, 1]", x, f)
		}
	}
	if f := dayNightFactor(-1); f != 0.25 {
		t.Errorf("deep-shadow factor = %g, want 0.25", f)
	}
	if f := dayNightFactor(1); f != 1 {
		t.Errorf("full-day factor = %g, want 1", f)
	}
}

func TestIntersectSphere(t *testing.T) {
	origin := base.Vec3{X: 0, Y: 0, Z: 3}
	down := base.Vec3{X: 0, Y: 0, Z: -1}

	if got := IntersectSphere(origin, down, 1); math.Abs(got-2) > 1e-12 {
		t.Errorf("head-on hit t = %g, want 2", got)
	}
	if got := IntersectSphere(origin, base.Vec3{X: 0, Y: 0, Z: 1}, 1); got != -1 {
		t.Errorf("ray away from sphere returned %g, want -1", got)
	}
	if got := IntersectSphere(origin, base.Vec3{X: 1, Y: 0, Z: 0}, 1); got != -1 {
		t.Errorf("miss returned %g, want -1", got)
	}
	// From inside, the first positive root is the exit.
	if got := IntersectSphere(base.Vec3{}, down, 1); math.Abs(got-1) > 1e-12 {
		t.Errorf("inside hit t = %g, want 1", got)
	}
}

func TestSphereEntryDistance(t *testing.T) {
	down := base.Vec3{X: 0, Y: 0, Z: -1}

	entry, ok := sphereEntryDistance(base.Vec3{X: 0, Y: 0, Z: 5}, down, 2)
	if !ok || math.Abs(entry-3) > 1e-12 {
		t.Errorf("outside entry = %g ok=%v, want 3 true", entry, ok)
	}

	// Camera inside the sphere clamps to zero.
	entry, ok = sphereEntryDistance(base.Vec3{X: 0, Y: 0, Z: 1}, down, 2)
	if !ok || entry != 0 {
		t.Errorf("inside entry = %g ok=%v, want 0 true", entry, ok)
	}

	if _, ok = sphereEntryDistance(base.Vec3{X: 0, Y: 0, Z: 5}, base.Vec3{X: 1, Y: 0, Z: 0}, 2); ok {
		t.Error("miss reported ok")
	}
}

func testFrame(params *SharedParameters, camera base.Vec3) SurfaceFrame {
	return SurfaceFrame{
		params:    *params,
		camera:    camera,
		intensity: 1,
	}
}

func TestHazeBoundsAndFalloffMonotonicity(t *testing.T) {
	params := DefaultParameters()
	camera := base.Vec3{X: 0, Y: 0, Z: earth.Radius * 3}
	down := base.Vec3{X: 0, Y: 0, Z: -1}

	prevByFalloff := math.Inf(1)
	for _, falloff := range []float64{50e3, 150e3, 450e3, 1350e3} {
		p := *params
		p.HazeFalloff = falloff
		f := testFrame(&p, camera)

		h := f.haze(down, earth.Radius*2, 1.0)
		if h < 0 || h > p.HazeMax {
			t.Fatalf("haze = %g outside [0, %g]", h, p.HazeMax)
		}
		if h >= prevByFalloff {
			t.Fatalf("haze did not strictly decrease with falloff %g: %g >= %g", falloff, h, prevByFalloff)
		}
		prevByFalloff = h
	}

	// Night side attenuates but never below a quarter of the day value.
	f := testFrame(params, camera)
	day := f.haze(down, earth.Radius*2, 1.0)
	night := f.haze(down, earth.Radius*2, -1.0)
	if night <= 0 {
		t.Fatal("night haze vanished entirely")
	}
	if math.Abs(night-0.25*day) > 1e-12 {
		t.Fatalf("night haze = %g, want %g", night, 0.25*day)
	}

	// A ray that never enters the haze sphere picks up nothing.
	if h := f.haze(base.Vec3{X: 0, Y: 0, Z: 1}, earth.Radius, 1.0); h != 0 {
		t.Fatalf("escaping ray haze = %g, want 0", h)
	}
}

func newTestModel(t *testing.T, params *SharedParameters, day, night, combined base.Color4) *SurfaceModel {
	t.Helper()
	ctrl := lighting.NewController(time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC), nil)
	ctrl.SetAmbientIntensity(0)
	return NewSurfaceModel(params, ctrl,
		texture.Flat(day), texture.Flat(night), texture.Flat(combined))
}

func TestSurfaceShadeDayNightThresholds(t *testing.T) {
	params := DefaultParameters()
	params.HazeStrength = 0 // isolate the day/night blend

	// White day, black night, no clouds, flat bump, zero roughness.
	m := newTestModel(t, params,
		base.White(), base.Black(), base.NewColor(1, 0, 0, 1))

	pos := base.Vec3{X: earth.Radius, Y: 0, Z: 0}
	normal := base.Vec3{X: 1, Y: 0, Z: 0}
	camera := base.Vec3{X: earth.Radius * 3, Y: 0, Z: 0}

	noon := m.FrameWithSun(camera, base.Vec3{X: 1, Y: 0, Z: 0})
	c := noon.Shade(pos, normal)
	if c.R < 0.95 || c.G < 0.95 || c.B < 0.95 {
		t.Fatalf("fully lit surface = %+v, want ≈ white", c)
	}
	if c.A != 1 {
		t.Fatalf("surface alpha = %g, want 1", c.A)
	}

	midnight := m.FrameWithSun(camera, base.Vec3{X: -1, Y: 0, Z: 0})
	c = midnight.Shade(pos, normal)
	if c.R > 1e-9 || c.G > 1e-9 || c.B > 1e-9 {
		t.Fatalf("fully shadowed surface = %+v, want black", c)
	}
}

func TestSurfaceShadeAlwaysFinite(t *testing.T) {
	m := newTestModel(t, DefaultParameters(),
		base.NewColor(0.1, 0.3, 0.7, 1), base.NewColor(0.02, 0.02, 0.05, 1),
		base.NewColor(0.5, 0.6, 0.8, 1))

	suns := []base.Vec3{
		{X: 1}, {X: -1}, {Y: 1}, {Z: -1},
		{X: 0.57735, Y: 0.57735, Z: 0.57735},
	}
	cameras := []base.Vec3{
		{X: earth.Radius * 1.001},              // skimming the surface
		{X: earth.Radius + 880e3},              // low orbit
		{X: earth.Radius * 6, Z: earth.Radius}, // far out
	}

	for _, sun := range suns {
		for _, camera := range cameras {
			frame := m.FrameWithSun(camera, sun)
			for theta := 0.0; theta < 2*math.Pi; theta += 0.3 {
				normal := base.Vec3{X: math.Cos(theta), Z: math.Sin(theta)}
				pos := normal.Scale(earth.Radius)

				c := frame.Shade(pos, normal)
				for _, v := range []float64{c.R, c.G, c.B, c.A} {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						t.Fatalf("non-finite channel in %+v (sun %v camera %v θ=%g)", c, sun, camera, theta)
					}
				}
				if c.A != 1 {
					t.Fatalf("surface sample not opaque: %+v", c)
				}
			}
		}
	}
}

func TestSurfaceOverlayRespectsUseImagery(t *testing.T) {
	params := DefaultParameters()
	params.HazeStrength = 0

	m := newTestModel(t, params,
		base.NewColor(1, 0, 0, 1), base.Black(), base.NewColor(1, 0, 0, 1))
	tile := m.WithOverlay(texture.Flat(base.NewColor(0, 1, 0, 1)))

	pos := base.Vec3{X: earth.Radius, Y: 0, Z: 0}
	normal := base.Vec3{X: 1, Y: 0, Z: 0}
	camera := base.Vec3{X: earth.Radius * 3, Y: 0, Z: 0}
	sun := base.Vec3{X: 1, Y: 0, Z: 0}

	baseColor := m.FrameWithSun(camera, sun).Shade(pos, normal)
	tileColor := tile.FrameWithSun(camera, sun).Shade(pos, normal)
	if baseColor.R < tileColor.R || tileColor.G < baseColor.G {
		t.Fatalf("overlay not applied: base %+v tile %+v", baseColor, tileColor)
	}

	// Clone and original share the same parameter block.
	if tile.Params != m.Params {
		t.Fatal("per-tile clone copied the shared parameters")
	}
}

func TestSurfaceFrameSnapshotIsConsistentAndFrozen(t *testing.T) {
	m := newTestModel(t, DefaultParameters(),
		base.White(), base.Black(), base.Black())
	m.Lighting.SetIntensity(2.0)
	m.Lighting.SetAmbientIntensity(0.3)

	state := m.Lighting.Sun()
	frame := m.Frame(base.Vec3{X: earth.Radius * 3})

	// Direction and intensities come from the same state read.
	if frame.sun != state.Direction.Normalize() {
		t.Fatalf("frame sun %v does not match controller state %v", frame.sun, state.Direction)
	}
	if frame.intensity != 2.0 || frame.ambient != 0.3 {
		t.Fatalf("frame intensity/ambient = %g/%g, want 2/0.3", frame.intensity, frame.ambient)
	}

	// Later controller mutations must not leak into the captured frame.
	m.Lighting.SetIntensity(0.1)
	m.Lighting.SetDate(time.Date(2024, time.December, 21, 3, 0, 0, 0, time.UTC))
	if frame.intensity != 2.0 || frame.sun != state.Direction.Normalize() {
		t.Fatal("captured frame changed after controller update")
	}
}

func TestAtmosphereShadeAlphaBounds(t *testing.T) {
	ctrl := lighting.NewController(time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC), nil)
	m := NewAtmosphereModel(DefaultParameters(), ctrl)

	shell := earth.Radius * m.Params.AtmosphereScale
	cameras := []base.Vec3{
		{X: earth.Radius + 400e3},
		{X: earth.Radius * 3},
		{X: earth.Radius * 20},
	}
	suns := []base.Vec3{{X: 1}, {X: -1}, {Y: 1}}

	for _, camera := range cameras {
		for _, sun := range suns {
			frame := m.FrameWithSun(camera, sun)
			for theta := 0.0; theta < 2*math.Pi; theta += 0.2 {
				normal := base.Vec3{X: math.Cos(theta), Y: math.Sin(theta)}
				pos := normal.Scale(shell)

				c := frame.Shade(pos, normal)
				if c.A < 0 || c.A > 1 {
					t.Fatalf("alpha %g outside [0,1]", c.A)
				}
				if math.IsNaN(c.A) || math.IsNaN(c.R+c.G+c.B) {
					t.Fatalf("non-finite halo sample %+v", c)
				}
			}
		}
	}
}

func TestAtmosphereRingNeverFullyOpaqueNorInvisible(t *testing.T) {
	ctrl := lighting.NewController(time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC), nil)
	m := NewAtmosphereModel(DefaultParameters(), ctrl)
	shell := earth.Radius * m.Params.AtmosphereScale

	camera := base.Vec3{X: earth.Radius * 3}
	frame := m.FrameWithSun(camera, base.Vec3{X: -1}) // sun behind the planet

	// A grazing sample on the rim, deep in shadow, still glows faintly.
	pos := base.Vec3{Y: shell}
	c := frame.Shade(pos, base.Vec3{Y: 1})
	if c.A <= 0 {
		t.Fatal("shadowed rim sample fully transparent")
	}
	if c.A >= 1 {
		t.Fatal("rim sample fully opaque")
	}
}
