package shade

import (
	"math"

	"github.com/echoflaresat/planetshade/base"
	"github.com/echoflaresat/planetshade/earth"
	"github.com/echoflaresat/planetshade/lighting"
	"github.com/echoflaresat/planetshade/texture"
)

// SurfaceModel shades the planet surface. Params and Lighting are shared
// across instances; Overlay and UseImagery belong to one instance, so a
// per-tile clone can swap in its own imagery while staying synchronized to
// the scene's sun direction and atmosphere colors.
type SurfaceModel struct {
	Params   *SharedParameters
	Lighting *lighting.Controller

	Day      texture.Texture
	Night    texture.Texture
	Combined texture.Texture // R = bump, G = roughness, B = cloud

	Overlay    texture.Texture
	UseImagery bool
}

// NewSurfaceModel wires a surface model to its shared parameter block and
// lighting controller.
func NewSurfaceModel(params *SharedParameters, ctrl *lighting.Controller, day, night, combined texture.Texture) *SurfaceModel {
	return &SurfaceModel{
		Params:   params,
		Lighting: ctrl,
		Day:      day,
		Night:    night,
		Combined: combined,
	}
}

// WithOverlay returns a per-tile instance sharing params and lighting by
// reference but owning its overlay slot.
func (m *SurfaceModel) WithOverlay(overlay texture.Texture) *SurfaceModel {
	clone := *m
	clone.Overlay = overlay
	clone.UseImagery = overlay != nil
	return &clone
}

// SurfaceFrame is a frozen per-draw snapshot: one sun state, one parameter
// set, one camera. Shade is then a pure function of its sample inputs, so
// samples can be evaluated in parallel with nothing shared but this value.
type SurfaceFrame struct {
	model  *SurfaceModel
	params SharedParameters
	sun    base.Vec3
	camera base.Vec3

	intensity float64
	ambient   float64
}

// Frame captures the snapshot for one draw submission using the
// controller's current sun state. The state is read exactly once, so
// direction and intensity always come from the same update.
func (m *SurfaceModel) Frame(camera base.Vec3) SurfaceFrame {
	sun := m.Lighting.Sun()
	return m.newFrame(camera, sun, sun.Direction)
}

// FrameWithSun is Frame with an explicit sun direction, for hosts that
// transform the controller's direction into their own world frame first.
func (m *SurfaceModel) FrameWithSun(camera, sunDir base.Vec3) SurfaceFrame {
	return m.newFrame(camera, m.Lighting.Sun(), sunDir)
}

func (m *SurfaceModel) newFrame(camera base.Vec3, sun lighting.SunState, sunDir base.Vec3) SurfaceFrame {
	return SurfaceFrame{
		model:     m,
		params:    *m.Params,
		sun:       sunDir.Normalize(),
		camera:    camera,
		intensity: sun.Intensity,
		ambient:   sun.Ambient,
	}
}

// Shade resolves the final opaque color of one surface sample. pos and
// normal are world-space; normal must already be front-face corrected.
// Every input combination resolves to a finite color; the blends below
// saturate rather than branch.
func (f SurfaceFrame) Shade(pos, normal base.Vec3) base.Color4 {
	day := f.model.Day.Sample(pos)
	night := f.model.Night.Sample(pos)
	comb := f.model.Combined.Sample(pos)

	imagery := day
	if f.model.UseImagery && f.model.Overlay != nil {
		imagery = f.model.Overlay.Sample(pos)
	}

	cloudStrength := Smoothstep(0.2, 1.0, comb.B)
	baseColor := imagery.Mix(base.White(), Clip(cloudStrength*2.0, 0, 1))

	sunOrientation := normal.Dot(f.sun)

	dayStrength := Smoothstep(-0.25, 0.5, sunOrientation)
	color := night.Mix(baseColor, dayStrength)

	// Relief cue: bump valleys read darker inside the terminator band.
	terminator := 1.0 - math.Abs(2.0*dayStrength-1.0)
	color = color.Scale(1.0 - 0.25*terminator*(1.0-comb.R))

	atmosphereMix := Smoothstep(-0.25, 0.75, sunOrientation)
	atmosphereColor := f.params.AtmosphereTwilight.Mix(f.params.AtmosphereDay, atmosphereMix)

	viewRay := pos.Sub(f.camera)
	dist := viewRay.Norm()
	viewDir := base.Vec3{}
	if dist > 0 {
		viewDir = viewRay.Scale(1.0 / dist)
	}

	haze := f.haze(viewDir, dist, sunOrientation)
	color = color.Mix(atmosphereColor, haze)

	toCamera := viewDir.Scale(-1)
	horizonFactor := 1.0 - Clip(normal.Dot(toCamera), 0, 1)
	color = color.Add(atmosphereColor.Scale(0.08 * horizonFactor * horizonFactor * haze))

	color = color.Add(f.specular(day, comb.G, normal, toCamera, sunOrientation))

	return color.Scale(f.intensity).
		Add(baseColor.Scale(f.ambient)).
		WithAlpha(1.0)
}

// haze is the aerial-perspective approximation: path length of the view
// ray inside the scaled atmosphere sphere pushed through a single-term
// exponential extinction, attenuated but never extinguished on the night
// side. The result stays inside [0, HazeMax].
func (f SurfaceFrame) haze(viewDir base.Vec3, dist, sunOrientation float64) float64 {
	entry, ok := sphereEntryDistance(f.camera, viewDir, earth.Radius*f.params.AtmosphereScale)
	if !ok {
		return 0
	}
	pathLength := math.Max(0, dist-entry)

	haze := Clip(f.params.HazeStrength*(1.0-math.Exp(-pathLength/f.params.HazeFalloff)), 0, f.params.HazeMax)
	return haze * dayNightFactor(sunOrientation)
}

// specular is the ocean glint carried over from the still renderer, shaped
// by the roughness channel through the shared smoothstep edges.
func (f SurfaceFrame) specular(day base.Color4, roughnessSample float64, normal, toCamera base.Vec3, sunOrientation float64) base.Color4 {
	if sunOrientation <= 0 {
		return base.Color4{}
	}

	halfVec := toCamera.Add(f.sun).Normalize()
	specAngle := Clip(normal.Dot(halfVec), 0.0, 1.0)
	specular := math.Pow(specAngle, 30)

	roughness := Smoothstep(f.params.RoughnessLow, f.params.RoughnessHigh, roughnessSample)
	oceanFactor := Clip((day.B-0.5*(day.R+day.G))*10.0, 0.0, 1.0)
	fresnel := math.Pow(1.0-Clip(normal.Dot(toCamera), 0, 1), 2.0)

	strength := specular * (1.0 - roughness) * oceanFactor * (0.2 + 0.8*fresnel)

	sunColor := base.NewColor(1.0, 0.97, 0.9, 1.0)
	return sunColor.Scale(strength)
}
