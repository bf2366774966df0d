package shade

import (
	"math"

	"github.com/echoflaresat/planetshade/base"
	"github.com/echoflaresat/planetshade/earth"
	"github.com/echoflaresat/planetshade/lighting"
)

// AtmosphereModel shades the translucent halo shell rendered slightly
// larger than the planet (back faces, so the ring survives the planet
// silhouette). It shares the same parameter block and lighting controller
// as the surface models.
type AtmosphereModel struct {
	Params   *SharedParameters
	Lighting *lighting.Controller
}

func NewAtmosphereModel(params *SharedParameters, ctrl *lighting.Controller) *AtmosphereModel {
	return &AtmosphereModel{Params: params, Lighting: ctrl}
}

// AtmosphereFrame is the per-draw frozen snapshot; Shade is pure.
type AtmosphereFrame struct {
	params   SharedParameters
	sun      base.Vec3
	camera   base.Vec3
	altitude float64 // camera height above the surface, meters
}

// Frame captures the snapshot for one draw submission.
func (m *AtmosphereModel) Frame(camera base.Vec3) AtmosphereFrame {
	return m.FrameWithSun(camera, m.Lighting.Sun().Direction)
}

// FrameWithSun is Frame with an explicit, pre-transformed sun direction.
func (m *AtmosphereModel) FrameWithSun(camera, sunDir base.Vec3) AtmosphereFrame {
	return AtmosphereFrame{
		params:   *m.Params,
		sun:      sunDir.Normalize(),
		camera:   camera,
		altitude: camera.Norm() - earth.Radius,
	}
}

// Shade returns the halo color for one shell sample. The alpha is a
// clamped convex combination scaled by the day/night factor, so the shell
// is never fully opaque and never vanishes entirely.
func (f AtmosphereFrame) Shade(pos, normal base.Vec3) base.Color4 {
	viewDir := f.camera.Sub(pos).Normalize()
	sunOrientation := normal.Dot(f.sun)

	atmosphereMix := Smoothstep(-0.25, 0.75, sunOrientation)
	color := f.params.AtmosphereTwilight.Mix(f.params.AtmosphereDay, atmosphereMix)

	// Fresnel ring, strongest at grazing angles.
	ring := math.Pow(1.0-math.Abs(viewDir.Dot(normal)), f.params.HaloPower)

	// The halo thins out as the camera climbs away from the shell.
	altFactor := math.Exp(-math.Max(0, f.altitude) / f.params.HeightFade)
	density := 0.18 + 0.82*altFactor

	// Forward-scatter hotspot toward the sun.
	sunSpot := math.Pow(math.Max(viewDir.Scale(-1).Dot(f.sun), 0), 10)

	alpha := Clip(f.params.HaloStrength*density*ring+0.35*sunSpot*ring, 0, 1)
	alpha *= dayNightFactor(sunOrientation)

	return color.WithAlpha(alpha)
}
