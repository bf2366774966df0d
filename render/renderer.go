// Package render is the offline host for the lighting core: it owns the
// camera, traces one ray per (supersampled) pixel against the planet
// sphere and the atmosphere shell, and feeds each hit through the shading
// models. One frozen lighting snapshot is captured per frame, so every
// pixel of a frame sees the same sun state.
package render

import (
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/echoflaresat/planetshade/base"
	"github.com/echoflaresat/planetshade/earth"
	"github.com/echoflaresat/planetshade/lighting"
	"github.com/echoflaresat/planetshade/shade"
)

// Scene ties the shading models to the lighting controller for offline
// rendering.
type Scene struct {
	Surface    *shade.SurfaceModel
	Atmosphere *shade.AtmosphereModel
	Lighting   *lighting.Controller

	// Warm is a final white-balance multiplier, applied per pixel.
	Warm base.Color4
	// Saturation is a gentle final saturation boost; 1 leaves colors alone.
	Saturation float64
}

// NewScene wires the two shading models to one controller and one shared
// parameter block.
func NewScene(ctrl *lighting.Controller, surface *shade.SurfaceModel) *Scene {
	return &Scene{
		Surface:    surface,
		Atmosphere: shade.NewAtmosphereModel(surface.Params, ctrl),
		Lighting:   ctrl,
		Warm:       base.NewColor(1.02, 1.0, 0.98, 1.0),
		Saturation: 1.2,
	}
}

// sunECEF transforms the controller's sun direction into the renderer's
// ECEF world frame. The full model emits a direction in the observer's
// local east-up-north frame; the simplified model emits the equatorial
// frame. Geometry here lives in ECEF, so the host does the adaptation.
func (s *Scene) sunECEF() base.Vec3 {
	dir := s.Lighting.Sun().Direction
	if loc := s.Lighting.Location(); loc != nil && !s.Lighting.Simplified() {
		return earth.LocalToECEF(loc.Latitude, loc.Longitude, dir)
	}
	return earth.EquatorialToECEF(dir)
}

// SupersampleOffsets returns n×n offsets in [-0.5, +0.5] with pixel-center
// spacing.
func SupersampleOffsets(n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	step := 1.0 / float64(n)
	out := make([][2]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dx := (float64(i)+0.5)*step - 0.5
			dy := (float64(j)+0.5)*step - 0.5
			out = append(out, [2]float64{dx, dy})
		}
	}
	return out
}

// RenderFrame renders one square frame, fanning scanlines out over the
// given number of workers.
func (s *Scene) RenderFrame(camera Camera, size, supersample, workers int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid frame size %d", size)
	}
	if workers <= 0 {
		workers = 1
	}

	offsets := SupersampleOffsets(supersample)
	if len(offsets) == 0 {
		offsets = [][2]float64{{0, 0}}
	}
	invN := 1.0 / float64(len(offsets))

	sunDir := s.sunECEF()
	surf := s.Surface.FrameWithSun(camera.Position, sunDir)
	atmo := s.Atmosphere.FrameWithSun(camera.Position, sunDir)
	shellRadius := earth.Radius * s.Surface.Params.AtmosphereScale

	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	var g errgroup.Group
	g.SetLimit(workers)
	for y := 0; y < size; y++ {
		y := y
		g.Go(func() error {
			for x := 0; x < size; x++ {
				accum := base.Color4{}
				for _, off := range offsets {
					ray := camera.ComputeRay(float64(x)+off[0], float64(y)+off[1], size, size)
					accum = accum.Add(s.shadeRay(surf, atmo, camera.Position, ray, shellRadius))
				}

				out := accum.Scale(invN).
					Mul(s.Warm).
					BoostSaturation(s.Saturation).
					CompositeOverBlack()
				img.SetNRGBA(x, y, out.ToNRGBA())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

// shadeRay resolves one sample: surface hit → surface model (haze already
// applied inside it); miss → back face of the atmosphere shell for the
// halo ring, composited over black space.
func (s *Scene) shadeRay(surf shade.SurfaceFrame, atmo shade.AtmosphereFrame, origin, ray base.Vec3, shellRadius float64) base.Color4 {
	if t := shade.IntersectSphere(origin, ray, earth.Radius); t > 0 {
		hit := origin.Add(ray.Scale(t))
		return surf.Shade(hit, hit.Normalize())
	}

	hitShell, _, tExit := shade.IntersectSphereFull(origin, ray, shellRadius)
	if !hitShell || tExit <= 0 {
		return base.Black()
	}

	// The shell is drawn back-face, so shade the exit point.
	pos := origin.Add(ray.Scale(tExit))
	halo := atmo.Shade(pos, pos.Normalize())
	return base.Black().MixAlpha(halo.WithAlpha(1.0), halo.A)
}
