package shade

import "github.com/echoflaresat/planetshade/base"

// SharedParameters is the lighting and atmosphere tuning block shared by
// every shading model instance in a scene. Hold it by pointer: per-tile
// surface models then track one set of atmosphere colors and haze
// constants, while overriding only their own overlay texture. Only the
// owning side mutates it, and only between frames.
//
// Falloff constants must be positive; config validation rejects anything
// else before it reaches the hot path.
type SharedParameters struct {
	AtmosphereDay      base.Color4
	AtmosphereTwilight base.Color4

	// Smoothstep edges applied to the roughness channel when shaping the
	// specular glint.
	RoughnessLow  float64
	RoughnessHigh float64

	// AtmosphereScale is the haze sphere radius as a multiple of the
	// planet radius. It must match the rendered shell mesh's scale factor.
	AtmosphereScale float64
	HazeStrength    float64
	HazeFalloff     float64 // meters
	HazeMax         float64

	HaloStrength float64
	HaloPower    float64
	HeightFade   float64 // meters
}

// DefaultParameters returns the tuning used by the stock Earth scene.
func DefaultParameters() *SharedParameters {
	return &SharedParameters{
		AtmosphereDay:      base.NewColor(0.25, 0.60, 1.00, 1.0),
		AtmosphereTwilight: base.NewColor(0.90, 0.35, 0.15, 1.0),
		RoughnessLow:       0.25,
		RoughnessHigh:      0.35,
		AtmosphereScale:    1.04,
		HazeStrength:       0.70,
		HazeFalloff:        250e3,
		HazeMax:            0.85,
		HaloStrength:       1.20,
		HaloPower:          2.65,
		HeightFade:         1200e3,
	}
}
