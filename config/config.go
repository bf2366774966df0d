// Package config holds the tunable surface of the renderer: lighting,
// atmosphere and haze constants, texture paths, and logging. Values are
// validated here, at the boundary, so the shading hot path can assume
// positive falloffs without guarding.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/echoflaresat/planetshade/base"
)

// Config is the root configuration document.
type Config struct {
	Lighting   LightingConfig   `yaml:"lighting"`
	Atmosphere AtmosphereConfig `yaml:"atmosphere"`
	Textures   TexturesConfig   `yaml:"textures"`
	Render     RenderConfig     `yaml:"render"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// RGB is a linear color triple in [0,1] per channel.
type RGB struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
}

func (c RGB) Color4() base.Color4 {
	return base.NewColor(c.R, c.G, c.B, 1.0)
}

// LocationConfig is an optional observer position; when present the full
// astronomical sun model is used instead of the simplified one.
type LocationConfig struct {
	Latitude  float64 `yaml:"lat"`
	Longitude float64 `yaml:"lon"`
}

// LightingConfig drives the simulation clock and sun state.
type LightingConfig struct {
	// Start is the initial simulated instant, RFC3339; empty means now.
	Start      string          `yaml:"start"`
	TimeSpeed  float64         `yaml:"time_speed"`
	Intensity  float64         `yaml:"intensity"`
	Ambient    float64         `yaml:"ambient"`
	Simplified bool            `yaml:"simplified"`
	Location   *LocationConfig `yaml:"location,omitempty"`
}

// AtmosphereConfig mirrors shade.SharedParameters.
type AtmosphereConfig struct {
	DayColor      RGB     `yaml:"day_color"`
	TwilightColor RGB     `yaml:"twilight_color"`
	RoughnessLow  float64 `yaml:"roughness_low"`
	RoughnessHigh float64 `yaml:"roughness_high"`
	Scale         float64 `yaml:"scale"`
	HazeStrength  float64 `yaml:"haze_strength"`
	HazeFalloff   float64 `yaml:"haze_falloff_m"`
	HazeMax       float64 `yaml:"haze_max"`
	HaloStrength  float64 `yaml:"halo_strength"`
	HaloPower     float64 `yaml:"halo_power"`
	HeightFade    float64 `yaml:"height_fade_m"`
}

// TexturesConfig lists the four logical images. Empty paths resolve to
// flat-color fallbacks.
type TexturesConfig struct {
	Day      string `yaml:"day"`
	Night    string `yaml:"night"`
	Combined string `yaml:"combined"` // R=bump, G=roughness, B=cloud
	Overlay  string `yaml:"overlay"`

	DayFallback      RGB `yaml:"day_fallback"`
	NightFallback    RGB `yaml:"night_fallback"`
	CombinedFallback RGB `yaml:"combined_fallback"`
}

// RenderConfig holds output settings.
type RenderConfig struct {
	Size        int     `yaml:"size"`
	Supersample int     `yaml:"supersample"`
	Workers     int     `yaml:"workers"` // 0 = GOMAXPROCS
	Warm        RGB     `yaml:"warm"`
	Saturation  float64 `yaml:"saturation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the stock Earth scene configuration.
func Default() *Config {
	return &Config{
		Lighting: LightingConfig{
			TimeSpeed:  1.0,
			Intensity:  1.0,
			Ambient:    0.1,
			Simplified: true,
		},
		Atmosphere: AtmosphereConfig{
			DayColor:      RGB{R: 0.25, G: 0.60, B: 1.00},
			TwilightColor: RGB{R: 0.90, G: 0.35, B: 0.15},
			RoughnessLow:  0.25,
			RoughnessHigh: 0.35,
			Scale:         1.04,
			HazeStrength:  0.70,
			HazeFalloff:   250e3,
			HazeMax:       0.85,
			HaloStrength:  1.20,
			HaloPower:     2.65,
			HeightFade:    1200e3,
		},
		Textures: TexturesConfig{
			DayFallback:      RGB{R: 0.05, G: 0.22, B: 0.45},
			NightFallback:    RGB{R: 0.01, G: 0.01, B: 0.03},
			CombinedFallback: RGB{R: 0.5, G: 1.0, B: 0.0},
		},
		Render: RenderConfig{
			Size:        640,
			Supersample: 3,
			Warm:        RGB{R: 1.02, G: 1.0, B: 0.98},
			Saturation:  1.2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the shading formulas cannot absorb.
func (c *Config) Validate() error {
	a := c.Atmosphere
	if a.HazeFalloff <= 0 {
		return fmt.Errorf("atmosphere.haze_falloff_m must be positive, got %g", a.HazeFalloff)
	}
	if a.HeightFade <= 0 {
		return fmt.Errorf("atmosphere.height_fade_m must be positive, got %g", a.HeightFade)
	}
	if a.Scale <= 1.0 {
		return fmt.Errorf("atmosphere.scale must exceed 1, got %g", a.Scale)
	}
	if a.HazeMax < 0 || a.HazeMax > 1 {
		return fmt.Errorf("atmosphere.haze_max must be in [0,1], got %g", a.HazeMax)
	}
	if a.RoughnessLow >= a.RoughnessHigh {
		return fmt.Errorf("atmosphere.roughness_low must be below roughness_high")
	}
	if loc := c.Lighting.Location; loc != nil {
		if loc.Latitude < -90 || loc.Latitude > 90 {
			return fmt.Errorf("lighting.location.lat out of range: %g", loc.Latitude)
		}
		if loc.Longitude < -180 || loc.Longitude > 180 {
			return fmt.Errorf("lighting.location.lon out of range: %g", loc.Longitude)
		}
	}
	if c.Render.Size <= 0 {
		return fmt.Errorf("render.size must be positive, got %d", c.Render.Size)
	}
	if c.Render.Supersample <= 0 {
		return fmt.Errorf("render.supersample must be positive, got %d", c.Render.Supersample)
	}
	return nil
}
