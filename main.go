package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/echoflaresat/planetshade/config"
	"github.com/echoflaresat/planetshade/lighting"
	"github.com/echoflaresat/planetshade/logging"
	"github.com/echoflaresat/planetshade/render"
	"github.com/echoflaresat/planetshade/shade"
	"github.com/echoflaresat/planetshade/texture"
)

type flags struct {
	lat, lon, alt  *float64
	fov, tilt, yaw *float64
	size           *int
	supersample    *int

	timeStr    *string
	speed      *float64
	frames     *int
	interval   *float64
	simplified *bool

	cfgPath *string
	out     *string

	day, night, combined, overlay *string

	showHelp *bool
}

func defineFlags() flags {
	return flags{
		lat:  flag.Float64("lat", 0.0, "Camera latitude in degrees"),
		lon:  flag.Float64("lon", 20.0, "Camera longitude in degrees"),
		alt:  flag.Float64("alt", 880.0, "Camera altitude in kilometers"),
		fov:  flag.Float64("fov", 60.0, "Camera field of view in degrees"),
		yaw:  flag.Float64("yaw", 0.0, "Camera yaw in degrees"),
		tilt: flag.Float64("tilt", 40.0, "Camera tilt in degrees"),

		size:        flag.Int("size", 0, "Output image size in pixels (overrides config)"),
		supersample: flag.Int("supersample", 0, "Supersampling factor (overrides config)"),

		timeStr:    flag.String("time", "", "Simulated start time, RFC3339 (e.g. 2025-08-02T15:04:05Z); defaults to now"),
		speed:      flag.Float64("speed", 3600.0, "Time acceleration factor (0 pauses the clock)"),
		frames:     flag.Int("frames", 1, "Number of frames to render"),
		interval:   flag.Float64("interval", 1.0, "Simulated-frame interval in wall seconds"),
		simplified: flag.Bool("simplified", false, "Use the cheap location-free sun model"),

		cfgPath: flag.String("config", "", "YAML configuration file path"),
		out:     flag.String("out", "planet_%04d.png", "Output PNG path pattern (one %d for the frame index)"),

		day:      flag.String("day", "", "Day texture path (overrides config)"),
		night:    flag.String("night", "", "Night texture path (overrides config)"),
		combined: flag.String("combined", "", "Combined bump/roughness/cloud texture path (overrides config)"),
		overlay:  flag.String("overlay", "", "Overlay imagery path (optional)"),

		showHelp: flag.Bool("h", false, "Show this help message"),
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `Planet Renderer - Time-lapse Lighting Generator

Usage:
  %[1]s [options]

`, os.Args[0])

	printGroup("Camera Options", []string{"lat", "lon", "alt", "fov", "tilt", "yaw"})
	printGroup("Simulation Options", []string{"time", "speed", "frames", "interval", "simplified"})
	printGroup("Rendering Options", []string{"size", "supersample", "config"})
	printGroup("Assets", []string{"day", "night", "combined", "overlay"})
	printGroup("Output", []string{"out"})
	printGroup("Misc", []string{"h"})
}

func printGroup(title string, keys []string) {
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	for _, name := range keys {
		if f := flag.Lookup(name); f != nil {
			fmt.Fprintf(os.Stderr, "  -%-12s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(os.Stderr)
}

func main() {
	fl := defineFlags()
	flag.Usage = printHelp
	flag.Parse()

	if *fl.showHelp {
		printHelp()
		return
	}

	cfg, err := loadConfig(*fl.cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlags(cfg, fl, set)

	log := logging.New(cfg.Logging.Level, cfg.Logging.File)
	defer log.Sync()

	start, err := parseStart(cfg.Lighting.Start)
	if err != nil {
		log.Fatal("invalid start time", zap.Error(err))
	}

	ctrl := lighting.NewController(start, log)
	ctrl.SetTimeSpeed(cfg.Lighting.TimeSpeed)
	ctrl.SetIntensity(cfg.Lighting.Intensity)
	ctrl.SetAmbientIntensity(cfg.Lighting.Ambient)
	if loc := cfg.Lighting.Location; loc != nil {
		ctrl.SetLocation(loc.Latitude, loc.Longitude)
	}
	ctrl.SetSimplifiedMode(cfg.Lighting.Simplified)

	scene := buildScene(cfg, ctrl, log)
	camera := render.NewCamera(*fl.lat, *fl.lon, *fl.alt*1000.0, *fl.fov, *fl.tilt, *fl.yaw)

	workers := cfg.Render.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	for i := 0; i < *fl.frames; i++ {
		info := ctrl.TimeInfo()
		log.Info("rendering frame",
			zap.Int("frame", i),
			zap.Time("sim_time", info.Date),
			zap.Float64("day_fraction", info.DayFraction))

		img, err := scene.RenderFrame(camera, cfg.Render.Size, cfg.Render.Supersample, workers)
		if err != nil {
			log.Fatal("render failed", zap.Error(err))
		}

		path := framePath(*fl.out, i)
		if err := writePNG(path, img); err != nil {
			log.Fatal("failed to write PNG", zap.String("path", path), zap.Error(err))
		}

		ctrl.Update(*fl.interval)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// applyFlags lets command-line values win over the config file. Only flags
// the user actually passed (per set) override; config values survive
// otherwise.
func applyFlags(cfg *config.Config, fl flags, set map[string]bool) {
	if *fl.timeStr != "" {
		cfg.Lighting.Start = *fl.timeStr
	}
	if set["speed"] {
		cfg.Lighting.TimeSpeed = *fl.speed
	}
	if set["simplified"] {
		cfg.Lighting.Simplified = *fl.simplified
	}
	if !cfg.Lighting.Simplified && cfg.Lighting.Location == nil {
		// Without an observer the full model has nothing to work with;
		// adopt the camera ground point.
		cfg.Lighting.Location = &config.LocationConfig{Latitude: *fl.lat, Longitude: *fl.lon}
	}

	if *fl.size > 0 {
		cfg.Render.Size = *fl.size
	}
	if *fl.supersample > 0 {
		cfg.Render.Supersample = *fl.supersample
	}
	if *fl.day != "" {
		cfg.Textures.Day = *fl.day
	}
	if *fl.night != "" {
		cfg.Textures.Night = *fl.night
	}
	if *fl.combined != "" {
		cfg.Textures.Combined = *fl.combined
	}
	if *fl.overlay != "" {
		cfg.Textures.Overlay = *fl.overlay
	}
}

func parseStart(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

func buildScene(cfg *config.Config, ctrl *lighting.Controller, log *zap.Logger) *render.Scene {
	params := &shade.SharedParameters{
		AtmosphereDay:      cfg.Atmosphere.DayColor.Color4(),
		AtmosphereTwilight: cfg.Atmosphere.TwilightColor.Color4(),
		RoughnessLow:       cfg.Atmosphere.RoughnessLow,
		RoughnessHigh:      cfg.Atmosphere.RoughnessHigh,
		AtmosphereScale:    cfg.Atmosphere.Scale,
		HazeStrength:       cfg.Atmosphere.HazeStrength,
		HazeFalloff:        cfg.Atmosphere.HazeFalloff,
		HazeMax:            cfg.Atmosphere.HazeMax,
		HaloStrength:       cfg.Atmosphere.HaloStrength,
		HaloPower:          cfg.Atmosphere.HaloPower,
		HeightFade:         cfg.Atmosphere.HeightFade,
	}

	day := texture.LoadOrFallback(cfg.Textures.Day, cfg.Textures.DayFallback.Color4(), log)
	night := texture.LoadOrFallback(cfg.Textures.Night, cfg.Textures.NightFallback.Color4(), log)
	combined := texture.LoadOrFallback(cfg.Textures.Combined, cfg.Textures.CombinedFallback.Color4(), log)

	surface := shade.NewSurfaceModel(params, ctrl, day, night, combined)
	if cfg.Textures.Overlay != "" {
		if overlay, err := texture.Load(cfg.Textures.Overlay); err != nil {
			log.Warn("overlay unavailable", zap.String("path", cfg.Textures.Overlay), zap.Error(err))
		} else {
			surface = surface.WithOverlay(overlay)
		}
	}

	scene := render.NewScene(ctrl, surface)
	scene.Warm = cfg.Render.Warm.Color4()
	scene.Saturation = cfg.Render.Saturation
	return scene
}

func framePath(pattern string, i int) string {
	if strings.Contains(pattern, "%") {
		return fmt.Sprintf(pattern, i)
	}
	// Fixed name: suffix all but the first frame.
	if i == 0 {
		return pattern
	}
	return fmt.Sprintf("%s.%04d", pattern, i)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img)
}
