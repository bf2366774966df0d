// Package texture supplies the four logical images the shading stage
// samples: day color, night color, the combined bump/roughness/cloud
// channel map, and optional overlay imagery. Any slot may be a synthesized
// flat-color fallback; the shading stage treats both identically.
package texture

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"

	exttiff "github.com/echoflaresat/tiff"
	"go.uber.org/zap"

	"github.com/echoflaresat/planetshade/base"
	"github.com/echoflaresat/planetshade/texture/tiff"

	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode
)

// Texture samples a color by world-space position.
type Texture interface {
	Sample(p base.Vec3) base.Color4
}

// Flat is a single-color fallback texture.
type Flat base.Color4

func (f Flat) Sample(base.Vec3) base.Color4 {
	return base.Color4(f)
}

// Image is an equirectangular texture sampled by the latitude/longitude of
// the queried position.
type Image struct {
	Width  int
	Height int
	img    image.Image
}

// Load opens an image texture, trying the TIFF paths first and falling
// back to the stdlib codecs.
func Load(path string) (*Image, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, fmt.Errorf("load texture %s: %w", path, err)
	}

	return &Image{
		Width:  img.Bounds().Max.X,
		Height: img.Bounds().Max.Y,
		img:    img,
	}, nil
}

// LoadOrFallback resolves a missing or unreadable texture to a flat color,
// which is exactly what the core expects from its texture provider when
// real assets are unavailable.
func LoadOrFallback(path string, fallback base.Color4, log *zap.Logger) Texture {
	if log == nil {
		log = zap.NewNop()
	}
	if path == "" {
		return Flat(fallback)
	}
	tex, err := Load(path)
	if err != nil {
		log.Warn("texture unavailable, using flat fallback",
			zap.String("path", path), zap.Error(err))
		return Flat(fallback)
	}
	return tex
}

func loadImage(path string) (image.Image, error) {
	img, err := tiff.LoadStripedTiff(path)
	if err == nil {
		return img, nil
	}
	stripedErr := err

	img, err = tiff.LoadTiledTiff(path)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, tiff.ErrInvalidTiffHeader) && !errors.Is(stripedErr, tiff.ErrInvalidTiffHeader) {
		return nil, err
	}

	// fallback to the generic TIFF decoder, then the stdlib codecs
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err = exttiff.Decode(f)
	if err == nil {
		return img, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	img, _, err = image.Decode(f)
	return img, err
}

// Sample maps the 3D position P to texture coordinates with a lon-lat
// projection, no interpolation.
func (t *Image) Sample(p base.Vec3) base.Color4 {
	x, y := t.getXY(p)
	return t.getColorAtXY(x, y)
}

func (t *Image) getColorAtXY(x, y int) base.Color4 {
	if x < 0 {
		x = 0
	} else if x >= t.Width {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}

	return base.FromStandardColor(t.img.At(x, y))
}

func (t *Image) getXY(p base.Vec3) (int, int) {
	lat := math.Atan2(p.Z, math.Sqrt(p.X*p.X+p.Y*p.Y))
	lon := math.Atan2(p.Y, p.X)
	if lon < 0 {
		lon += 2 * math.Pi
	}

	u := float64(t.Width)/2.0 + lon/(2*math.Pi)*float64(t.Width-1)
	u = math.Mod(u, float64(t.Width))
	if u < 0 {
		u += float64(t.Width)
	}
	v := (0.5 - (lat / math.Pi)) * float64(t.Height-1)

	return int(u), int(v)
}
