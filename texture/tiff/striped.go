// Package tiff renders large uncompressed or deflate-compressed TIFF maps
// without decoding the whole file: pixels are read on demand from an
// mmapped view, so multi-hundred-megabyte basemaps stay cheap to open.
package tiff

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/exp/mmap"
)

type stripedTiff struct {
	header Header
	reader io.ReaderAt
}

// LoadStripedTiff opens a strip-organized, uncompressed TIFF as a lazily
// read image. Returns ErrInvalidTiffHeader when the file is not a TIFF at
// all, so callers can fall through to other codecs.
func LoadStripedTiff(path string) (image.Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	header, err := parseHeader(reader)
	if err != nil {
		return nil, err
	}

	if header.Compression != compressionNone {
		return nil, fmt.Errorf("unsupported compression: %d", header.Compression)
	}

	switch header.Photometric {
	case photometricBlackIsZero:
		if header.SamplesPerPixel != 1 || header.BitsPerSample[0] != 8 {
			return nil, fmt.Errorf("unsupported grayscale format")
		}
	case photometricRGB:
		if header.SamplesPerPixel != 3 || header.BitsPerSample[0] != 8 {
			return nil, fmt.Errorf("unsupported RGB format")
		}
	default:
		return nil, fmt.Errorf("unsupported photometric: %d", header.Photometric)
	}

	if len(header.StripOffsets) == 0 || len(header.StripOffsets) != len(header.StripByteCounts) {
		return nil, fmt.Errorf("invalid strip offset/length")
	}

	return &stripedTiff{header: header, reader: reader}, nil
}

func (t *stripedTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *stripedTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *stripedTiff) At(x, y int) color.Color {
	h := t.header

	strip := y / h.RowsPerStrip
	localY := y % h.RowsPerStrip
	idx := h.StripOffsets[strip] + (localY*h.Width+x)*h.SamplesPerPixel

	switch h.Photometric {
	case photometricRGB:
		var buf [3]byte
		if _, err := t.reader.ReadAt(buf[:], int64(idx)); err != nil {
			panic(fmt.Sprintf("could not read RGB pixel at (%d,%d): %v", x, y, err))
		}
		return color.RGBA{R: buf[0], G: buf[1], B: buf[2], A: 255}

	case photometricBlackIsZero:
		var b [1]byte
		if _, err := t.reader.ReadAt(b[:], int64(idx)); err != nil {
			panic(fmt.Sprintf("could not read grayscale pixel at (%d,%d): %v", x, y, err))
		}
		return color.RGBA{R: b[0], G: b[0], B: b[0], A: 255}

	default:
		panic(fmt.Sprintf("unsupported PhotometricInterpretation: %d", h.Photometric))
	}
}
