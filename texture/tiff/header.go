package tiff

import (
	"encoding/binary"
	"errors"
	"io"
)

// Header holds the subset of the first IFD this package can render from.
type Header struct {
	ByteOrder       binary.ByteOrder
	Width, Height   int
	SamplesPerPixel int
	BitsPerSample   []int
	Photometric     int
	Compression     int
	PlanarConfig    int

	// Strip layout
	RowsPerStrip    int
	StripOffsets    []int
	StripByteCounts []int

	// Tile layout
	TileWidth      int
	TileHeight     int
	TileOffsets    []int
	TileByteCounts []int
}

// https://www.loc.gov/preservation/digital/formats/content/tiff_tags.shtml
const (
	tagImageWidth                = 256
	tagImageLength               = 257
	tagBitsPerSample             = 258
	tagCompression               = 259
	tagPhotometricInterpretation = 262
	tagStripOffsets              = 273
	tagSamplesPerPixel           = 277
	tagRowsPerStrip              = 278
	tagStripByteCounts           = 279
	tagPlanarConfiguration       = 284
	tagTileWidth                 = 322
	tagTileLength                = 323
	tagTileOffsets               = 324
	tagTileByteCounts            = 325
)

// Compression and photometric-interpretation values this package accepts.
const (
	compressionNone    = 1
	compressionDeflate = 8

	photometricBlackIsZero = 1
	photometricRGB         = 2
)

var ErrInvalidTiffHeader = errors.New("invalid TIFF header")

func parseHeader(reader io.ReaderAt) (Header, error) {
	read := func(offset int64, size int) ([]byte, error) {
		buf := make([]byte, size)
		_, err := reader.ReadAt(buf, offset)
		return buf, err
	}

	// 8-byte file header
	header, err := read(0, 8)
	if err != nil {
		return Header{}, err
	}

	var bo binary.ByteOrder
	switch string(header[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return Header{}, ErrInvalidTiffHeader
	}
	if bo.Uint16(header[2:4]) != 42 {
		return Header{}, ErrInvalidTiffHeader
	}
	ifdOffset := int64(bo.Uint32(header[4:8]))

	entryCountRaw, err := read(ifdOffset, 2)
	if err != nil {
		return Header{}, err
	}
	numEntries := int(bo.Uint16(entryCountRaw))
	entriesRaw, err := read(ifdOffset+2, numEntries*12)
	if err != nil {
		return Header{}, err
	}

	hdr := Header{
		ByteOrder:       bo,
		SamplesPerPixel: -1,
		Photometric:     -1,
		Compression:     -1,
		PlanarConfig:    1, // default
	}

	for i := 0; i < numEntries; i++ {
		entry := entriesRaw[i*12 : (i+1)*12]
		tag := bo.Uint16(entry[0:2])
		count := bo.Uint32(entry[4:8])
		valOffset := int64(bo.Uint32(entry[8:12]))

		readShortArray := func() ([]int, error) {
			if count == 1 {
				return []int{int(bo.Uint16(entry[8:10]))}, nil
			}
			buf, err := read(valOffset, int(count*2))
			if err != nil {
				return nil, err
			}
			out := make([]int, count)
			for i := uint32(0); i < count; i++ {
				out[i] = int(bo.Uint16(buf[i*2:]))
			}
			return out, nil
		}
		readLongArray := func() ([]int, error) {
			if count == 1 {
				return []int{int(valOffset)}, nil
			}
			buf, err := read(valOffset, int(count*4))
			if err != nil {
				return nil, err
			}
			out := make([]int, count)
			for i := uint32(0); i < count; i++ {
				out[i] = int(bo.Uint32(buf[i*4:]))
			}
			return out, nil
		}

		switch tag {
		case tagImageWidth:
			hdr.Width = int(valOffset)
		case tagImageLength:
			hdr.Height = int(valOffset)
		case tagBitsPerSample:
			hdr.BitsPerSample, err = readShortArray()
			if err != nil {
				return Header{}, err
			}
		case tagCompression:
			hdr.Compression = int(bo.Uint16(entry[8:10]))
		case tagPhotometricInterpretation:
			hdr.Photometric = int(bo.Uint16(entry[8:10]))
		case tagStripOffsets:
			hdr.StripOffsets, err = readLongArray()
			if err != nil {
				return Header{}, err
			}
		case tagSamplesPerPixel:
			hdr.SamplesPerPixel = int(bo.Uint16(entry[8:10]))
		case tagRowsPerStrip:
			hdr.RowsPerStrip = int(valOffset)
		case tagStripByteCounts:
			hdr.StripByteCounts, err = readLongArray()
			if err != nil {
				return Header{}, err
			}
		case tagPlanarConfiguration:
			hdr.PlanarConfig = int(bo.Uint16(entry[8:10]))
		case tagTileWidth:
			hdr.TileWidth = int(valOffset)
		case tagTileLength:
			hdr.TileHeight = int(valOffset)
		case tagTileOffsets:
			hdr.TileOffsets, err = readLongArray()
			if err != nil {
				return Header{}, err
			}
		case tagTileByteCounts:
			hdr.TileByteCounts, err = readLongArray()
			if err != nil {
				return Header{}, err
			}
		}
	}

	return hdr, nil
}
