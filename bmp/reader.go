package bmp

import (
	"bytes"
	"image"
	"image/color"
	"io"
)

type decoder struct {
	r   io.ReadSeeker
	pos int64

	// file header
	fileSize  uint32
	pixOffset uint32

	// info header
	headerSize  uint32
	width       int
	height      int
	topDown     bool
	bitCount    int
	compression uint32
	imageSize   uint32
	clrUsed     uint32

	red, green, blue, alpha channel

	palette []color.RGBA

	img *image.NRGBA
}

// seekToPixelData drops any gap between the last header structure and the
// declared start of the pixel data. Files where the declared offset points
// backwards are tolerated and read sequentially from wherever the headers
// ended.
func (d *decoder) seekToPixelData() error {
	if gap := int64(d.pixOffset) - d.pos; gap > 0 {
		return d.discard(gap)
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// The mask extension lives at an absolute offset, so a plain
		// reader is buffered up front to make it seekable.
		b, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		rs = bytes.NewReader(b)
	}
	d.r = rs

	if err := d.readFileHeader(); err != nil {
		return err
	}
	if err := d.readInfoHeader(); err != nil {
		return err
	}

	if d.bitCount <= 8 {
		if err := d.readPalette(); err != nil {
			return err
		}
	}
	if configOnly {
		return nil
	}

	if err := d.resolveMasks(); err != nil {
		return err
	}
	if err := d.seekToPixelData(); err != nil {
		return err
	}

	d.img = image.NewNRGBA(image.Rect(0, 0, d.width, d.height))

	switch {
	case d.bitCount == 32 && d.compression != compRLE4 && d.compression != compRLE8:
		return d.decode32()
	case d.bitCount == 24 && d.compression == compRGB:
		return d.decode24()
	case d.bitCount == 16 && d.compression != compRLE4 && d.compression != compRLE8:
		return d.decode16()
	case d.bitCount <= 8 && d.compression == compRGB:
		return d.decodeIndexed()
	case d.bitCount == 4 && d.compression == compRLE4:
		return d.decodeRLE()
	case d.bitCount == 8 && d.compression == compRLE8:
		return d.decodeRLE()
	default:
		return ErrUnsupportedBitDepth
	}
}

// Decode reads a BMP image from r and returns it as an image.Image. The
// returned image is always an *image.NRGBA holding top-down rows, whatever
// the stored orientation was. If r is an io.ReadSeeker it is read in place,
// otherwise the whole stream is buffered first.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.img, nil
}

// Info describes the validated header of a BMP image.
type Info struct {
	Width    int
	Height   int // absolute value; the stored sign only encodes row order
	BitCount int
	TopDown  bool
}

// DecodeInfo returns the validated header fields of a BMP image without
// decoding the pixel data.
func DecodeInfo(r io.Reader) (Info, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return Info{}, err
	}
	return Info{
		Width:    d.width,
		Height:   d.height,
		BitCount: d.bitCount,
		TopDown:  d.topDown,
	}, nil
}

// DecodeConfig returns the color model and dimensions of a BMP image
// without decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	cfg := image.Config{
		Width:  d.width,
		Height: d.height,
	}
	if d.bitCount <= 8 {
		cfg.ColorModel = d.colorModel()
	} else {
		cfg.ColorModel = color.NRGBAModel
	}
	return cfg, nil
}

func init() {
	image.RegisterFormat("bmp", "BM????\x00\x00\x00\x00", Decode, DecodeConfig)
}
