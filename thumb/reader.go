package thumb

import (
	"errors"
	"image"
	"image/color"
	"io"
)

var (
	errNotEnough = errors.New("thumb: not enough image data")
	errTooMuch   = errors.New("thumb: too much image data")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	image   *image.Paletted
	palette color.Palette

	tmp [pixelBytes]byte
}

func (d *decoder) readPixels() error {
	return readFull(d.r, d.tmp[:])
}

func (d *decoder) readPalette() error {
	d.palette = make(color.Palette, colorsPerPalette)
	for i := range d.palette {
		var tmp [2]byte
		if err := readFull(d.r, tmp[:]); err != nil {
			return err
		}
		// Color is packed as 0000RRRRGGGGBBBB
		v := uint16(tmp[0]) | uint16(tmp[1])<<8
		r := uint8(v >> 8 & 0x0f)
		g := uint8(v >> 4 & 0x0f)
		b := uint8(v & 0x0f)
		d.palette[i] = color.RGBA{r<<4 | r, g<<4 | g, b<<4 | b, 0xff}
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readPixels(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	if err := d.readPalette(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	if n, err := r.Read(d.tmp[:1]); n != 0 || (err != io.EOF && err != io.ErrUnexpectedEOF) {
		if err != nil {
			return err
		}
		return errTooMuch
	}

	if configOnly {
		return nil
	}

	d.image = image.NewPaletted(image.Rect(0, 0, Width, Height), d.palette)

	for y := 0; y < Height; y++ {
		for x := 0; x < Width>>1; x++ {
			b := d.tmp[y*Width>>1+x]
			d.image.SetColorIndex(x<<1, y, b>>4)
			d.image.SetColorIndex(x<<1+1, y, b&0x0f)
		}
	}

	return nil
}

// Decode reads an encoded thumbnail from r and returns it as an
// image.Image.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a thumbnail
// without decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.palette,
		Width:      Width,
		Height:     Height,
	}, nil
}
