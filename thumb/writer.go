package thumb

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

type encoder struct {
	w io.Writer
}

func padPalette(p color.Palette) color.Palette {
	for len(p) < colorsPerPalette {
		p = append(p, color.RGBA{})
	}
	return p
}

func (e *encoder) encode(m *image.Paletted) error {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width>>1; x++ {
			// Masking off any high bits leaves a 0-15 value
			b := m.ColorIndexAt(x<<1, y)&0x0f<<4 | m.ColorIndexAt(x<<1+1, y)&0x0f
			if _, err := e.w.Write([]byte{b}); err != nil {
				return err
			}
		}
	}

	// Write out the palette assuming it is already padded to 16 colors
	var tmp [2]byte
	for _, c := range m.Palette {
		r, g, b, _ := c.RGBA()

		v := uint16(r>>12&0x0f)<<8 | uint16(g>>12&0x0f)<<4 | uint16(b>>12&0x0f)
		tmp[0] = byte(v)
		tmp[1] = byte(v >> 8)

		if _, err := e.w.Write(tmp[:]); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the Image m to w in thumbnail format. The image must
// already be exactly 64 by 40 pixels; anything with more than 16 colors
// is quantized down first.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		return errors.New("thumb: image is wrong size")
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil || len(pm.Palette) > colorsPerPalette {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colorsPerPalette), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	} else {
		// Work on a copy so the caller's palette is not padded in
		// place.
		dup := *pm
		dup.Palette = append(color.Palette(nil), pm.Palette...)
		pm = &dup
	}
	pm.Palette = padPalette(pm.Palette)

	// Adjust image so that the top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	e := encoder{w: w}

	return e.encode(pm)
}
