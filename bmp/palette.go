package bmp

import "image/color"

// readPalette reads the color table that precedes the pixel data at bit
// depths of eight or below. A zero color-used count means the table holds
// the full 2^bitCount entries.
func (d *decoder) readPalette() error {
	count := int(d.clrUsed)
	if count == 0 || count > 1<<uint(d.bitCount) {
		count = 1 << uint(d.bitCount)
	}

	buf := make([]byte, count*4)
	if err := d.readFull(buf); err != nil {
		return err
	}

	d.palette = make([]color.RGBA, count)
	for i := range d.palette {
		// Entries are stored blue, green, red, reserved.
		d.palette[i] = color.RGBA{
			R: buf[i*4+2],
			G: buf[i*4+1],
			B: buf[i*4+0],
			A: 0xff,
		}
	}
	return nil
}

func (d *decoder) colorModel() color.Palette {
	p := make(color.Palette, len(d.palette))
	for i, c := range d.palette {
		p[i] = c
	}
	return p
}
