package bmp

import (
	"bytes"
	"encoding/binary"
)

// rowStride returns the byte span of one stored pixel row, including the
// padding that rounds every row up to a 4-byte boundary.
func rowStride(width, bitCount int) int {
	return ((width*bitCount + 31) / 32) * 4
}

// readPlane reads the whole uncompressed pixel plane up front so a
// truncated source fails before a single pixel is written.
func (d *decoder) readPlane() ([]byte, error) {
	buf := make([]byte, rowStride(d.width, d.bitCount)*d.height)
	if err := d.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// dstRow maps a stored row index to an output row index. Positive header
// heights store rows bottom-up, so the first stored row is the visually
// lowest one.
func (d *decoder) dstRow(srcRow int) int {
	if d.topDown {
		return srcRow
	}
	return d.height - 1 - srcRow
}

func (d *decoder) decode32() error {
	plane, err := d.readPlane()
	if err != nil {
		return err
	}
	stride := rowStride(d.width, 32)
	for y := 0; y < d.height; y++ {
		src := plane[y*stride:]
		dst := d.img.Pix[d.dstRow(y)*d.img.Stride:]
		for x := 0; x < d.width; x++ {
			v := binary.LittleEndian.Uint32(src[x*4:])
			dst[x*4+0] = d.red.extract(v)
			dst[x*4+1] = d.green.extract(v)
			dst[x*4+2] = d.blue.extract(v)
			dst[x*4+3] = d.alpha.extract(v)
		}
	}
	return nil
}

func (d *decoder) decode24() error {
	plane, err := d.readPlane()
	if err != nil {
		return err
	}
	stride := rowStride(d.width, 24)
	for y := 0; y < d.height; y++ {
		src := plane[y*stride:]
		dst := d.img.Pix[d.dstRow(y)*d.img.Stride:]
		for x := 0; x < d.width; x++ {
			// Stored blue, green, red; there is no alpha channel.
			dst[x*4+0] = src[x*3+2]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+0]
			dst[x*4+3] = 0xff
		}
	}
	return nil
}

func (d *decoder) decode16() error {
	plane, err := d.readPlane()
	if err != nil {
		return err
	}
	stride := rowStride(d.width, 16)
	for y := 0; y < d.height; y++ {
		src := plane[y*stride:]
		dst := d.img.Pix[d.dstRow(y)*d.img.Stride:]
		for x := 0; x < d.width; x++ {
			v := uint32(binary.LittleEndian.Uint16(src[x*2:]))
			dst[x*4+0] = d.red.extract(v)
			dst[x*4+1] = d.green.extract(v)
			dst[x*4+2] = d.blue.extract(v)
			dst[x*4+3] = d.alpha.extract(v)
		}
	}
	return nil
}

// decodeIndexed handles the 1, 4 and 8 bit palette-indexed depths. Pixels
// are packed most significant bits first, so a bit reader walks each row
// and realigns at the row boundary before the padding is dropped.
func (d *decoder) decodeIndexed() error {
	plane, err := d.readPlane()
	if err != nil {
		return err
	}

	stride := rowStride(d.width, d.bitCount)
	rowBytes := (d.width*d.bitCount + 7) / 8
	br := newBitReader(bytes.NewReader(plane))

	for y := 0; y < d.height; y++ {
		dst := d.img.Pix[d.dstRow(y)*d.img.Stride:]
		for x := 0; x < d.width; x++ {
			idx, err := br.readBits(uint(d.bitCount))
			if err != nil {
				return err
			}
			if int(idx) >= len(d.palette) {
				return ErrPaletteIndex
			}
			c := d.palette[idx]
			dst[x*4+0] = c.R
			dst[x*4+1] = c.G
			dst[x*4+2] = c.B
			dst[x*4+3] = c.A
		}
		br.align()
		for i := rowBytes; i < stride; i++ {
			if _, err := br.readBits(8); err != nil {
				return err
			}
		}
	}
	return nil
}
