package bmp

import "io"

// RLE escape codes, found in the second byte of a zero-count token.
const (
	rleEndOfLine   = 0
	rleEndOfBitmap = 1
	rleDelta       = 2
)

// decodeRLE decodes the RLE4 and RLE8 pixel encodings. The token stream
// is a sequence of (count, data) byte pairs: a nonzero count emits that
// many pixels from data, a zero count escapes into end-of-line,
// end-of-bitmap, a cursor delta, or an absolute run of raw indices.
//
// RLE pixel data is stored bottom-up regardless of the height sign, so
// rows are decoded in stream order and the whole image is flipped once at
// the end. Pixels skipped by the escapes keep the zero value the output
// buffer was allocated with.
func (d *decoder) decodeRLE() error {
	var x, y int

	// Write one palette-indexed pixel at the cursor. A pixel that falls
	// beyond the row width is dropped, but an out-of-range palette index
	// is fatal even for dropped pixels.
	put := func(idx byte) error {
		if int(idx) >= len(d.palette) {
			return ErrPaletteIndex
		}
		if x < d.width && y < d.height {
			c := d.palette[idx]
			off := y*d.img.Stride + x*4
			d.img.Pix[off+0] = c.R
			d.img.Pix[off+1] = c.G
			d.img.Pix[off+2] = c.B
			d.img.Pix[off+3] = c.A
		}
		x++
		return nil
	}

	var b [2]byte
loop:
	for y < d.height {
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			// An exhausted token stream terminates the bitmap just
			// like an end-of-bitmap escape.
			break
		}

		if b[0] > 0 {
			// Encoded run: RLE8 repeats one index, RLE4 alternates
			// the two nibbles of data.
			for k := 0; k < int(b[0]); k++ {
				idx := b[1]
				if d.compression == compRLE4 {
					if k%2 == 0 {
						idx = b[1] >> 4
					} else {
						idx = b[1] & 0x0f
					}
				}
				if err := put(idx); err != nil {
					return err
				}
			}
			continue
		}

		switch b[1] {
		case rleEndOfLine:
			y++
			x = 0
		case rleEndOfBitmap:
			break loop
		case rleDelta:
			if _, err := io.ReadFull(d.r, b[:]); err != nil {
				break loop
			}
			x += int(b[0])
			y += int(b[1])
		default:
			// Absolute run of b[1] raw indices, padded to keep the
			// token stream word aligned.
			n := int(b[1])
			nbytes := n
			if d.compression == compRLE4 {
				nbytes = (n + 1) / 2
			}
			if nbytes%2 == 1 {
				nbytes++
			}
			buf := make([]byte, nbytes)
			if _, err := io.ReadFull(d.r, buf); err != nil {
				break loop
			}
			for k := 0; k < n; k++ {
				var idx byte
				if d.compression == compRLE4 {
					idx = buf[k/2] >> 4
					if k%2 == 1 {
						idx = buf[k/2] & 0x0f
					}
				} else {
					idx = buf[k]
				}
				if err := put(idx); err != nil {
					return err
				}
			}
		}
	}

	d.flipVertical()
	return nil
}

// flipVertical converts the bottom-up scan order the RLE decoders produce
// into the canonical top-down representation.
func (d *decoder) flipVertical() {
	tmp := make([]byte, d.img.Stride)
	for y := 0; y < d.height/2; y++ {
		top := d.img.Pix[y*d.img.Stride : (y+1)*d.img.Stride]
		bottom := d.img.Pix[(d.height-1-y)*d.img.Stride : (d.height-y)*d.img.Stride]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}
