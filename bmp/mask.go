package bmp

import "math/bits"

// maskShift returns the index of the lowest set bit, or 0 for an empty
// mask.
func maskShift(mask uint32) uint {
	if mask == 0 {
		return 0
	}
	return uint(bits.TrailingZeros32(mask))
}

// maskWidth returns the number of set bits.
func maskWidth(mask uint32) uint {
	return uint(bits.OnesCount32(mask))
}

// channel isolates one color or alpha component within a packed pixel
// word.
type channel struct {
	mask  uint32
	shift uint
	width uint
}

func newChannel(mask uint32) channel {
	return channel{
		mask:  mask,
		shift: maskShift(mask),
		width: maskWidth(mask),
	}
}

// extract pulls the component out of a raw pixel word and rescales it to
// the 0-255 range. An absent mask decodes as fully opaque; only the alpha
// channel may legitimately be absent.
func (c channel) extract(raw uint32) uint8 {
	if c.width == 0 {
		return 0xff
	}
	v := uint64((raw & c.mask) >> c.shift)
	return uint8(v * 0xff / (1<<c.width - 1))
}
