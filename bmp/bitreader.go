package bmp

import "io"

// bitReader extracts 1 to 32 bits at a time from a byte stream, most
// significant bit first within each byte. Pixel rows in a bitmap are
// always byte aligned even when pixels are not, so align discards any
// partially consumed byte at the end of a row.
type bitReader struct {
	r   io.Reader
	buf [1]byte
	n   uint // bits still unread in buf
}

func newBitReader(r io.Reader) *bitReader {
	return &bitReader{r: r}
}

func (br *bitReader) readBit() (uint32, error) {
	if br.n == 0 {
		if _, err := io.ReadFull(br.r, br.buf[:]); err != nil {
			return 0, ErrUnexpectedEOF
		}
		br.n = 8
	}
	br.n--
	return uint32(br.buf[0]>>br.n) & 1, nil
}

// readBits accumulates count bits into an unsigned integer, most
// significant first. count is clamped to the range [1, 32].
func (br *bitReader) readBits(count uint) (uint32, error) {
	if count < 1 {
		count = 1
	} else if count > 32 {
		count = 32
	}
	var v uint32
	for i := uint(0); i < count; i++ {
		b, err := br.readBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | b
	}
	return v, nil
}

// align forces the next read to start at a fresh byte boundary.
func (br *bitReader) align() {
	br.n = 0
}
