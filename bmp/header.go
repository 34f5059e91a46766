package bmp

import (
	"encoding/binary"
	"io"
)

// readFull reads exactly len(b) bytes, tracking the absolute source
// offset so any gap before the pixel data can be measured later.
func (d *decoder) readFull(b []byte) error {
	n, err := io.ReadFull(d.r, b)
	d.pos += int64(n)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrUnexpectedEOF
	}
	return err
}

func (d *decoder) discard(n int64) error {
	m, err := io.CopyN(io.Discard, d.r, n)
	d.pos += m
	if err != nil {
		return ErrUnexpectedEOF
	}
	return nil
}

// readFileHeader reads the fixed 14-byte file header and verifies the
// signature before anything else is trusted.
func (d *decoder) readFileHeader() error {
	var b [fileHeaderSize]byte
	if err := d.readFull(b[:]); err != nil {
		return err
	}
	if binary.LittleEndian.Uint16(b[0:2]) != signature {
		return ErrInvalidSignature
	}
	d.fileSize = binary.LittleEndian.Uint32(b[2:6])
	// b[6:10] is reserved
	d.pixOffset = binary.LittleEndian.Uint32(b[10:14])
	return nil
}

// readInfoHeader reads the variable-length info header. Only the 40-byte
// core is interpreted; any declared length beyond that is skipped, since
// the V4/V5 color-space fields do not affect decoding.
func (d *decoder) readInfoHeader() error {
	var b [infoHeaderMinSize]byte
	if err := d.readFull(b[:]); err != nil {
		return err
	}

	d.headerSize = binary.LittleEndian.Uint32(b[0:4])
	if d.headerSize < infoHeaderMinSize {
		return ErrUnsupportedHeader
	}

	width := int32(binary.LittleEndian.Uint32(b[4:8]))
	height := int32(binary.LittleEndian.Uint32(b[8:12]))
	// b[12:14] is the plane count, fixed at one and ignored
	d.bitCount = int(binary.LittleEndian.Uint16(b[14:16]))
	d.compression = binary.LittleEndian.Uint32(b[16:20])
	d.imageSize = binary.LittleEndian.Uint32(b[20:24])
	// b[24:32] is the pixels-per-metre resolution pair, informational only
	d.clrUsed = binary.LittleEndian.Uint32(b[32:36])
	// b[36:40] is the important-color count, informational only

	if width <= 0 || height == 0 {
		return ErrInvalidDimensions
	}
	d.width = int(width)
	if height < 0 {
		// A negative height means the rows are already stored
		// top-down.
		d.topDown = true
		height = -height
	}
	d.height = int(height)
	if d.width > maxDimension || d.height > maxDimension || d.width*d.height >= maxPixels {
		return ErrInvalidDimensions
	}

	switch d.bitCount {
	case 1, 4, 8, 16, 24, 32:
	default:
		return ErrUnsupportedBitDepth
	}

	if !decodable(d.compression) {
		return ErrUnsupportedCompression
	}

	if d.headerSize > infoHeaderMinSize {
		return d.discard(int64(d.headerSize) - infoHeaderMinSize)
	}
	return nil
}

// resolveMasks either reads the explicit channel masks that follow the
// info header or assigns the defaults. The explicit masks live at the
// absolute offset 14 + headerSize; the header may legitimately be longer
// than 40 bytes so this is a seek, not a relative skip.
func (d *decoder) resolveMasks() error {
	if d.bitCount > 8 && (d.compression == compBitfields || d.compression == compAlphaBitfields) {
		off := int64(fileHeaderSize) + int64(d.headerSize)
		if _, err := d.r.Seek(off, io.SeekStart); err != nil {
			return ErrUnexpectedEOF
		}
		d.pos = off

		n := 3
		if d.compression == compAlphaBitfields {
			n = 4
		}
		var b [16]byte
		if err := d.readFull(b[:n*4]); err != nil {
			return err
		}
		d.red = newChannel(binary.LittleEndian.Uint32(b[0:4]))
		d.green = newChannel(binary.LittleEndian.Uint32(b[4:8]))
		d.blue = newChannel(binary.LittleEndian.Uint32(b[8:12]))
		if n == 4 {
			d.alpha = newChannel(binary.LittleEndian.Uint32(b[12:16]))
		} else {
			d.alpha = newChannel(0)
		}
		return nil
	}

	d.blue = newChannel(defaultMaskBlue)
	d.green = newChannel(defaultMaskGreen)
	d.red = newChannel(defaultMaskRed)
	if d.bitCount == 32 {
		d.alpha = newChannel(defaultMaskAlpha)
	} else {
		d.alpha = newChannel(0)
	}
	return nil
}
