/*
Package bmp implements a Windows bitmap (BMP) image decoder.

It decodes 1, 4 and 8 bit palette-indexed pixels, 16, 24 and 32 bit
channel-masked pixels and the RLE4/RLE8 run-length encodings, including
the V4/V5 header extension carrying explicit channel masks. Decoding is
all-or-nothing; a damaged or truncated file never yields a partial image.
*/
package bmp

import "errors"

// Compression methods declared by the info header. Only the subset
// matched by decodable can actually be turned into pixels; JPEG and PNG
// payloads belong to their own codecs and the CMYK variants have no
// RGB rendition.
const (
	compRGB            = 0
	compRLE8           = 1
	compRLE4           = 2
	compBitfields      = 3
	compJPEG           = 4
	compPNG            = 5
	compAlphaBitfields = 6
	compCMYK           = 11
	compCMYKRLE8       = 12
	compCMYKRLE4       = 13
)

func decodable(compression uint32) bool {
	switch compression {
	case compRGB, compRLE8, compRLE4, compBitfields, compAlphaBitfields:
		return true
	}
	return false
}

const (
	signature = 0x4d42 // "BM"

	fileHeaderSize    = 14
	infoHeaderMinSize = 40
)

// Channel masks assigned when the header carries no explicit ones. The
// alpha mask applies at 32 bits per pixel only; every other depth decodes
// as fully opaque.
const (
	defaultMaskBlue  = 0x000000ff
	defaultMaskGreen = 0x0000ff00
	defaultMaskRed   = 0x00ff0000
	defaultMaskAlpha = 0xff000000
)

// An NRGBA image cannot address more than (2^31-1)/4 pixels on a 32-bit
// int, so reject anything close to that before allocating.
const (
	maxDimension = 46340
	maxPixels    = 1 << 29
)

var (
	// ErrInvalidSignature means the file does not start with the "BM" magic.
	ErrInvalidSignature = errors.New("bmp: invalid signature")

	// ErrInvalidDimensions means the header declares a zero, negative or
	// excessively large width or height.
	ErrInvalidDimensions = errors.New("bmp: invalid dimensions")

	// ErrUnsupportedHeader means the info header is an unknown version.
	ErrUnsupportedHeader = errors.New("bmp: unsupported header version")

	// ErrUnsupportedCompression means the compression method is outside
	// the decodable set.
	ErrUnsupportedCompression = errors.New("bmp: unsupported compression")

	// ErrUnsupportedBitDepth means the bit depth, or the combination of
	// bit depth and compression method, has no decoder.
	ErrUnsupportedBitDepth = errors.New("bmp: unsupported bit depth")

	// ErrUnexpectedEOF means the source ran out before the expected byte
	// span was consumed.
	ErrUnexpectedEOF = errors.New("bmp: unexpected end of data")

	// ErrPaletteIndex means a pixel referenced a palette slot beyond the
	// length of the color table.
	ErrPaletteIndex = errors.New("bmp: palette index out of range")
)
