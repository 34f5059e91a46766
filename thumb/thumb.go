/*
Package thumb implements the fixed-size preview format stored alongside
indexed bitmap images.

A thumbnail is 64 by 40 pixels with a single 16 color palette. The file
is written as 1280 bytes of pixel information, a 4-bit palette index per
pixel in row-major order, followed by one 32 byte palette of 16 colors
where each color is a packed 16-bit RGB444 value. There is no
compression so every encoded thumbnail is exactly 1312 bytes.
*/
package thumb

const (
	// Width and Height are the fixed dimensions of every thumbnail.
	Width  = 64
	Height = 40

	colorsPerPalette = 16

	numPixels  = Width * Height
	pixelBytes = numPixels >> 1

	// EncodedLen is the exact byte length of an encoded thumbnail.
	EncodedLen = pixelBytes + colorsPerPalette*2
)
