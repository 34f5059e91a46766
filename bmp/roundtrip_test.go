package bmp

import (
	"bytes"
	"image"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDecode24RoundTrip encodes random pixel data as a bottom-up 24-bit
// file and checks that every pixel comes back out unchanged.
func TestDecode24RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("decoding recovers every encoded pixel", prop.ForAll(
		func(w, h int, seed int64) bool {
			rnd := rand.New(rand.NewSource(seed))

			stride := rowStride(w, 24)
			pixels := make([]byte, stride*h)
			for row := 0; row < h; row++ {
				for x := 0; x < w; x++ {
					off := row*stride + x*3
					pixels[off+0] = byte(rnd.Intn(256))
					pixels[off+1] = byte(rnd.Intn(256))
					pixels[off+2] = byte(rnd.Intn(256))
				}
			}

			b := buildBMP(t, bmpSpec{
				width:    int32(w),
				height:   int32(h),
				bitCount: 24,
				pixels:   pixels,
			})

			m, err := Decode(bytes.NewReader(b))
			if err != nil {
				return false
			}
			img := m.(*image.NRGBA)

			// Stored row 0 is the visually bottom one.
			for row := 0; row < h; row++ {
				for x := 0; x < w; x++ {
					off := row*stride + x*3
					got := img.NRGBAAt(x, h-1-row)
					if got.B != pixels[off+0] || got.G != pixels[off+1] || got.R != pixels[off+2] || got.A != 255 {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 16),
		gen.IntRange(1, 16),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestDecodeIndexed8RoundTrip does the same for palette-indexed data.
func TestDecodeIndexed8RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	palette := greyPalette(16)

	properties.Property("decoding maps every index through the palette", prop.ForAll(
		func(w, h int, seed int64) bool {
			rnd := rand.New(rand.NewSource(seed))

			stride := rowStride(w, 8)
			pixels := make([]byte, stride*h)
			for row := 0; row < h; row++ {
				for x := 0; x < w; x++ {
					pixels[row*stride+x] = byte(rnd.Intn(len(palette)))
				}
			}

			b := buildBMP(t, bmpSpec{
				width:    int32(w),
				height:   int32(h),
				bitCount: 8,
				palette:  palette,
				pixels:   pixels,
			})

			m, err := Decode(bytes.NewReader(b))
			if err != nil {
				return false
			}
			img := m.(*image.NRGBA)

			for row := 0; row < h; row++ {
				for x := 0; x < w; x++ {
					idx := int(pixels[row*stride+x])
					if img.NRGBAAt(x, h-1-row) != grey(idx) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 16),
		gen.IntRange(1, 16),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
