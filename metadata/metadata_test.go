package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/bmpdb/thumb"
)

func testEntry(width, height, bits uint16, fill byte) Entry {
	t := make([]byte, thumb.EncodedLen)
	for i := range t {
		t[i] = fill
	}
	return Entry{
		Width:    width,
		Height:   height,
		BitCount: bits,
		Thumb:    t,
	}
}

func TestSetGet(t *testing.T) {
	db := New()
	assert.Equal(t, 0, db.Length())

	e := testEntry(640, 480, 8, 0xaa)
	require.NoError(t, db.Set(Key("LOGO.BMP"), e))
	assert.Equal(t, 1, db.Length())

	got, ok := db.Get(Key("LOGO.BMP"))
	require.True(t, ok)
	assert.Equal(t, e, got)

	_, ok = db.Get(Key("MISSING.BMP"))
	assert.False(t, ok)
}

func TestSetDuplicateKeyKeepsFirst(t *testing.T) {
	db := New()
	first := testEntry(640, 480, 8, 0x01)
	second := testEntry(320, 200, 4, 0x02)

	require.NoError(t, db.Set(Key("LOGO.BMP"), first))
	require.NoError(t, db.Set(Key("LOGO.BMP"), second))
	assert.Equal(t, 1, db.Length())

	got, ok := db.Get(Key("LOGO.BMP"))
	require.True(t, ok)
	assert.Equal(t, first, got)
}

func TestSetBadThumbnailLength(t *testing.T) {
	db := New()
	e := testEntry(640, 480, 8, 0x00)
	e.Thumb = e.Thumb[:len(e.Thumb)-1]
	assert.Error(t, db.Set(Key("LOGO.BMP"), e))
	assert.Equal(t, 0, db.Length())
}

func TestRoundTrip(t *testing.T) {
	db := New()
	entries := map[string]Entry{
		"LOGO.BMP":   testEntry(640, 480, 8, 0x11),
		"SPLASH.BMP": testEntry(320, 200, 4, 0x22),
		"ICON.BMP":   testEntry(64, 64, 1, 0x33),
	}
	for name, e := range entries {
		require.NoError(t, db.Set(Key(name), e))
	}

	b, err := db.MarshalBinary()
	require.NoError(t, err)

	dup := New()
	require.NoError(t, dup.UnmarshalBinary(b))

	assert.Equal(t, db.Length(), dup.Length())
	for name, want := range entries {
		got, ok := dup.Get(Key(name))
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
}

func TestRoundTripEmpty(t *testing.T) {
	db := New()

	b, err := db.MarshalBinary()
	require.NoError(t, err)

	dup := New()
	require.NoError(t, dup.UnmarshalBinary(b))
	assert.Equal(t, 0, dup.Length())
}

func TestUnmarshalGarbage(t *testing.T) {
	db := New()
	assert.Error(t, db.UnmarshalBinary([]byte("not a zstd frame at all")))
}

func TestKeyCaseInsensitive(t *testing.T) {
	assert.Equal(t, Key("logo.bmp"), Key("LOGO.BMP"))
	assert.NotEqual(t, Key("logo.bmp"), Key("splash.bmp"))
}
