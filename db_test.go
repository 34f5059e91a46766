package bmpdb

import (
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/bmpdb/metadata"
	"github.com/bodgit/bmpdb/thumb"
)

func testImageDB(t *testing.T) *ImageDB {
	t.Helper()
	db, err := NewImageDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testImage(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{uint8(x * 40), uint8(y * 40), 0x80, 0xff})
		}
	}
	return m
}

func TestAddImageDedupe(t *testing.T) {
	dir := t.TempDir()
	src := testImage(3, 2)

	// The same pixels under two different paths share one content hash.
	first := filepath.Join(dir, "one.png")
	second := filepath.Join(dir, "two.png")
	writePNG(t, first, src)
	writePNG(t, second, src)

	db := testImageDB(t)

	id1, rec1, err := db.AddImage(first)
	require.NoError(t, err)
	assert.Equal(t, 3, rec1.Width)
	assert.Equal(t, 2, rec1.Height)
	assert.Equal(t, 32, rec1.Bits)
	assert.Len(t, rec1.Thumb, thumb.EncodedLen)

	id2, rec2, err := db.AddImage(second)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, rec1, rec2)
}

func TestAddImageUndecodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	db := testImageDB(t)
	_, _, err := db.AddImage(path)
	assert.Error(t, err)
}

func TestFindByPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	writePNG(t, path, testImage(4, 4))

	db := testImageDB(t)

	id, want, err := db.AddImage(path)
	require.NoError(t, err)
	require.NoError(t, db.SetFile(path, id))

	got, err := db.FindByPath(path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, got)

	got, err = db.FindByPath(filepath.Join(t.TempDir(), "absent.png"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindBySHA1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	writePNG(t, path, testImage(4, 4))

	db := testImageDB(t)

	_, want, err := db.AddImage(path)
	require.NoError(t, err)

	got, err := db.FindBySHA1(want.SHA1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, got)

	got, err = db.FindBySHA1("DA39A3EE5E6B4B0D3255BFEF95601890AFD80709")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	writePNG(t, path, testImage(3, 2))

	m, err := New(filepath.Join(t.TempDir(), "scan.db"), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Scan(dir))

	rec, err := m.db.FindByPath(path)
	require.NoError(t, err)
	require.NotNil(t, rec)

	// A directory that contained images receives a sidecar index keyed
	// by the bare filename.
	b, err := os.ReadFile(filepath.Join(dir, metadata.Filename))
	require.NoError(t, err)

	idx := metadata.New()
	require.NoError(t, idx.UnmarshalBinary(b))
	e, ok := idx.Get(metadata.Key("logo"))
	require.True(t, ok)
	assert.Equal(t, uint16(3), e.Width)
	assert.Equal(t, uint16(2), e.Height)
	assert.Equal(t, rec.Thumb, e.Thumb)
}

func TestScanSkipsOversizedSidecarEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")
	writePNG(t, path, image.NewNRGBA(image.Rect(0, 0, 70000, 1)))

	m, err := New(filepath.Join(t.TempDir(), "scan.db"), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Scan(dir))

	// The image is still indexed, but its geometry does not fit the
	// sidecar's 16-bit fields so no sidecar is written for it.
	rec, err := m.db.FindByPath(path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 70000, rec.Width)

	_, err = os.Stat(filepath.Join(dir, metadata.Filename))
	assert.True(t, os.IsNotExist(err))
}
