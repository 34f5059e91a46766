/*
Package metadata implements the small index database written to each
directory that contains bitmap images, mapping a filename hash to the
decoded geometry and thumbnail of every image in that directory.
*/
package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/bodgit/bmpdb/thumb"
)

const (
	// Filename is the expected filename used when writing to disk
	Filename   = "bitmaps.idx"
	maxEntries = 1024
)

// An Entry records the decoded geometry of one image plus its encoded
// thumbnail.
type Entry struct {
	Width    uint16
	Height   uint16
	BitCount uint16
	Thumb    []byte
}

// DB is the directory index object. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type DB struct {
	keys    map[uint32]uint16
	entries []Entry
}

// New returns an empty directory index
func New() *DB {
	return &DB{
		keys: make(map[uint32]uint16),
	}
}

// Length returns the number of entries in the index
func (db *DB) Length() int {
	return len(db.keys)
}

// Set stores the provided entry for the given key
func (db *DB) Set(key uint32, e Entry) error {
	if len(e.Thumb) != thumb.EncodedLen {
		return errors.New("incorrect thumbnail length")
	}
	if _, ok := db.keys[key]; !ok {
		db.entries = append(db.entries, e)
		db.keys[key] = uint16(len(db.entries) - 1)
	}
	return nil
}

// Get returns the entry stored for the given key
func (db *DB) Get(key uint32) (Entry, bool) {
	i, ok := db.keys[key]
	if !ok {
		return Entry{}, false
	}
	return db.entries[i], true
}

// MarshalBinary encodes the index into binary form and returns the
// result. The thumbnails dominate the payload and compress well, so the
// whole stream is written as a single zstd frame.
func (db *DB) MarshalBinary() ([]byte, error) {
	length := len(db.keys)

	if length > maxEntries {
		return nil, fmt.Errorf("more than %d entries", maxEntries)
	}

	keys := make([]uint32, 0, len(db.keys))
	for k := range db.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	raw := new(bytes.Buffer)

	// Write out key values
	if err := binary.Write(raw, binary.LittleEndian, &keys); err != nil {
		return nil, err
	}
	// Pad to 4096 with 0xff's
	if _, err := raw.Write(bytes.Repeat([]byte{0xff, 0xff, 0xff, 0xff}, maxEntries-length)); err != nil {
		return nil, err
	}

	// Write out entry indices
	for _, k := range keys {
		v := db.keys[k]
		if err := binary.Write(raw, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
	}
	// Pad to 6144 with 0xff's
	if _, err := raw.Write(bytes.Repeat([]byte{0xff, 0xff}, maxEntries-length)); err != nil {
		return nil, err
	}

	// Write out the entries themselves
	for _, e := range db.entries {
		hdr := [4]uint16{e.Width, e.Height, e.BitCount, 0}
		if err := binary.Write(raw, binary.LittleEndian, &hdr); err != nil {
			return nil, err
		}
		if _, err := raw.Write(e.Thumb); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	zw, err := zstd.NewWriter(buf)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(raw.Bytes()); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes the index from binary form
func (db *DB) UnmarshalBinary(b []byte) error {
	zr, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	r := bytes.NewReader(raw)

	db.keys = make(map[uint32]uint16)
	db.entries = nil

	var keys []uint32
	for i := 0; i < maxEntries; i++ {
		var key uint32
		if err := binary.Read(r, binary.LittleEndian, &key); err != nil {
			return err
		}
		if key != 0xffffffff {
			keys = append(keys, key)
		}
	}

	var maxOffset int
	for i := 0; i < maxEntries; i++ {
		var offset uint16
		if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
			return err
		}
		if offset != 0xffff && i < len(keys) {
			db.keys[keys[i]] = offset
			if int(offset) > maxOffset {
				maxOffset = int(offset)
			}
		}
	}

	if len(db.keys) == 0 {
		return nil
	}

	for i := 0; i <= maxOffset; i++ {
		var hdr [4]uint16
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return errors.New("insufficient data")
		}
		e := Entry{
			Width:    hdr[0],
			Height:   hdr[1],
			BitCount: hdr[2],
			Thumb:    make([]byte, thumb.EncodedLen),
		}
		if _, err := io.ReadFull(r, e.Thumb); err != nil {
			return errors.New("insufficient data")
		}
		db.entries = append(db.entries, e)
	}

	return nil
}
