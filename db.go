package bmpdb

import (
	"bytes"
	"crypto/sha1"
	"database/sql"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/image/draw"

	"github.com/bodgit/bmpdb/bmp"
	"github.com/bodgit/bmpdb/thumb"
)

// ImageDB is the sqlite-backed index. Images are content-addressed by the
// SHA-1 of the raw file so the same picture stored under two paths is
// only decoded and thumbnailed once.
type ImageDB struct {
	db *sql.DB
}

func NewImageDB(file string) (*ImageDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, width INTEGER NOT NULL, height INTEGER NOT NULL, bits INTEGER NOT NULL, thumb BLOB NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS file (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, image_id INTEGER NOT NULL, FOREIGN KEY(image_id) REFERENCES image(id))"); err != nil {
		return nil, err
	}

	return &ImageDB{
		db: db,
	}, nil
}

func (db *ImageDB) Close() error {
	return db.db.Close()
}

// A Record describes one decoded image as stored in the index.
type Record struct {
	SHA1   string
	Width  int
	Height int
	Bits   int
	Thumb  []byte
}

// decodeFile decodes the raw bytes of an image file, also reporting the
// source bit depth. BMP files use the native decoder; everything else is
// delegated to the registered codecs.
func decodeFile(file string, b []byte) (image.Image, int, error) {
	if strings.EqualFold(filepath.Ext(file), ".bmp") {
		info, err := bmp.DecodeInfo(bytes.NewReader(b))
		if err != nil {
			return nil, 0, err
		}
		m, err := bmp.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, 0, err
		}
		return m, info.BitCount, nil
	}

	m, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, 0, err
	}
	switch m.(type) {
	case *image.Paletted, *image.Gray:
		return m, 8, nil
	default:
		return m, 32, nil
	}
}

// thumbnail scales a decoded image down to the fixed preview size and
// encodes it.
func thumbnail(m image.Image) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, thumb.Width, thumb.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), m, m.Bounds(), draw.Src, nil)

	b := new(bytes.Buffer)
	if err := thumb.Encode(b, dst); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// AddImage decodes the given image file and records it, returning the row
// id and the stored record. A file whose content hash is already present
// is not decoded a second time.
func (db *ImageDB) AddImage(file string) (int64, *Record, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return 0, nil, err
	}
	sha := fmt.Sprintf("%X", sha1.Sum(b))

	var (
		id  int64
		rec Record
	)
	switch err := db.db.QueryRow("SELECT id, width, height, bits, thumb FROM image WHERE sha1 = ?", sha).Scan(&id, &rec.Width, &rec.Height, &rec.Bits, &rec.Thumb); err {
	case sql.ErrNoRows:
	case nil:
		rec.SHA1 = sha
		return id, &rec, nil
	default:
		return 0, nil, err
	}

	m, bits, err := decodeFile(file, b)
	if err != nil {
		return 0, nil, err
	}

	t, err := thumbnail(m)
	if err != nil {
		return 0, nil, err
	}

	bounds := m.Bounds()
	rec = Record{
		SHA1:   sha,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Bits:   bits,
		Thumb:  t,
	}

	result, err := db.db.Exec("INSERT INTO image (sha1, width, height, bits, thumb) VALUES (?, ?, ?, ?, ?)", rec.SHA1, rec.Width, rec.Height, rec.Bits, rec.Thumb)
	if err != nil {
		return 0, nil, err
	}
	id, err = result.LastInsertId()
	return id, &rec, err
}

// SetFile records the path an indexed image was found under.
func (db *ImageDB) SetFile(path string, imageID int64) error {
	_, err := db.db.Exec("INSERT OR REPLACE INTO file (path, image_id) VALUES (?, ?)", path, imageID)
	return err
}

// FindBySHA1 returns the indexed record for a content hash, or nil if no
// image with that hash has been indexed.
func (db *ImageDB) FindBySHA1(sha string) (*Record, error) {
	rec := Record{SHA1: sha}
	switch err := db.db.QueryRow("SELECT width, height, bits, thumb FROM image WHERE sha1 = ?", sha).Scan(&rec.Width, &rec.Height, &rec.Bits, &rec.Thumb); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return &rec, nil
	default:
		return nil, err
	}
}

// FindByPath returns the indexed record for a previously scanned path, or
// nil if the path is unknown.
func (db *ImageDB) FindByPath(path string) (*Record, error) {
	var rec Record
	switch err := db.db.QueryRow("SELECT i.sha1, i.width, i.height, i.bits, i.thumb FROM file AS f JOIN image AS i ON f.image_id = i.id WHERE f.path = ?", path).Scan(&rec.SHA1, &rec.Width, &rec.Height, &rec.Bits, &rec.Thumb); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return &rec, nil
	default:
		return nil, err
	}
}
