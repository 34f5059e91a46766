/*
Package bmpdb maintains a searchable index of the bitmap images below a
directory tree. Every image is decoded, fingerprinted and recorded in a
sqlite database together with a fixed-size thumbnail, and each scanned
directory receives a compact binary sidecar index for offline consumers.

BMP files are decoded natively by the bmp subpackage; any other raster
format is delegated to whichever codecs have been registered with the
standard image package.
*/
package bmpdb

import (
	"image"
	"log"
	"os"
	"path/filepath"
)

type BMPDB struct {
	db     *ImageDB
	cache  *Cache
	logger *log.Logger
}

func New(file string, logger *log.Logger) (*BMPDB, error) {
	db, err := NewImageDB(file)
	if err != nil {
		return nil, err
	}
	return &BMPDB{
		db:     db,
		cache:  NewCache(),
		logger: logger,
	}, nil
}

func (m *BMPDB) Close() error {
	return m.db.Close()
}

// Load decodes the image at path, remembering the result so repeated
// loads of the same path do not pay for a second decode.
func (m *BMPDB) Load(path string) (image.Image, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if img, ok := m.cache.Get(abs); ok {
		return img, nil
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	m.cache.Put(abs, img)

	return img, nil
}
