package bmpdb

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/bmpdb/metadata"
)

const numWorkers = 10

// Ignore any file greater than 64 MB
const maxFileSize = 64 << (10 * 2)

func isImage(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

func (m *BMPDB) findDirectories(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(dir string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a directory
			if !info.Mode().IsDir() {
				return nil
			}

			select {
			case out <- dir:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (m *BMPDB) directoryWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for dir := range in {
			db := metadata.New()
			if err := filepath.Walk(dir, func(file string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}

				// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
				if info.Name()[0] == '.' {
					if info.Mode().IsDir() {
						return filepath.SkipDir
					}
					return nil
				}

				// Ignore anything that isn't a normal file
				if !info.Mode().IsRegular() {
					return nil
				}

				if info.Size() > maxFileSize {
					return nil
				}

				if !isImage(file) {
					return nil
				}

				// Check files are in the "top" directory
				if filepath.Dir(file) != dir {
					return nil
				}

				id, rec, err := m.db.AddImage(file)
				if err != nil {
					// A file that doesn't decode shouldn't
					// sink the whole scan.
					m.logger.Printf("Skipping \"%s\": %v\n", file, err)
					return nil
				}

				if err := m.db.SetFile(file, id); err != nil {
					return err
				}

				// The sidecar stores geometry as 16-bit values. A
				// delegated codec can decode something larger, so leave
				// such images out of the sidecar rather than truncate.
				if rec.Width > math.MaxUint16 || rec.Height > math.MaxUint16 {
					m.logger.Printf("Skipping \"%s\": too large for the directory index\n", file)
					return nil
				}

				name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
				return db.Set(metadata.Key(name), metadata.Entry{
					Width:    uint16(rec.Width),
					Height:   uint16(rec.Height),
					BitCount: uint16(rec.Bits),
					Thumb:    rec.Thumb,
				})
			}); err != nil {
				errc <- err
				return
			}

			if db.Length() > 0 {
				b, err := db.MarshalBinary()
				if err != nil {
					errc <- err
					return
				}

				if err := os.WriteFile(filepath.Join(dir, metadata.Filename), b, 0644); err != nil {
					errc <- err
					return
				}
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks the directory tree rooted at path and indexes every image
// found, writing a sidecar index into each directory that contained any.
// Directories are processed concurrently; each individual decode is
// sequential.
func (m *BMPDB) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	dirs, errc, err := m.findDirectories(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errc, err := m.directoryWorker(ctx, dirs)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
