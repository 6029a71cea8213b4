// internal/store/memory.go
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Memory is the non-volatile byte store behind the event table.
// Writes are synchronous and byte-atomic; the table never sees I/O errors.
type Memory interface {
	Len() int
	ReadAt(off int, p []byte)
	WriteAt(off int, p []byte)
}

// Image is a RAM copy of the node's non-volatile store.
// Persistence to disk is explicit via Save.
type Image struct {
	buf   []byte
	dirty bool
}

// NewImage returns a zeroed image (all rows free).
func NewImage(size int) *Image {
	return &Image{buf: make([]byte, size)}
}

// LoadImage reads an image file. A missing file yields a fresh zeroed image.
// A size mismatch means the table geometry changed and is rejected.
func LoadImage(path string, size int) (*Image, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewImage(size), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read image %s: %w", path, err)
	}
	if len(b) != size {
		return nil, fmt.Errorf("store: image %s is %d bytes, geometry needs %d", path, len(b), size)
	}
	return &Image{buf: b}, nil
}

func (im *Image) Len() int { return len(im.buf) }

func (im *Image) ReadAt(off int, p []byte) {
	copy(p, im.buf[off:off+len(p)])
}

// WriteAt skips unchanged bytes so repeated writes do not wear the store.
func (im *Image) WriteAt(off int, p []byte) {
	dst := im.buf[off : off+len(p)]
	if bytes.Equal(dst, p) {
		return
	}
	copy(dst, p)
	im.dirty = true
}

// Dirty reports whether the image changed since the last Save.
func (im *Image) Dirty() bool { return im.dirty }

// Save writes the image via a temp file and rename.
func (im *Image) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("store: save image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(im.buf); err != nil {
		tmp.Close()
		return fmt.Errorf("store: save image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: save image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: save image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store: save image: %w", err)
	}

	im.dirty = false
	return nil
}
