//go:build unix

package persist

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// File stores the record in a single file. Every handle opens its own
// descriptor and locks it with flock, so handles in different processes, or
// in the same process, exclude each other.
type File[D Data] struct {
	RefCount
	path string
}

func NewFile[D Data](path string) *File[D] {
	return &File[D]{path: path}
}

func (f *File[D]) Path() string { return f.path }

func (f *File[D]) Handle() (Handle[D], error) {
	fd, err := unix.Open(f.path, unix.O_RDWR|unix.O_CREAT|unix.O_CLOEXEC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	return &fileHandle[D]{fd: fd, path: f.path}, nil
}

type fileHandle[D Data] struct {
	fd   int
	path string
}

func (h *fileHandle[D]) flock(how int) error {
	if h.fd < 0 {
		return ErrClosed
	}
	for {
		err := unix.Flock(h.fd, how)
		if !errors.Is(err, unix.EINTR) {
			if err != nil {
				return fmt.Errorf("flock %s: %w", h.path, err)
			}
			return nil
		}
	}
}

func (h *fileHandle[D]) Lock() error   { return h.flock(unix.LOCK_EX) }
func (h *fileHandle[D]) Unlock() error { return h.flock(unix.LOCK_UN) }

func (h *fileHandle[D]) Load(d *D) (bool, error) {
	if h.fd < 0 {
		return false, ErrClosed
	}
	buf := make([]byte, recordSize[D]())
	n, err := unix.Pread(h.fd, buf, 0)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", h.path, err)
	}
	if n < len(buf) {
		return false, nil
	}
	if err := decode(d, buf); err != nil {
		return false, nil
	}
	return true, nil
}

func (h *fileHandle[D]) Store(d *D) error {
	if h.fd < 0 {
		return ErrClosed
	}
	buf := encode(d)
	n, err := unix.Pwrite(h.fd, buf, 0)
	if err != nil {
		return fmt.Errorf("write %s: %w", h.path, err)
	}
	if n < len(buf) {
		return fmt.Errorf("write %s: %w", h.path, io.ErrShortWrite)
	}
	if err := unix.Ftruncate(h.fd, int64(len(buf))); err != nil {
		return fmt.Errorf("truncate %s: %w", h.path, err)
	}
	return nil
}

func (h *fileHandle[D]) Close() error {
	if h.fd < 0 {
		return nil
	}
	err := unix.Close(h.fd)
	h.fd = -1
	return err
}
