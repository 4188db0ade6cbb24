// Package memory implements in-memory storage.Backend. It is mostly useful
// for tests and ephemeral stores.
package memory

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/nspcc-dev/recstore/pkg/recstore/storage"
)

type (
	// Backend keeps files in memory. Handles opened for the same path share
	// contents.
	Backend struct {
		mtx   sync.RWMutex
		files map[string]*data
	}

	data struct {
		mtx sync.RWMutex
		b   []byte
	}

	file struct {
		d        *data
		pos      int64
		writable bool
		closed   bool
	}
)

var (
	_ storage.Backend = (*Backend)(nil)
	_ storage.File    = (*file)(nil)

	errClosed   = errors.New("file already closed")
	errReadOnly = errors.New("file opened read-only")
)

// New returns empty Backend.
func New() *Backend {
	return &Backend{files: make(map[string]*data)}
}

// Open implements storage.Backend.
func (b *Backend) Open(p string, mode storage.Mode) (storage.File, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	d, ok := b.files[p]
	switch mode {
	case storage.ModeRead, storage.ModeReadWrite:
		if !ok {
			return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
		}
	case storage.ModeCreate:
		if !ok {
			d = new(data)
			b.files[p] = d
		}
		d.mtx.Lock()
		d.b = d.b[:0]
		d.mtx.Unlock()
	default:
		return nil, fmt.Errorf("unsupported open mode %s", mode)
	}

	return &file{d: d, writable: mode != storage.ModeRead}, nil
}

// Size implements storage.Backend.
func (b *Backend) Size(p string) (int64, error) {
	b.mtx.RLock()
	d, ok := b.files[p]
	b.mtx.RUnlock()
	if !ok {
		return 0, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}

	d.mtx.RLock()
	defer d.mtx.RUnlock()
	return int64(len(d.b)), nil
}

// Exists implements storage.Backend.
func (b *Backend) Exists(p string) (bool, error) {
	b.mtx.RLock()
	_, ok := b.files[p]
	b.mtx.RUnlock()
	return ok, nil
}

// Bytes returns copy of the file contents.
func (b *Backend) Bytes(p string) ([]byte, bool) {
	b.mtx.RLock()
	d, ok := b.files[p]
	b.mtx.RUnlock()
	if !ok {
		return nil, false
	}

	d.mtx.RLock()
	defer d.mtx.RUnlock()
	return append([]byte(nil), d.b...), true
}

// Put replaces the file contents with a copy of v creating the file if
// needed.
func (b *Backend) Put(p string, v []byte) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.files[p] = &data{b: append([]byte(nil), v...)}
}

func (f *file) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.pos)
	f.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

func (f *file) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, errClosed
	}
	if off < 0 {
		return 0, errors.New("negative offset")
	}

	f.d.mtx.RLock()
	defer f.d.mtx.RUnlock()

	if off >= int64(len(f.d.b)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, f.d.b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *file) Write(p []byte) (int, error) {
	n, err := f.WriteAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

func (f *file) WriteAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, errClosed
	}
	if !f.writable {
		return 0, errReadOnly
	}
	if off < 0 {
		return 0, errors.New("negative offset")
	}

	f.d.mtx.Lock()
	defer f.d.mtx.Unlock()

	if end := off + int64(len(p)); end > int64(len(f.d.b)) {
		f.d.b = append(f.d.b, make([]byte, end-int64(len(f.d.b)))...)
	}
	return copy(f.d.b[off:], p), nil
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, errClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = f.pos + offset
	case io.SeekEnd:
		f.d.mtx.RLock()
		abs = int64(len(f.d.b)) + offset
		f.d.mtx.RUnlock()
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	f.pos = abs
	return abs, nil
}

func (f *file) Truncate(size int64) error {
	if f.closed {
		return errClosed
	}
	if !f.writable {
		return errReadOnly
	}
	if size < 0 {
		return errors.New("negative size")
	}

	f.d.mtx.Lock()
	defer f.d.mtx.Unlock()

	if size <= int64(len(f.d.b)) {
		f.d.b = f.d.b[:size]
	} else {
		f.d.b = append(f.d.b, make([]byte, size-int64(len(f.d.b)))...)
	}
	return nil
}

func (f *file) Close() error {
	if f.closed {
		return errClosed
	}
	f.closed = true
	return nil
}
