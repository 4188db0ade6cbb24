// Package fsbackend implements storage.Backend on top of the local file
// system.
package fsbackend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nspcc-dev/recstore/pkg/recstore/storage"
)

// Backend is a file system storage backend. Relative paths are resolved
// against the root directory.
type Backend struct {
	root string
	perm fs.FileMode
}

// Option is a Backend option.
type Option func(*Backend)

const defaultPerm = 0o640

// WithRoot sets root directory for relative paths, current directory by
// default.
func WithRoot(p string) Option {
	return func(b *Backend) {
		b.root = p
	}
}

// WithPerm sets permission bits of created files. Directories get the same
// bits plus search permission for everyone who can read.
func WithPerm(p fs.FileMode) Option {
	return func(b *Backend) {
		b.perm = p
	}
}

var _ storage.Backend = (*Backend)(nil)

// New returns new Backend.
func New(opts ...Option) *Backend {
	b := &Backend{perm: defaultPerm}
	for i := range opts {
		opts[i](b)
	}
	return b
}

func (b *Backend) resolve(p string) string {
	if filepath.IsAbs(p) || b.root == "" {
		return p
	}
	return filepath.Join(b.root, p)
}

// Open implements storage.Backend.
func (b *Backend) Open(p string, mode storage.Mode) (storage.File, error) {
	p = b.resolve(p)

	var flag int
	switch mode {
	case storage.ModeRead:
		flag = os.O_RDONLY
	case storage.ModeReadWrite:
		flag = os.O_RDWR
	case storage.ModeCreate:
		if err := os.MkdirAll(filepath.Dir(p), dirPerm(b.perm)); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	default:
		return nil, fmt.Errorf("unsupported open mode %s", mode)
	}

	f, err := os.OpenFile(p, flag, b.perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Size implements storage.Backend.
func (b *Backend) Size(p string) (int64, error) {
	fi, err := os.Stat(b.resolve(p))
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Exists implements storage.Backend.
func (b *Backend) Exists(p string) (bool, error) {
	_, err := os.Stat(b.resolve(p))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func dirPerm(p fs.FileMode) fs.FileMode {
	p |= 0o700
	if p&0o040 != 0 {
		p |= 0o010
	}
	if p&0o004 != 0 {
		p |= 0o001
	}
	return p
}
