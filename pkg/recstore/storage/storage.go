// Package storage defines the file abstraction store containers work on.
package storage

import (
	"io"
)

// Mode is a file open mode.
type Mode uint8

const (
	// ModeRead opens existing file for reading.
	ModeRead Mode = iota
	// ModeReadWrite opens existing file for reading and writing.
	ModeReadWrite
	// ModeCreate creates or truncates file and opens it for reading and
	// writing.
	ModeCreate
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeReadWrite:
		return "read-write"
	case ModeCreate:
		return "create"
	default:
		return "unknown"
	}
}

// File is an open store file.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.ReaderAt
	io.WriterAt
	io.Closer

	// Truncate changes the size of the file.
	Truncate(size int64) error
}

// Backend provides access to store files by path.
//
// Size and Open of a missing file return an error matching fs.ErrNotExist.
type Backend interface {
	// Open opens file at path in the given mode.
	Open(path string, mode Mode) (File, error)
	// Size returns current file size.
	Size(path string) (int64, error)
	// Exists checks whether file exists.
	Exists(path string) (bool, error)
}
