/*
Package patch replaces one framed sub-record of an uncompressed store file
in place.

The replaced span starts at the sub-record marker and ends right after its
content; the '\n' separator following it stays in the tail. If the new
record is longer than the old span, the tail is read into memory first and
written back after the new record. If it is shorter, the new record is
written, the tail is moved towards the file start and the file is truncated.
Equal sizes need neither.
*/
package patch

import (
	"errors"
	"fmt"
	"io"

	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
)

// File is a random access file which can be truncated.
type File interface {
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
}

// Prm groups Apply parameters.
type Prm struct {
	// ContentStart is the absolute position of the first content byte of the
	// replaced sub-record.
	ContentStart int64
	// OldLength is the content length of the replaced sub-record.
	OldLength int64
	// Title of the replaced sub-record.
	Title string
	// FileSize is the current file size.
	FileSize int64
	// Record is the new encoded sub-record: header and content without the
	// separator.
	Record []byte
}

// Res groups Apply results.
type Res struct {
	// Start is the absolute position of the replaced sub-record marker.
	Start int64
	// Delta is the file size change.
	Delta int64
	// Size is the new file size.
	Size int64
}

// ErrOutOfBounds is returned when the replaced span does not fit the file.
var ErrOutOfBounds = errors.New("span out of file bounds")

// moveChunk bounds memory used for shifting the tail on shrink.
const moveChunk = 64 << 10

// OldSpan returns the length of the replaced span: header and content.
func OldSpan(title string, oldLength int64) int64 {
	return codec.HeaderLen(title, oldLength) + oldLength
}

// Apply replaces the sub-record described by prm with prm.Record.
func Apply(f File, prm Prm) (Res, error) {
	oldSpan := OldSpan(prm.Title, prm.OldLength)
	start := prm.ContentStart - (oldSpan - prm.OldLength)
	end := prm.ContentStart + prm.OldLength

	if start < 0 || end > prm.FileSize {
		return Res{}, fmt.Errorf("%w: [%d:%d) of %d", ErrOutOfBounds, start, end, prm.FileSize)
	}

	delta := int64(len(prm.Record)) - oldSpan
	res := Res{
		Start: start,
		Delta: delta,
		Size:  prm.FileSize + delta,
	}

	switch {
	case delta == 0:
		if _, err := f.WriteAt(prm.Record, start); err != nil {
			return Res{}, fmt.Errorf("write record: %w", err)
		}
	case delta > 0:
		tail := make([]byte, prm.FileSize-end)
		if _, err := f.ReadAt(tail, end); err != nil && !errors.Is(err, io.EOF) {
			return Res{}, fmt.Errorf("read tail: %w", err)
		}
		if _, err := f.WriteAt(prm.Record, start); err != nil {
			return Res{}, fmt.Errorf("write record: %w", err)
		}
		if _, err := f.WriteAt(tail, start+int64(len(prm.Record))); err != nil {
			return Res{}, fmt.Errorf("write tail: %w", err)
		}
	default:
		if _, err := f.WriteAt(prm.Record, start); err != nil {
			return Res{}, fmt.Errorf("write record: %w", err)
		}
		if err := moveTail(f, end, start+int64(len(prm.Record)), prm.FileSize); err != nil {
			return Res{}, err
		}
		if err := f.Truncate(res.Size); err != nil {
			return Res{}, fmt.Errorf("truncate: %w", err)
		}
	}

	return res, nil
}

// moveTail copies [from:size) to dst < from in chunks going forward, so
// overlapping regions are handled correctly.
func moveTail(f File, from, dst, size int64) error {
	buf := make([]byte, min(moveChunk, size-from))
	for from < size {
		n := min(int64(len(buf)), size-from)
		if _, err := f.ReadAt(buf[:n], from); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read tail: %w", err)
		}
		if _, err := f.WriteAt(buf[:n], dst); err != nil {
			return fmt.Errorf("move tail: %w", err)
		}
		from += n
		dst += n
	}
	return nil
}
