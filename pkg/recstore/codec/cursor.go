package codec

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
)

// NoLimit disables cursor boundary.
const NoLimit = -1

const defaultBufferSize = 4096

// Cursor is a forward-only reader that tracks its absolute position in the
// stream and refuses to read past a boundary.
type Cursor struct {
	r     *bufio.Reader
	pos   int64
	limit int64
}

// NewCursor returns Cursor reading r. Pos is the absolute position r starts
// at, limit is the absolute position reading stops at (NoLimit for none).
func NewCursor(r io.Reader, pos, limit int64) *Cursor {
	return &Cursor{
		r:     bufio.NewReaderSize(r, defaultBufferSize),
		pos:   pos,
		limit: limit,
	}
}

// Pos returns absolute position of the next byte.
func (c *Cursor) Pos() int64 { return c.pos }

// Limit returns the boundary of the cursor.
func (c *Cursor) Limit() int64 { return c.limit }

// AtEnd checks whether the boundary is reached or the stream is exhausted.
func (c *Cursor) AtEnd() bool {
	if c.limit >= 0 && c.pos >= c.limit {
		return true
	}
	_, err := c.r.Peek(1)
	return err != nil
}

func (c *Cursor) left() int64 {
	if c.limit < 0 {
		return -1
	}
	return c.limit - c.pos
}

// ReadByte reads single byte. It returns io.EOF at the boundary and
// io.ErrUnexpectedEOF if the stream ends before it.
func (c *Cursor) ReadByte() (byte, error) {
	if c.left() == 0 {
		return 0, io.EOF
	}
	b, err := c.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) && c.limit >= 0 {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	c.pos++
	return b, nil
}

// ReadUntil reads bytes up to delim and returns them without delim. Delim
// is consumed. Reading more than max bytes or meeting the boundary before
// delim fails with BufferError.
func (c *Cursor) ReadUntil(delim byte, max int, op, field string) ([]byte, error) {
	var res []byte
	for {
		b, err := c.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, recerr.Buffer(op, "too few bytes to read %s", field)
			}
			return nil, recerr.Wrap(op, err, field)
		}
		if b == delim {
			return res, nil
		}
		if len(res) >= max {
			return nil, recerr.Buffer(op, "%s exceeds %d bytes", field, max)
		}
		res = append(res, b)
	}
}

// ReadFull reads exactly n bytes.
func (c *Cursor) ReadFull(n int64, op, field string) ([]byte, error) {
	if l := c.left(); l >= 0 && l < n {
		return nil, recerr.Buffer(op, "%s of %d bytes crosses the boundary at %d", field, n, c.limit)
	}
	var buf bytes.Buffer
	k, err := io.CopyN(&buf, c.r, n)
	c.pos += k
	if err != nil {
		return nil, recerr.Wrap(op, err, field)
	}
	return buf.Bytes(), nil
}

// Skip discards n bytes.
func (c *Cursor) Skip(n int64, op, field string) error {
	if l := c.left(); l >= 0 && l < n {
		return recerr.Buffer(op, "%s of %d bytes crosses the boundary at %d", field, n, c.limit)
	}
	k, err := c.r.Discard(int(n))
	c.pos += int64(k)
	if err != nil {
		return recerr.Wrap(op, err, field)
	}
	return nil
}
