package codec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nspcc-dev/recstore/pkg/recstore/compression"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
)

const (
	headerFieldSeparator = ';'
	headerTerminator     = '\n'

	// maxHeaderField limits each of the database header fields.
	maxHeaderField = 4096
)

// Header is a database file header:
//
//	<level><name>;<path>;<size>;\n
//
// Size is empty for the None level and holds decimal uncompressed payload
// length otherwise.
type Header struct {
	Level compression.Level
	Name  string
	Path  string

	// Size is the payload region length after decompression. For None it
	// is computed from the file size.
	Size int64
	// Len is the header length in bytes, payload region starts right
	// after it.
	Len int64
}

// CheckHeaderField checks that database name or path can be framed.
func CheckHeaderField(s string) error {
	if strings.ContainsAny(s, ";\n") {
		return fmt.Errorf("%w: header field %q contains framing characters", entity.ErrInvalidName, s)
	}
	if len(s) > maxHeaderField {
		return fmt.Errorf("%w: header field exceeds %d bytes", entity.ErrInvalidName, maxHeaderField)
	}
	return nil
}

// EncodeHeader serializes database header. Size is written for compressed
// levels only.
func EncodeHeader(l compression.Level, name, path string, size int64) ([]byte, error) {
	if err := CheckHeaderField(name); err != nil {
		return nil, err
	}
	if err := CheckHeaderField(path); err != nil {
		return nil, err
	}

	res := make([]byte, 0, len(name)+len(path)+24)
	res = append(res, byte(l))
	res = append(res, name...)
	res = append(res, headerFieldSeparator)
	res = append(res, path...)
	res = append(res, headerFieldSeparator)
	if l != compression.None {
		res = strconv.AppendInt(res, size, 10)
	}
	res = append(res, headerFieldSeparator, headerTerminator)
	return res, nil
}

// ReadHeader reads database header from the beginning of r. FileSize bounds
// the read and is used to compute Size of uncompressed files.
func ReadHeader(r io.Reader, fileSize int64) (Header, error) {
	const op = "get_db_header"

	c := NewCursor(r, 0, fileSize)

	b, err := c.ReadByte()
	if err != nil {
		return Header{}, recerr.Buffer(op, "too few bytes in headers")
	}
	l, err := compression.ParseLevel(b)
	if err != nil {
		return Header{}, err
	}

	var h = Header{Level: l}

	name, err := c.ReadUntil(headerFieldSeparator, maxHeaderField, op, "database name")
	if err != nil {
		return Header{}, err
	}
	path, err := c.ReadUntil(headerFieldSeparator, maxHeaderField, op, "database path")
	if err != nil {
		return Header{}, err
	}
	rawSize, err := c.ReadUntil(headerFieldSeparator, 20, op, "payload size")
	if err != nil {
		return Header{}, err
	}
	b, err = c.ReadByte()
	if err != nil {
		return Header{}, recerr.Buffer(op, "too few bytes in headers")
	}
	if b != headerTerminator {
		return Header{}, recerr.Header(op, "unexpected byte 0x%02x after header fields", b)
	}

	h.Name = string(name)
	h.Path = string(path)
	h.Len = c.Pos()

	if l == compression.None {
		h.Size = fileSize - h.Len
		return h, nil
	}

	h.Size, err = strconv.ParseInt(string(rawSize), 10, 64)
	if err != nil || h.Size < 0 {
		return Header{}, recerr.Header(op, "invalid payload size %q", rawSize)
	}

	return h, nil
}
