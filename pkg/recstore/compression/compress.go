package compression

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
)

// Level is a one-character tag controlling how the payload region of a
// database file is framed.
type Level byte

// Supported levels.
const (
	None              Level = 'N'
	Compressed        Level = 'C'
	Secured           Level = 'S'
	SecuredCompressed Level = 'X'
)

// ParseLevel converts tag byte into Level.
func ParseLevel(b byte) (Level, error) {
	switch l := Level(b); l {
	case None, Compressed, Secured, SecuredCompressed:
		return l, nil
	default:
		return 0, recerr.Header("parse_level", "'%c' is invalid", b)
	}
}

// ParseLevelString converts level name ("none", "compressed", "secured",
// "secured-compressed") or a tag character into Level.
func ParseLevelString(s string) (Level, error) {
	switch s {
	case "none", "":
		return None, nil
	case "compressed":
		return Compressed, nil
	case "secured":
		return Secured, nil
	case "secured-compressed":
		return SecuredCompressed, nil
	}
	if len(s) == 1 {
		return ParseLevel(s[0])
	}
	return 0, recerr.Header("parse_level", "%q is invalid", s)
}

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Compressed:
		return "compressed"
	case Secured:
		return "secured"
	case SecuredCompressed:
		return "secured-compressed"
	default:
		return fmt.Sprintf("unknown(%c)", byte(l))
	}
}

// Compressed checks whether payload region is zstd-framed at the level.
func (l Level) Compressed() bool {
	return l == Compressed || l == SecuredCompressed
}

// Check returns UnsupportedError if payloads can not be framed at the level
// and HeaderError for unknown levels.
func (l Level) Check(op string) error {
	switch l {
	case None, Compressed, SecuredCompressed:
		return nil
	case Secured:
		return recerr.Unsupported(op, "secured database")
	default:
		return recerr.Header(op, "'%c' is invalid", byte(l))
	}
}

// NewReader wraps r into a reader of the uncompressed payload region.
// Size is the declared uncompressed payload length, the returned reader
// never yields more. For None size is ignored and r is passed through.
//
// Secured level is not implemented. SecuredCompressed applies only the
// compression half.
func NewReader(l Level, r io.Reader, size int64) (io.ReadCloser, error) {
	switch l {
	case None:
		return io.NopCloser(r), nil
	case Compressed, SecuredCompressed:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, recerr.Corruption("level_decompile", err, "zstd decoder")
		}
		return &decompressor{
			dec: dec,
			r:   io.LimitReader(dec, size),
		}, nil
	case Secured:
		return nil, recerr.Unsupported("level_decompile", "secured database")
	default:
		return nil, recerr.Header("level_decompile", "'%c' is invalid", byte(l))
	}
}

// NewWriter wraps w into a writer of the payload region. Size is the exact
// uncompressed payload length, it is stored in the compressed frame and
// Close fails if a different number of bytes was written. Close never closes
// w.
func NewWriter(l Level, w io.Writer, size int64) (io.WriteCloser, error) {
	switch l {
	case None:
		return nopWriteCloser{w}, nil
	case Compressed, SecuredCompressed:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		enc.ResetContentSize(w, size)
		return enc, nil
	case Secured:
		return nil, recerr.Unsupported("level_compile", "secured database")
	default:
		return nil, recerr.Header("level_compile", "'%c' is invalid", byte(l))
	}
}

type decompressor struct {
	dec *zstd.Decoder
	r   io.Reader
}

func (d *decompressor) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = recerr.Corruption("read", err, "compressed payload is not in zstd format")
	}
	return n, err
}

func (d *decompressor) Close() error {
	d.dec.Close()
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
