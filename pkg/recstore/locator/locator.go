/*
Package locator finds framed sub-records by title in a payload stream
without loading the stream into memory.

The stream is read in bounded chunks. Sub-record headers are parsed from the
current window, content regions are skipped using the declared lengths (by
seeking when the stream supports it, by discarding otherwise), so bytes of
record content are never inspected and can not produce false matches. A
header straddling a chunk boundary is completed by reading the next chunk
into the kept tail of the window; if a single header does not fit into the
window at all, the window grows up to a hard limit.
*/
package locator

import (
	"bytes"
	"errors"
	"io"

	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
)

const (
	// DefaultChunkSize is the default scan window size.
	DefaultChunkSize = 4096
	// MaxChunkSize bounds window growth.
	MaxChunkSize = 1 << 20

	op = "find_sub_header"
)

// Span locates a sub-record in the stream. Positions are absolute: the
// offset given with WithOffset is added to every position.
type Span struct {
	Marker byte
	Title  string
	// Start is the position of the sub-record marker.
	Start int64
	// ContentStart is the position of the first content byte.
	ContentStart int64
	// Length is the declared content length.
	Length int64
}

// End returns the position right after the content.
func (s Span) End() int64 { return s.ContentStart + s.Length }

// Option configures Scanner.
type Option func(*Scanner)

// WithChunkSize sets initial scan window size.
func WithChunkSize(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.chunk = n
		}
	}
}

// WithOffset sets absolute position of the first stream byte.
func WithOffset(off int64) Option {
	return func(s *Scanner) {
		s.pos = off
	}
}

// Scanner lazily yields spans of sub-records titled exactly as requested.
// It is not safe for concurrent use.
type Scanner struct {
	r     io.Reader
	title []byte

	chunk int
	buf   []byte
	off   int
	n     int
	// pos is the absolute position of buf[off].
	pos int64
	eof bool

	skip    int64
	skipSep bool

	span Span
	err  error
}

// New returns Scanner looking for sub-records titled title in r. All
// matches are yielded, not only the first one.
func New(r io.Reader, title string, opts ...Option) *Scanner {
	s := &Scanner{
		r:     r,
		title: []byte(title),
		chunk: DefaultChunkSize,
	}
	for i := range opts {
		opts[i](s)
	}
	s.buf = make([]byte, s.chunk)
	return s
}

// Next advances to the next matching span. It returns false when the stream
// is exhausted or an error occurs, see Err.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	for {
		if err := s.skipContent(); err != nil {
			return s.fail(err)
		}

		hdr, ok, err := s.nextHeader()
		if err != nil {
			return s.fail(err)
		}
		if !ok {
			return false
		}

		s.skip = hdr.Length
		s.skipSep = true

		if hdr.Title == string(s.title) {
			s.span = hdr
			return true
		}
	}
}

// Span returns the current match.
func (s *Scanner) Span() Span { return s.span }

// Err returns the first error met, nil at clean end of stream.
func (s *Scanner) Err() error { return s.err }

func (s *Scanner) fail(err error) bool {
	s.err = err
	return false
}

// skipContent drops the content of the previously parsed sub-record and its
// trailing separator.
func (s *Scanner) skipContent() error {
	if s.skip > 0 {
		inWindow := int64(s.n - s.off)
		if s.skip <= inWindow {
			s.consume(int(s.skip))
			s.skip = 0
		} else {
			s.skip -= inWindow
			s.consume(int(inWindow))
			if err := s.skipStream(); err != nil {
				return err
			}
		}
	}

	if !s.skipSep {
		return nil
	}
	if s.off == s.n {
		if err := s.fill(); err != nil {
			return err
		}
		if s.off == s.n {
			s.skipSep = false
			return nil
		}
	}
	if s.buf[s.off] != '\n' {
		return recerr.SubHeader(op, "unexpected byte 0x%02x after sub-record at %d", s.buf[s.off], s.pos)
	}
	s.consume(1)
	s.skipSep = false
	return nil
}

func (s *Scanner) skipStream() error {
	if sk, ok := s.r.(io.Seeker); ok {
		if _, err := sk.Seek(s.skip, io.SeekCurrent); err != nil {
			return err
		}
		s.pos += s.skip
		s.skip = 0
		return nil
	}

	k, err := io.CopyN(io.Discard, s.r, s.skip)
	s.pos += k
	s.skip -= k
	if err != nil {
		if errors.Is(err, io.EOF) {
			return recerr.Buffer(op, "stream ended inside sub-record content at %d", s.pos)
		}
		return err
	}
	return nil
}

func (s *Scanner) consume(k int) {
	s.off += k
	s.pos += int64(k)
	if s.off == s.n {
		s.off, s.n = 0, 0
	}
}

// fill reads more data into the window keeping unconsumed bytes. The window
// grows when it is full.
func (s *Scanner) fill() error {
	if s.eof {
		return nil
	}
	if s.off > 0 {
		s.n = copy(s.buf, s.buf[s.off:s.n])
		s.off = 0
	}
	if s.n == len(s.buf) {
		if len(s.buf) >= MaxChunkSize {
			return recerr.SubHeader(op, "sub-record header at %d exceeds %d bytes", s.pos, MaxChunkSize)
		}
		grown := make([]byte, min(2*len(s.buf), MaxChunkSize))
		copy(grown, s.buf[:s.n])
		s.buf = grown
	}

	k, err := s.r.Read(s.buf[s.n:])
	s.n += k
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.eof = true
			return nil
		}
		return err
	}
	return nil
}

// nextHeader parses the sub-record header at the window start.
func (s *Scanner) nextHeader() (Span, bool, error) {
	for {
		window := s.buf[s.off:s.n]

		if len(window) > 0 {
			switch window[0] {
			case entity.MarkerGroup, entity.MarkerBlob:
			default:
				return Span{}, false, recerr.SubHeader(op, "invalid sub-header '%c' at %d", window[0], s.pos)
			}

			if colon := bytes.IndexByte(window[1:], ':'); colon >= 0 {
				rest := window[1+colon+1:]
				if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
					return s.parseHeader(window[0], window[1:1+colon], rest[:nl])
				}
			}
		}

		if s.eof {
			if len(window) == 0 {
				return Span{}, false, nil
			}
			return Span{}, false, recerr.Buffer(op, "too few bytes to read sub-header at %d", s.pos)
		}

		if err := s.fill(); err != nil {
			return Span{}, false, err
		}
	}
}

func (s *Scanner) parseHeader(marker byte, title, rawLen []byte) (Span, bool, error) {
	length, err := codec.ParseLength(rawLen)
	if err != nil {
		return Span{}, false, recerr.SubHeader(op, "invalid length %q of sub-record %q", rawLen, title)
	}

	hdrLen := 1 + len(title) + 1 + len(rawLen) + 1
	span := Span{
		Marker:       marker,
		Title:        string(title),
		Start:        s.pos,
		ContentStart: s.pos + int64(hdrLen),
		Length:       length,
	}
	s.consume(hdrLen)

	return span, true, nil
}
