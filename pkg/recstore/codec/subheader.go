package codec

import (
	"errors"
	"io"
	"strconv"

	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
)

const (
	titleTerminator  = ':'
	lengthTerminator = '\n'
	recordSeparator  = '\n'

	maxTitleLen  = 1 << 16
	maxLengthLen = 19
)

// SubHeader describes one framed sub-record:
//
//	<marker><title>:<length>\n<content>
//
// Positions are absolute in the payload region.
type SubHeader struct {
	Marker byte
	Title  string
	// Length is the content length.
	Length int64
	// Start is the position of the marker.
	Start int64
	// ContentStart is the position of the first content byte.
	ContentStart int64
}

// HeaderLen returns the length of the framed sub-record header for the given
// title and content length: marker, title, ':', decimal length and '\n'.
func HeaderLen(title string, length int64) int64 {
	return int64(1 + len(title) + 1 + len(strconv.FormatInt(length, 10)) + 1)
}

// End returns the position right after the content.
func (h SubHeader) End() int64 { return h.ContentStart + h.Length }

// SpanLen returns the length of the sub-record header and content.
func (h SubHeader) SpanLen() int64 { return h.End() - h.Start }

// AppendSubHeader appends framed sub-record header to dst.
func AppendSubHeader(dst []byte, marker byte, title string, length int) []byte {
	dst = append(dst, marker)
	dst = append(dst, title...)
	dst = append(dst, titleTerminator)
	dst = strconv.AppendInt(dst, int64(length), 10)
	return append(dst, lengthTerminator)
}

// ReadSubHeader reads next sub-record header from c. It returns io.EOF if
// there are no more sub-records.
func ReadSubHeader(c *Cursor) (SubHeader, error) {
	const op = "get_sub_header_item"

	h := SubHeader{Start: c.Pos()}

	marker, err := c.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return SubHeader{}, io.EOF
		}
		return SubHeader{}, recerr.Wrap(op, err, "sub-header marker")
	}
	switch marker {
	case entity.MarkerGroup, entity.MarkerBlob:
		h.Marker = marker
	default:
		return SubHeader{}, recerr.SubHeader(op, "invalid sub-header '%c' at %d", marker, h.Start)
	}

	title, err := c.ReadUntil(titleTerminator, maxTitleLen, "get_sub_header", "sub-record title")
	if err != nil {
		return SubHeader{}, err
	}
	rawLen, err := c.ReadUntil(lengthTerminator, maxLengthLen, "get_sub_header", "sub-record length")
	if err != nil {
		return SubHeader{}, err
	}

	h.Title = string(title)
	h.Length, err = ParseLength(rawLen)
	if err != nil {
		return SubHeader{}, recerr.SubHeader("get_sub_header", "invalid length %q of sub-record %q", rawLen, h.Title)
	}
	h.ContentStart = c.Pos()

	return h, nil
}

// ReadSubHeaderAt reads sub-record header located at pos of r. Limit is the
// end of the payload region.
func ReadSubHeaderAt(r io.ReaderAt, pos, limit int64) (SubHeader, error) {
	return ReadSubHeader(NewCursor(io.NewSectionReader(r, pos, limit-pos), pos, limit))
}

// ParseLength parses canonical decimal length: no sign, no leading zeros.
func ParseLength(raw []byte) (int64, error) {
	if len(raw) == 0 || len(raw) > 1 && raw[0] == '0' {
		return 0, strconv.ErrSyntax
	}
	for _, b := range raw {
		if b < '0' || b > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

// SkipSeparator consumes the '\n' following sub-record content if present.
func SkipSeparator(c *Cursor) error {
	if c.AtEnd() {
		return nil
	}
	b, err := c.ReadByte()
	if err != nil {
		return recerr.Wrap("skip_separator", err, "record separator")
	}
	if b != recordSeparator {
		return recerr.SubHeader("skip_separator", "unexpected byte 0x%02x after sub-record at %d", b, c.Pos()-1)
	}
	return nil
}
