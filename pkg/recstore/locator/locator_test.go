package locator_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
	"github.com/nspcc-dev/recstore/pkg/recstore/locator"
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
	"github.com/stretchr/testify/require"
)

type record struct {
	marker  byte
	title   string
	content string
}

func payload(recs ...record) []byte {
	var res []byte
	for _, r := range recs {
		res = codec.AppendSubHeader(res, r.marker, r.title, len(r.content))
		res = append(res, r.content...)
		res = append(res, '\n')
	}
	return res
}

func collect(t *testing.T, s *locator.Scanner) []locator.Span {
	var res []locator.Span
	for s.Next() {
		res = append(res, s.Span())
	}
	require.NoError(t, s.Err())
	return res
}

// noSeek hides io.Seeker of the underlying reader.
type noSeek struct{ io.Reader }

func TestScanner(t *testing.T) {
	data := payload(
		record{'?', "XX", "xx"},
		record{'?', "AX", "ax"},
		record{'?', "X", "first"},
		record{'=', "decoy", "?X:5\nfake!\n=X:1\ny"},
		record{'?', "X", ""},
		record{'=', "tail", "k;v\x00"},
	)

	readers := map[string]func() io.Reader{
		"seeker":   func() io.Reader { return bytes.NewReader(data) },
		"stream":   func() io.Reader { return noSeek{bytes.NewReader(data)} },
		"one byte": func() io.Reader { return iotest.OneByteReader(bytes.NewReader(data)) },
	}

	for name, newReader := range readers {
		for _, chunk := range []int{1, 3, 7, 4096} {
			t.Run(name, func(t *testing.T) {
				spans := collect(t, locator.New(newReader(), "X", locator.WithChunkSize(chunk)))
				require.Len(t, spans, 2)

				first := spans[0]
				require.Equal(t, "X", first.Title)
				require.EqualValues(t, '?', first.Marker)
				require.Equal(t, "first", string(data[first.ContentStart:first.End()]))
				require.EqualValues(t, bytes.Index(data, []byte("?X:5\nfirst")), first.Start)
				require.EqualValues(t, codec.HeaderLen("X", 5), first.ContentStart-first.Start)

				require.Zero(t, spans[1].Length)
				require.Equal(t, byte('\n'), data[spans[1].End()])
			})
		}
	}

	t.Run("offset", func(t *testing.T) {
		const off = 100
		spans := collect(t, locator.New(bytes.NewReader(data), "tail", locator.WithOffset(off)))
		require.Len(t, spans, 1)
		require.Equal(t, "k;v\x00", string(data[spans[0].ContentStart-off:spans[0].End()-off]))
	})

	t.Run("missing", func(t *testing.T) {
		require.Empty(t, collect(t, locator.New(bytes.NewReader(data), "Y")))
		require.Empty(t, collect(t, locator.New(bytes.NewReader(nil), "X")))
	})

	t.Run("long title", func(t *testing.T) {
		title := strings.Repeat("t", 10000)
		data := payload(record{'=', title, "a;b\x00"}, record{'?', "x", "1"})
		spans := collect(t, locator.New(noSeek{bytes.NewReader(data)}, title, locator.WithChunkSize(16)))
		require.Len(t, spans, 1)
		require.EqualValues(t, 4, spans[0].Length)
	})
}

func TestScannerErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		data string
		kind error
	}{
		"invalid marker":    {"$X:1\na\n", recerr.ErrSubHeader},
		"invalid length":    {"?X:-1\na\n", recerr.ErrSubHeader},
		"truncated header":  {"?X:1", recerr.ErrBuffer},
		"truncated content": {"?Y:100\nabc", recerr.ErrBuffer},
		"bad separator":     {"?Y:1\naX?X:1\nb\n", recerr.ErrSubHeader},
	} {
		t.Run(name, func(t *testing.T) {
			s := locator.New(noSeek{strings.NewReader(tc.data)}, "X", locator.WithChunkSize(2))
			for s.Next() {
			}
			require.ErrorIs(t, s.Err(), tc.kind)
			require.False(t, s.Next())
		})
	}
}
