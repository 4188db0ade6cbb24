package codec_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/nspcc-dev/recstore/pkg/recstore/codec"
	"github.com/nspcc-dev/recstore/pkg/recstore/compression"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
	"github.com/stretchr/testify/require"
)

func newDecoder(maintainBorrows bool) *codec.Decoder {
	return &codec.Decoder{
		Authoring:       entity.NewIndex(),
		Parse:           entity.NewIndex(),
		MaintainBorrows: maintainBorrows,
	}
}

func wordsGroup(t *testing.T) *entity.Group {
	idx := entity.NewIndex()

	hello, err := entity.NewValue(idx, "hello", entity.Bytes("world"))
	require.NoError(t, err)
	msg, err := entity.NewValue(idx, "msg", hello.Borrow())
	require.NoError(t, err)

	g, err := entity.NewGroup("words", hello, msg)
	require.NoError(t, err)
	return g
}

func decodeAll(t *testing.T, d *codec.Decoder, data []byte) []entity.Record {
	c := codec.NewCursor(bytes.NewReader(data), 0, int64(len(data)))

	var res []entity.Record
	for {
		rec, _, err := d.Next(c)
		if errors.Is(err, io.EOF) {
			return res
		}
		require.NoError(t, err)
		res = append(res, rec)
	}
}

func TestEncodeRecord(t *testing.T) {
	data, err := codec.EncodeRecord(wordsGroup(t))
	require.NoError(t, err)
	require.Equal(t, "=words:24\nhello;world\x00\nmsg;@hello\x00", string(data))

	hdr, content := codec.SplitRecord(data)
	require.Equal(t, "=words:24\n", string(hdr))
	require.Len(t, content, 24)
	require.EqualValues(t, len(hdr), codec.HeaderLen("words", 24))

	blob, err := entity.NewBlob("string", "Hello", nil)
	require.NoError(t, err)
	data, err = codec.EncodeRecord(blob)
	require.NoError(t, err)
	require.Equal(t, "?string:5\nHello", string(data))
}

func TestRoundTrip(t *testing.T) {
	idx := entity.NewIndex()

	var members []entity.Member
	for _, kv := range [][2]string{{"a", "1"}, {"b", ""}, {"c", "multi\nline"}, {"d", "semi;colon"}} {
		v, err := entity.NewValue(idx, kv[0], entity.Bytes(kv[1]))
		require.NoError(t, err)
		members = append(members, v)
	}
	pin, err := entity.NewPin(idx, entity.Bytes("pinned"))
	require.NoError(t, err)
	members = append(members, pin)

	g, err := entity.NewGroup("group", members...)
	require.NoError(t, err)

	data, err := codec.EncodeRecord(g)
	require.NoError(t, err)

	recs := decodeAll(t, newDecoder(true), data)
	require.Len(t, recs, 1)

	decoded, ok := recs[0].(*entity.Group)
	require.True(t, ok)
	require.Equal(t, "group", decoded.Title())
	require.Equal(t, g.Len(), decoded.Len())

	for i := 0; i < 4; i++ {
		want, _ := g.At(i)
		got, _ := decoded.At(i)
		require.Equal(t, want.Name(), got.Name())
		require.Equal(t, []byte(want.Payload().(entity.Bytes)), []byte(got.Payload().(entity.Bytes)))
	}

	got, _ := decoded.At(4)
	require.IsType(t, (*entity.Pin)(nil), got)
	require.Equal(t, entity.Bytes("pinned"), got.Payload())

	again, err := codec.EncodeRecord(decoded)
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestBorrowPolicies(t *testing.T) {
	data, err := codec.EncodeRecord(wordsGroup(t))
	require.NoError(t, err)

	t.Run("preserve", func(t *testing.T) {
		d := newDecoder(true)
		g := decodeAll(t, d, data)[0].(*entity.Group)

		require.Equal(t, 2, g.Len())

		hello, ok := g.Get("hello")
		require.True(t, ok)
		require.Equal(t, entity.Bytes("world"), hello.Payload())

		msg, ok := g.Get("msg")
		require.True(t, ok)
		ref, ok := msg.Payload().(*entity.Reference)
		require.True(t, ok)
		require.Equal(t, "hello", ref.Name())
		require.Same(t, hello, ref.Target())

		again, err := codec.EncodeRecord(g)
		require.NoError(t, err)
		require.Equal(t, data, again)
	})

	t.Run("flatten", func(t *testing.T) {
		d := newDecoder(false)
		g := decodeAll(t, d, data)[0].(*entity.Group)

		require.Equal(t, []string{"hello", "msg"}, g.Names())

		registered, ok := d.Parse.Get("hello")
		require.True(t, ok)
		msg, _ := g.Get("msg")
		require.Same(t, registered, msg)

		require.NoError(t, msg.SetPayload(entity.Bytes("there")))
		hello, _ := g.Get("hello")
		require.Equal(t, entity.Bytes("there"), hello.Payload())

		again, err := codec.EncodeRecord(g)
		require.NoError(t, err)
		require.Equal(t, "=words:23\nhello;there\x00\nmsg;there\x00", string(again))
	})

	t.Run("missing target", func(t *testing.T) {
		raw := []byte("=g:8\nx;@nope\x00\n")
		c := codec.NewCursor(bytes.NewReader(raw), 0, int64(len(raw)))
		_, _, err := newDecoder(true).Next(c)
		require.ErrorIs(t, err, recerr.ErrBorrow)
	})

	t.Run("across records", func(t *testing.T) {
		raw := []byte("=a:6\nx;one\x00\n=b:5\ny;@x\x00\n")
		d := newDecoder(true)
		recs := decodeAll(t, d, raw)
		require.Len(t, recs, 2)
		y, _ := recs[1].(*entity.Group).Get("y")
		require.Equal(t, "x", y.Payload().(*entity.Reference).Name())

		d.Parse.Reset()
		c := codec.NewCursor(bytes.NewReader(raw[12:]), 12, int64(len(raw)))
		_, _, err := d.Next(c)
		require.ErrorIs(t, err, recerr.ErrBorrow)
	})
}

func TestDecodePins(t *testing.T) {
	raw := []byte("=p:20\n!one\x00\n!two\x00\nk;@PIN0\x00\n")

	d := newDecoder(false)
	g := decodeAll(t, d, raw)[0].(*entity.Group)
	require.Equal(t, []string{"PIN0", "PIN1", "k"}, g.Names())

	first, _ := g.Get("PIN0")
	k, _ := g.Get("k")
	require.Same(t, first, k)
}

func TestDecodeErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		data []byte
		kind error
	}{
		"unknown marker":     {[]byte("$words:0\n\n"), recerr.ErrSubHeader},
		"non-numeric length": {[]byte("=words:1a\n"), recerr.ErrSubHeader},
		"leading zero":       {[]byte("=words:01\nx"), recerr.ErrSubHeader},
		"missing length":     {[]byte("=words"), recerr.ErrBuffer},
		"truncated content":  {[]byte("=words:100\nabc"), recerr.ErrBuffer},
		"unterminated value": {[]byte("=words:7\nhello;w\n"), recerr.ErrBuffer},
		"missing name":       {[]byte("=words:5\nhello\n"), recerr.ErrBuffer},
		"bad separator":      {[]byte("=words:8\na;1\x00Xb;2\x00\n"), recerr.ErrBuffer},
		"bad record end":     {[]byte("=w:4\na;1\x00X"), recerr.ErrSubHeader},
	} {
		t.Run(name, func(t *testing.T) {
			c := codec.NewCursor(bytes.NewReader(tc.data), 0, int64(len(tc.data)))
			_, _, err := newDecoder(true).Next(c)
			require.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestHeader(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		hdr, err := codec.EncodeHeader(compression.None, "database", "database.db", 123)
		require.NoError(t, err)
		require.Equal(t, "Ndatabase;database.db;;\n", string(hdr))

		file := append(hdr, "=a:0\n\n"...)
		h, err := codec.ReadHeader(bytes.NewReader(file), int64(len(file)))
		require.NoError(t, err)
		require.Equal(t, codec.Header{
			Level: compression.None,
			Name:  "database",
			Path:  "database.db",
			Size:  6,
			Len:   int64(len(hdr)),
		}, h)
	})

	t.Run("compressed", func(t *testing.T) {
		hdr, err := codec.EncodeHeader(compression.Compressed, "db", "db.bin", 77)
		require.NoError(t, err)
		require.Equal(t, "Cdb;db.bin;77;\n", string(hdr))

		h, err := codec.ReadHeader(bytes.NewReader(append(hdr, 0x28, 0xb5)), int64(len(hdr)+2))
		require.NoError(t, err)
		require.EqualValues(t, 77, h.Size)
		require.Equal(t, compression.Compressed, h.Level)
	})

	t.Run("invalid fields", func(t *testing.T) {
		_, err := codec.EncodeHeader(compression.None, "a;b", "p", 0)
		require.ErrorIs(t, err, entity.ErrInvalidName)
	})

	for name, tc := range map[string]struct {
		data string
		kind error
	}{
		"empty":          {"", recerr.ErrBuffer},
		"unknown level":  {"Qdb;p;;\n", recerr.ErrHeader},
		"too short":      {"Ndb;p", recerr.ErrBuffer},
		"no terminator":  {"Ndb;p;;X", recerr.ErrHeader},
		"bad size":       {"Cdb;p;xx;\n", recerr.ErrHeader},
		"missing size":   {"Cdb;p;;\n", recerr.ErrHeader},
		"secured header": {"Sdb;p;0;\n", nil},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := codec.ReadHeader(bytes.NewReader([]byte(tc.data)), int64(len(tc.data)))
			if tc.kind == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestReadSubHeaderAt(t *testing.T) {
	data := []byte("prefix=title:3\nabc\n")

	h, err := codec.ReadSubHeaderAt(bytes.NewReader(data), 6, int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, codec.SubHeader{
		Marker:       entity.MarkerGroup,
		Title:        "title",
		Length:       3,
		Start:        6,
		ContentStart: 15,
	}, h)
	require.EqualValues(t, 18, h.End())
	require.EqualValues(t, codec.HeaderLen("title", 3)+3, h.SpanLen())

	_, err = codec.ReadSubHeaderAt(bytes.NewReader(data), int64(len(data)), int64(len(data)))
	require.ErrorIs(t, err, io.EOF)
}
