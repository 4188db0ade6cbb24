package compression_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/nspcc-dev/recstore/pkg/recstore/compression"
	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, b := range []byte("NCSX") {
		l, err := compression.ParseLevel(b)
		require.NoError(t, err)
		require.EqualValues(t, b, l)
	}

	_, err := compression.ParseLevel('Z')
	require.ErrorIs(t, err, recerr.ErrHeader)

	l, err := compression.ParseLevelString("secured-compressed")
	require.NoError(t, err)
	require.Equal(t, compression.SecuredCompressed, l)
	require.Equal(t, "secured-compressed", l.String())

	l, err = compression.ParseLevelString("C")
	require.NoError(t, err)
	require.Equal(t, compression.Compressed, l)

	_, err = compression.ParseLevelString("zip")
	require.ErrorIs(t, err, recerr.ErrHeader)
}

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("=words:12\nhello;world\x00\n"), 100)

	for _, l := range []compression.Level{compression.None, compression.Compressed, compression.SecuredCompressed} {
		t.Run(l.String(), func(t *testing.T) {
			var buf bytes.Buffer

			w, err := compression.NewWriter(l, &buf, int64(len(payload)))
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			if l.Compressed() {
				require.Less(t, buf.Len(), len(payload))
			} else {
				require.Equal(t, payload, buf.Bytes())
			}

			r, err := compression.NewReader(l, &buf, int64(len(payload)))
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			require.Equal(t, payload, got)
		})
	}
}

func TestDeclaredSizeBoundsReader(t *testing.T) {
	payload := []byte("0123456789")

	var buf bytes.Buffer
	w, err := compression.NewWriter(compression.Compressed, &buf, int64(len(payload)))
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := compression.NewReader(compression.Compressed, &buf, 4)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, payload[:4], got)
}

func TestSizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	w, err := compression.NewWriter(compression.Compressed, &buf, 100)
	require.NoError(t, err)
	_, err = w.Write([]byte("short"))
	require.NoError(t, err)
	require.Error(t, w.Close())
}

func TestCorruption(t *testing.T) {
	r, err := compression.NewReader(compression.Compressed, bytes.NewReader([]byte("definitely not zstd")), 10)
	require.NoError(t, err)

	_, err = io.ReadAll(r)
	require.ErrorIs(t, err, recerr.ErrCorruption)
}

func TestSecured(t *testing.T) {
	_, err := compression.NewReader(compression.Secured, bytes.NewReader(nil), 0)
	require.ErrorIs(t, err, recerr.ErrUnsupported)

	_, err = compression.NewWriter(compression.Secured, io.Discard, 0)
	require.ErrorIs(t, err, recerr.ErrUnsupported)

	_, err = compression.NewReader(compression.Level('Q'), bytes.NewReader(nil), 0)
	require.ErrorIs(t, err, recerr.ErrHeader)
}

func TestLevelCheck(t *testing.T) {
	for _, l := range []compression.Level{compression.None, compression.Compressed, compression.SecuredCompressed} {
		require.NoError(t, l.Check("export"))
	}
	require.ErrorIs(t, compression.Secured.Check("export"), recerr.ErrUnsupported)
	require.ErrorIs(t, compression.Level('Q').Check("export"), recerr.ErrHeader)
}
