package storage_test

import (
	"io"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/recstore/pkg/recstore/storage"
	"github.com/nspcc-dev/recstore/pkg/recstore/storage/fsbackend"
	"github.com/nspcc-dev/recstore/pkg/recstore/storage/memory"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]storage.Backend {
	return map[string]storage.Backend{
		"fs":     fsbackend.New(fsbackend.WithRoot(t.TempDir())),
		"memory": memory.New(),
	}
}

func TestBackend(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			const p = "sub/store.db"

			ok, err := b.Exists(p)
			require.NoError(t, err)
			require.False(t, ok)

			_, err = b.Size(p)
			require.ErrorIs(t, err, fs.ErrNotExist)
			_, err = b.Open(p, storage.ModeRead)
			require.ErrorIs(t, err, fs.ErrNotExist)

			f, err := b.Open(p, storage.ModeCreate)
			require.NoError(t, err)
			_, err = f.Write([]byte("hello, world"))
			require.NoError(t, err)
			_, err = f.WriteAt([]byte("HELLO"), 0)
			require.NoError(t, err)
			require.NoError(t, f.Truncate(5))
			require.NoError(t, f.Close())

			size, err := b.Size(p)
			require.NoError(t, err)
			require.EqualValues(t, 5, size)

			f, err = b.Open(p, storage.ModeRead)
			require.NoError(t, err)
			data, err := io.ReadAll(f)
			require.NoError(t, err)
			require.Equal(t, "HELLO", string(data))

			_, err = f.Seek(1, io.SeekStart)
			require.NoError(t, err)
			buf := make([]byte, 2)
			_, err = io.ReadFull(f, buf)
			require.NoError(t, err)
			require.Equal(t, "EL", string(buf))

			_, err = f.ReadAt(buf, 4)
			require.ErrorIs(t, err, io.EOF)
			require.NoError(t, f.Close())

			f, err = b.Open(p, storage.ModeReadWrite)
			require.NoError(t, err)
			_, err = f.WriteAt([]byte("!"), 5)
			require.NoError(t, err)
			require.NoError(t, f.Close())

			size, err = b.Size(p)
			require.NoError(t, err)
			require.EqualValues(t, 6, size)

			f, err = b.Open(p, storage.ModeCreate)
			require.NoError(t, err)
			require.NoError(t, f.Close())
			size, err = b.Size(p)
			require.NoError(t, err)
			require.Zero(t, size)
		})
	}
}

func TestFSBackendAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	b := fsbackend.New(fsbackend.WithRoot("/nonexistent"), fsbackend.WithPerm(0o600))

	p := filepath.Join(dir, "abs.db")
	f, err := b.Open(p, storage.ModeCreate)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ok, err := b.Exists(p)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryHelpers(t *testing.T) {
	b := memory.New()
	b.Put("x", []byte("abc"))

	data, ok := b.Bytes("x")
	require.True(t, ok)
	require.Equal(t, "abc", string(data))

	f, err := b.Open("x", storage.ModeRead)
	require.NoError(t, err)
	_, err = f.Write([]byte("z"))
	require.Error(t, err)
	require.Error(t, f.Truncate(0))
	require.NoError(t, f.Close())
	require.Error(t, f.Close())
}
