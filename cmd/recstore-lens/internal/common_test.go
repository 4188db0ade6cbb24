package common_test

import (
	"path/filepath"
	"testing"

	common "github.com/nspcc-dev/recstore/cmd/recstore-lens/internal"
	"github.com/nspcc-dev/recstore/pkg/recstore/compression"
	"github.com/nspcc-dev/recstore/pkg/recstore/container"
	"github.com/nspcc-dev/recstore/pkg/recstore/entity"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")

	src, err := container.New("stored", path)
	require.NoError(t, err)
	b, err := entity.NewBlob("b", "value", nil)
	require.NoError(t, err)
	require.NoError(t, src.Add(b))
	require.NoError(t, src.Export(compression.None))
	require.NoError(t, src.Close())

	t.Run("name from header", func(t *testing.T) {
		s, err := common.OpenStore(common.StorePrm{Path: path})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		require.Equal(t, "stored", s.Name())
		require.Equal(t, "none", s.Level)
		require.False(t, s.MaintainBorrows)

		rec, err := s.Load("b", false)
		require.NoError(t, err)
		require.Equal(t, "value", string(rec.(*entity.Blob).Value().([]byte)))
	})

	t.Run("env config", func(t *testing.T) {
		t.Setenv("RECSTORE_STORE_PATH", path)
		t.Setenv("RECSTORE_STORE_NAME", "renamed")
		t.Setenv("RECSTORE_STORE_MAINTAIN_BORROWS", "true")

		borrows := false
		s, err := common.OpenStore(common.StorePrm{Borrows: &borrows})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		require.Equal(t, "renamed", s.Name())
		require.False(t, s.MaintainBorrows)
	})

	t.Run("no path", func(t *testing.T) {
		_, err := common.OpenStore(common.StorePrm{})
		require.Error(t, err)
	})

	t.Run("unknown blob codec", func(t *testing.T) {
		t.Setenv("RECSTORE_STORE_BLOB_CODEC", "xml")
		_, err := common.OpenStore(common.StorePrm{Path: path})
		require.ErrorContains(t, err, "xml")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := common.OpenStore(common.StorePrm{Path: filepath.Join(t.TempDir(), "nope.db")})
		require.ErrorIs(t, err, container.ErrMissingFile)
	})
}
