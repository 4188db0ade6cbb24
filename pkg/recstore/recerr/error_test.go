package recerr_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/nspcc-dev/recstore/pkg/recstore/recerr"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	err := recerr.Borrow("make_value", "unable to borrow %q for %q", "hello", "msg")

	require.ErrorIs(t, err, recerr.ErrBorrow)
	require.NotErrorIs(t, err, recerr.ErrHeader)
	require.Equal(t, `BorrowError [invalid borrow] : unable to borrow "hello" for "msg" (in make_value)`, err.Error())

	var e *recerr.Error
	require.True(t, errors.As(fmt.Errorf("load: %w", err), &e))
	require.Equal(t, "BorrowError", e.Name())
	require.Equal(t, "make_value", e.Op())
	require.Equal(t, recerr.ErrBorrow, e.Kind())
}

func TestCorruptionKeepsCause(t *testing.T) {
	cause := errors.New("magic number mismatch")
	err := recerr.Corruption("load", cause, "database %q is not in zstd format", "db")

	require.ErrorIs(t, err, recerr.ErrCorruption)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "magic number mismatch")
}

func TestWrap(t *testing.T) {
	require.NoError(t, recerr.Wrap("op", nil, "title"))

	for _, eof := range []error{io.EOF, io.ErrUnexpectedEOF} {
		err := recerr.Wrap("get_sub_header", eof, "title")
		require.ErrorIs(t, err, recerr.ErrBuffer)
	}

	corrupted := recerr.Corruption("read", io.ErrUnexpectedEOF, "truncated frame")
	err := recerr.Wrap("get_sub_header", corrupted, "title")
	require.ErrorIs(t, err, recerr.ErrCorruption)
	require.NotErrorIs(t, err, recerr.ErrBuffer)

	other := errors.New("disk failure")
	err = recerr.Wrap("get_sub_header", other, "title")
	require.ErrorIs(t, err, other)
	require.NotErrorIs(t, err, recerr.ErrBuffer)
}

func TestKinds(t *testing.T) {
	for kind, err := range map[error]error{
		recerr.ErrHeader:      recerr.Header("op", "x"),
		recerr.ErrBuffer:      recerr.Buffer("op", "x"),
		recerr.ErrSubHeader:   recerr.SubHeader("op", "x"),
		recerr.ErrUnsupported: recerr.Unsupported("op", "x"),
	} {
		require.ErrorIs(t, err, kind)
	}
}
