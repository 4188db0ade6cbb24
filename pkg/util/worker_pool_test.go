package util_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/nspcc-dev/recstore/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestPseudoWorkerPool(t *testing.T) {
	p := util.NewPseudoWorkerPool()

	var called bool
	require.NoError(t, p.Submit(func() { called = true }))
	require.True(t, called)

	p.Release()
	require.ErrorIs(t, p.Submit(func() {}), util.ErrPoolClosed)
}

func TestFutures(t *testing.T) {
	for _, size := range []int{0, 1, 4} {
		t.Run("size="+strconv.Itoa(size), func(t *testing.T) {
			p, err := util.NewWorkerPool(size)
			require.NoError(t, err)
			t.Cleanup(p.Release)

			fs := make([]*util.Future[int], 10)
			for i := range fs {
				i := i
				fs[i] = util.Go(p, func() (int, error) { return i * i, nil })
			}

			res, err := util.Wait(fs)
			require.NoError(t, err)
			for i := range res {
				require.Equal(t, i*i, res[i])
			}
		})
	}

	t.Run("errors", func(t *testing.T) {
		errA, errB := errors.New("a"), errors.New("b")
		fs := []*util.Future[int]{
			util.Resolved(1, nil),
			util.Resolved(0, errA),
			util.Go(util.NewPseudoWorkerPool(), func() (int, error) { return 0, errB }),
		}

		_, err := util.Wait(fs)
		require.ErrorIs(t, err, errA)
		require.ErrorIs(t, err, errB)
	})

	t.Run("released pool", func(t *testing.T) {
		p := util.NewPseudoWorkerPool()
		p.Release()

		_, err := util.Go(p, func() (int, error) { return 1, nil }).Get()
		require.ErrorIs(t, err, util.ErrPoolClosed)
	})
}
