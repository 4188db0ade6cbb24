package index_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/nspcc-dev/recstore/pkg/recstore/index"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := index.New[int]()
	require.Zero(t, r.Len())

	r.Put("a", 1)
	r.Put("b", 2)
	r.Put("a", 3)

	v, ok := r.Get("a")
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, 2, r.Len())
	require.ElementsMatch(t, []string{"a", "b"}, r.Names())

	_, ok = r.Get("c")
	require.False(t, ok)

	r.Delete("b")
	require.Equal(t, 1, r.Len())

	r.Reset()
	require.Zero(t, r.Len())
	_, ok = r.Get("a")
	require.False(t, ok)
}

func TestRegistryConcurrent(t *testing.T) {
	const n = 100

	r := index.New[int]()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Put(strconv.Itoa(i), i)
			_, _ = r.Get(strconv.Itoa(i))
		}()
	}
	wg.Wait()

	require.Equal(t, n, r.Len())
}
