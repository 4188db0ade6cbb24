package util

import (
	"errors"
)

// Future is a handle to the result of a function submitted to a WorkerPool.
type Future[T any] struct {
	done chan struct{}
	res  T
	err  error
}

// Go submits fn to pool and returns handle to its result. If the pool
// rejects the function, the returned Future is already resolved with the
// rejection error.
func Go[T any](pool WorkerPool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	err := pool.Submit(func() {
		defer close(f.done)
		f.res, f.err = fn()
	})
	if err != nil {
		var zero T
		return Resolved(zero, err)
	}

	return f
}

// Resolved returns Future which is already completed with the given result.
func Resolved[T any](res T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), res: res, err: err}
	close(f.done)
	return f
}

// Get blocks until the result is ready and returns it.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.res, f.err
}

// Wait joins all the futures. Results are returned in the same order, errors
// of all failed futures are joined.
func Wait[T any](fs []*Future[T]) ([]T, error) {
	res := make([]T, len(fs))
	var errs []error

	for i := range fs {
		r, err := fs[i].Get()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res[i] = r
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return res, nil
}
