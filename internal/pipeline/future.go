package pipeline

import (
	"context"
	"sync"
)

// Mode fixes how an engine delivers results for its whole lifetime.
type Mode int

const (
	// Sync engines block in Flush/Commit and invoke callbacks inline.
	Sync Mode = iota + 1
	// Async engines return from FlushAsync/CommitAsync immediately and
	// complete a Future per operation.
	Async
)

func (m Mode) String() string {
	switch m {
	case Sync:
		return "sync"
	case Async:
		return "async"
	default:
		return "unknown"
	}
}

// Future is the eventual result of an async operation or batch.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func completedFuture[T any](val T, err error) *Future[T] {
	f := newFuture[T]()
	f.complete(val, err)
	return f
}

// complete sets the result. Only the first call has an effect.
func (f *Future[T]) complete(val T, err error) bool {
	completed := false
	f.once.Do(func() {
		f.val = val
		f.err = err
		close(f.done)
		completed = true
	})
	return completed
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
