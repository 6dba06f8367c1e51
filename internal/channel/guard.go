package channel

import (
	"sync"
	"sync/atomic"
)

// AlreadyBatchingError is returned when a pipeline or transaction is opened
// on a connection that already has one open.
type AlreadyBatchingError struct{}

func (e *AlreadyBatchingError) Error() string {
	return "channel: a pipeline or transaction is already open on this connection"
}

// BatchLock is the "one open batch per connection" primitive. Channel
// implementations embed it.
type BatchLock struct {
	held atomic.Bool
}

// BeginBatch acquires the lock and returns the guard that releases it.
func (l *BatchLock) BeginBatch() (*Guard, error) {
	if !l.held.CompareAndSwap(false, true) {
		return nil, &AlreadyBatchingError{}
	}
	return &Guard{lock: l}, nil
}

// Batching reports whether a guard is currently held.
func (l *BatchLock) Batching() bool {
	return l.held.Load()
}

// Guard releases its BatchLock exactly once, however many times Release is called.
type Guard struct {
	once sync.Once
	lock *BatchLock
}

// Release gives the lock back. It reports whether this call did the release.
func (g *Guard) Release() bool {
	released := false
	g.once.Do(func() {
		g.lock.held.Store(false)
		released = true
	})
	return released
}
