package engine

import "sync/atomic"

// importLock provides non-blocking lock semantics using atomic operations.
// Imports are serialized: the batching protocol assumes exclusive
// ownership of the run's dedup set and in-flight batch buffers.
type importLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *importLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *importLock) Release() {
	l.state.Store(0)
}
