package service

import "sync/atomic"

// draftLock is a non-blocking lock. A second caller working on the same
// draft gets ErrDraftBusy immediately instead of queuing behind the first.
type draftLock struct {
	state atomic.Int32 // 0 = free, 1 = held
}

// TryAcquire takes the lock if it is free
func (l *draftLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release frees the lock. Only the holder may call it.
func (l *draftLock) Release() {
	l.state.Store(0)
}
