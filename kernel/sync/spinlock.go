// Package sync provides the synchronization primitives used by the early
// boot environment, where no scheduler or blocking primitive exists yet.
package sync

import "sync/atomic"

var (
	// yieldFn is nil in kernel builds since there is nothing to yield to
	// this early in boot. Tests point it at runtime.Gosched so spinning
	// workers do not monopolize the host scheduler.
	yieldFn func()
)

// Spinlock implements a ticket lock. Acquiring the lock draws a ticket by
// post-incrementing the ticket counter and busy-waits until the serving
// counter reaches the drawn ticket, so acquisitions are granted in strict
// arrival (FIFO) order and no waiter can starve under contention.
//
// The lock is not recursive: a task that attempts to re-acquire a lock it
// already holds will spin forever. There is no poisoning either; a holder
// that fails while holding the lock leaves it held, which is acceptable
// given that failures at this stage halt the core anyway.
type Spinlock struct {
	ticket  uint32
	serving uint32
}

// Acquire blocks until the lock is granted to the caller. Grants follow the
// exact order in which the callers drew their tickets.
func (l *Spinlock) Acquire() {
	ticket := atomic.AddUint32(&l.ticket, 1) - 1
	for atomic.LoadUint32(&l.serving) != ticket {
		if yieldFn != nil {
			yieldFn()
		}
	}
}

// Release hands the lock to the next ticket holder in line. It must only be
// called by the current holder.
func (l *Spinlock) Release() {
	atomic.AddUint32(&l.serving, 1)
}
