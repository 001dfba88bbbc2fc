// Package syncx holds the fiber-aware synchronization primitives:
// Mutex, Event, WaitGroup, WaitPoint, Barrier, RWMutex,
// CombiningStrand, Channel and Select. Every primitive here suspends the
// calling fiber instead of blocking its OS thread, by constructing an
// Awaiter and handing it to fiberx.Suspend.
//
// The package is named syncx, not sync, purely so its own files can
// still `import "sync"` for the odd stdlib primitive without the
// self-import confusion a package literally named sync would invite.
package syncx

import (
	"sync/atomic"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/park"
)

// mutexNode is a waiter's queue link. It always lives on the suspending
// fiber's own goroutine stack (a local variable in Lock), never
// heap-pooled.
type mutexNode struct {
	next   atomic.Pointer[mutexNode]
	handle fiberx.FiberHandle
}

// Mutex is a Michael-Scott-style FIFO mutual-exclusion lock: a shared
// dummy node plus a tail pointer for enqueueing waiters, and an
// owner-exclusive head pointer for dequeueing them.
// Until the first contended hand-off, the mutex is locked iff
// dummy.next != &dummy. The dummy is not re-linked after that: an
// unlocked mutex is then marked by the last owner's node pointing at
// itself, and dummy.next no longer reflects the lock state.
type Mutex struct {
	dummy mutexNode
	head  *mutexNode // touched only by whichever fiber currently owns the lock
	tail  atomic.Pointer[mutexNode]
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex {
	m := &Mutex{}
	m.dummy.next.Store(&m.dummy)
	m.tail.Store(&m.dummy)
	m.head = &m.dummy
	return m
}

// TryLock attempts to acquire the mutex without suspending. It succeeds
// only while no waiter has ever queued on this Mutex: once one has, the
// dummy slot is never restored, so TryLock returns false from then on,
// even when the mutex is unlocked. Lock still acquires correctly in
// that state, through its slow path.
func (m *Mutex) TryLock() bool {
	return m.dummy.next.CompareAndSwap(&m.dummy, nil)
}

// Lock acquires the mutex, suspending the calling fiber if it is
// already held. Must be called from within a fiber.
func (m *Mutex) Lock() {
	if m.TryLock() {
		return
	}
	var w mutexNode
	fiberx.Suspend(&mutexLockAwaiter{m: m, w: &w})
}

// Unlock releases the mutex. The caller must currently hold it.
func (m *Mutex) Unlock() {
	owner := m.head
	next := owner.next.Load()
	if next == nil {
		if owner.next.CompareAndSwap(nil, owner) {
			return // queue observed empty: mutex is now unlocked
		}
		// A waiter's append raced with this CAS; it has already
		// written the real pointer, spin the short gap until it's
		// visible.
		var bo park.Backoff
		for next == nil {
			bo.Spin()
			next = owner.next.Load()
		}
	}
	m.head = next
	next.handle.Schedule()
}

// mutexLockAwaiter implements the Lock slow path: append
// w behind the current tail, then decide whether the append landed on a
// genuinely busy owner (park) or raced with a concurrent Unlock that had
// just found the queue empty (take ownership immediately, on behalf of
// the departing owner).
type mutexLockAwaiter struct {
	m *Mutex
	w *mutexNode
}

func (a *mutexLockAwaiter) AwaitSymmetricSuspend(self fiberx.FiberHandle) fiberx.FiberHandle {
	m, w := a.m, a.w
	w.handle = self
	w.next.Store(nil)

	prev := m.tail.Swap(w)
	oldOwner := prev.next.Swap(w)
	if oldOwner == nil {
		// Queued normally behind a busy owner: park.
		return fiberx.InvalidHandle()
	}
	// oldOwner is the dummy's just-written self-marker: Unlock ran its
	// "queue empty" CAS concurrently with this append. The lock is
	// actually free; w becomes owner immediately without a scheduler
	// round-trip.
	m.head = w
	return self
}
