// Package spinlock implements the MCS queue spinlock used for thread-level
// mutual exclusion inside the stack allocator's free list
// and a channel's internal state.
//
// This is the one primitive in the runtime that spins an OS thread rather
// than parking a fiber: it protects short, non-suspending critical
// sections only, so a brief active wait is cheaper than a full park/wake
// round trip. Grounded on the canonical MCS queue lock description and
// the Go runtime's own lock_futex.go active-spin constants for the
// backoff shape.
package spinlock

import (
	"sync/atomic"

	"github.com/xlaez/fiberx/park"
)

type qnode struct {
	next   atomic.Pointer[qnode]
	locked atomic.Bool
}

// QSpinlock is a cache-line-aligned MCS queue lock: O(1) acquire/release
// with no spinning on a shared cache line, only on a per-waiter node.
type QSpinlock struct {
	tail atomic.Pointer[qnode]
	_    [7]uint64 // pad to avoid false sharing with neighboring fields
}

// qnodePool recycles waiter nodes; a spinlock critical section never
// suspends, so the node's lifetime is bounded by the call stack and a
// sync.Pool is a clean fit (no equivalent of a parked-fiber stack to pin
// it to).
var qnodePool = newNodePool()

type nodePool struct{ free atomic.Pointer[qnode] }

func newNodePool() *nodePool { return &nodePool{} }

func (p *nodePool) get() *qnode {
	for {
		n := p.free.Load()
		if n == nil {
			return new(qnode)
		}
		next := n.next.Load()
		if p.free.CompareAndSwap(n, next) {
			n.next.Store(nil)
			n.locked.Store(false)
			return n
		}
	}
}

func (p *nodePool) put(n *qnode) {
	for {
		head := p.free.Load()
		n.next.Store(head)
		if p.free.CompareAndSwap(head, n) {
			return
		}
	}
}

// TryLock attempts to acquire the lock without queueing, succeeding only
// when it is currently free. On success it returns a token that must be
// passed to Unlock.
func (q *QSpinlock) TryLock() (token any, ok bool) {
	if q.tail.Load() != nil {
		return nil, false
	}
	n := qnodePool.get()
	n.locked.Store(true)
	n.next.Store(nil)
	if q.tail.CompareAndSwap(nil, n) {
		return n, true
	}
	qnodePool.put(n)
	return nil, false
}

// Lock acquires the spinlock, queueing behind any current holder and
// spinning on a private flag until the predecessor signals readiness.
// Returns a token that must be passed to Unlock.
func (q *QSpinlock) Lock() (token any) {
	n := qnodePool.get()
	n.locked.Store(true)
	n.next.Store(nil)

	prev := q.tail.Swap(n)
	if prev != nil {
		prev.next.Store(n)
		var bo park.Backoff
		for n.locked.Load() {
			bo.Spin()
		}
	}
	return n
}

// Unlock releases the spinlock acquired via Lock or TryLock's held node.
func (q *QSpinlock) Unlock(token any) {
	n, ok := token.(*qnode)
	if !ok || n == nil {
		panic("spinlock: Unlock called with invalid token")
	}

	next := n.next.Load()
	if next == nil {
		if q.tail.CompareAndSwap(n, nil) {
			qnodePool.put(n)
			return
		}
		// A successor is linking concurrently; wait for it to appear.
		var bo park.Backoff
		for {
			next = n.next.Load()
			if next != nil {
				break
			}
			bo.Spin()
		}
	}
	next.locked.Store(false)
	qnodePool.put(n)
}
