package syncx

import (
	"sync/atomic"

	"github.com/xlaez/fiberx"
)

// barrierNode is a waiter's queue link, on-stack for the duration of
// Arrive.
type barrierNode struct {
	next   atomic.Pointer[barrierNode]
	handle fiberx.FiberHandle
}

// Barrier fires exactly once when the k-th participant arrives,
// scheduling the first k-1 and resuming the k-th directly, without a
// trip through its scheduler. It is single-
// use: build a fresh Barrier per round.
type Barrier struct {
	remaining atomic.Int32
	chain     atomic.Pointer[barrierNode]
}

// NewBarrier returns a Barrier that fires on its k-th Arrive.
func NewBarrier(k int32) *Barrier {
	if k <= 0 {
		fiberx.Abort("fiberx/syncx: Barrier requires a positive participant count")
	}
	b := &Barrier{}
	b.remaining.Store(k)
	return b
}

// Arrive suspends the calling fiber until the k-th participant arrives,
// at which point every participant (including the k-th) continues. Must
// be called from within a fiber.
func (b *Barrier) Arrive() {
	var w barrierNode
	fiberx.Suspend(&barrierAwaiter{b: b, w: &w})
}

type barrierAwaiter struct {
	b *Barrier
	w *barrierNode
}

func (a *barrierAwaiter) AwaitSymmetricSuspend(self fiberx.FiberHandle) fiberx.FiberHandle {
	b, w := a.b, a.w
	w.handle = self
	for {
		head := b.chain.Load()
		w.next.Store(head)
		if b.chain.CompareAndSwap(head, w) {
			break
		}
	}

	if b.remaining.Add(-1) != 0 {
		return fiberx.InvalidHandle() // not the last arrival: park
	}

	// Last arrival: drain the chain, scheduling everyone queued before
	// us, then resume ourselves directly with no scheduler round-trip.
	chain := b.chain.Swap(nil)
	for n := chain; n != nil; {
		next := n.next.Load()
		if n != w {
			n.handle.Schedule()
		}
		n = next
	}
	return self
}
