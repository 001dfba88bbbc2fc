package syncx

import (
	"sync/atomic"

	"github.com/xlaez/fiberx"
)

// eventNode is a waiter's queue link, on-stack for the duration of Wait.
type eventNode struct {
	next   atomic.Pointer[eventNode]
	handle fiberx.FiberHandle
}

// Event is a one-shot Michael-Scott wait-set: fired iff dummy.next ==
// &dummy. Wait's fast path checks this with an acquire
// load; the slow path queues a waiter, and Fire exchanges dummy.next
// with &dummy and walks the captured chain, waking everyone queued.
type Event struct {
	dummy eventNode
}

// NewEvent returns an unfired Event.
func NewEvent() *Event {
	e := &Event{}
	e.dummy.next.Store(nil)
	return e
}

// IsFired reports whether Fire has happened since the last Reset.
func (e *Event) IsFired() bool {
	return e.dummy.next.Load() == &e.dummy
}

// Wait suspends the calling fiber until Fire is called, or returns
// immediately if the event has already fired. Must be called from
// within a fiber.
func (e *Event) Wait() {
	if e.IsFired() {
		return
	}
	var w eventNode
	fiberx.Suspend(&eventWaitAwaiter{e: e, w: &w})
}

// Fire marks the event fired and schedules every fiber currently parked
// in Wait. Firing an already-fired event is a no-op.
func (e *Event) Fire() {
	chain := e.dummy.next.Swap(&e.dummy)
	if chain == &e.dummy || chain == nil {
		return
	}
	for n := chain; n != nil; {
		next := n.next.Load()
		n.handle.Schedule()
		n = next
	}
}

// Reset re-arms the event for a fresh wait/fire cycle. Only valid
// between waiting sessions — calling it while fibers are still parked
// on the old chain is a programmer error left undetected here.
func (e *Event) Reset() {
	e.dummy.next.Store(nil)
}

type eventWaitAwaiter struct {
	e *Event
	w *eventNode
}

func (a *eventWaitAwaiter) AwaitSymmetricSuspend(self fiberx.FiberHandle) fiberx.FiberHandle {
	e, w := a.e, a.w
	w.handle = self
	for {
		head := e.dummy.next.Load()
		if head == &e.dummy {
			// Fire raced with our enqueue attempt: already fired,
			// resume immediately.
			return self
		}
		w.next.Store(head)
		if e.dummy.next.CompareAndSwap(head, w) {
			return fiberx.InvalidHandle()
		}
	}
}
