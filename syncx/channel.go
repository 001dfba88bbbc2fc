package syncx

import (
	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/refcount"
	"github.com/xlaez/fiberx/spinlock"
)

// chanWaiter is a parked sender's or receiver's queue link. It lives on
// the parked fiber's own stack. claim is non-nil only when the waiter
// was posted by Select, in which case whoever services it must win the
// shared claim before touching value or scheduling handle.
type chanWaiter[T any] struct {
	next     *chanWaiter[T]
	handle   fiberx.FiberHandle
	value    T
	closed   bool
	claim    *selectClaim
	serviced bool // set true exactly when this waiter was the one claimed and handed a value/wake
}

// Channel is a buffered MPMC FIFO channel: a single QSpinlock guards
// the ring buffer and both wait queues. Capacity 0 channels hold no
// buffer at all and force rendezvous — a Send only ever completes by
// handing its value directly to a parked receiver.
type Channel[T any] struct {
	refcount.Counted

	lock spinlock.QSpinlock

	buf   []T
	head  int
	count int

	closed bool

	sendHead, sendTail *chanWaiter[T]
	recvHead, recvTail *chanWaiter[T]
}

// NewChannel returns an open Channel with room for capacity buffered
// values (capacity == 0 is the rendezvous special case).
func NewChannel[T any](capacity int) *Channel[T] {
	if capacity < 0 {
		fiberx.Abort("fiberx/syncx: Channel capacity must be >= 0")
	}
	c := &Channel[T]{}
	if capacity > 0 {
		c.buf = make([]T, capacity)
	}
	c.Counted.Init(1, c.onDestroyed)
	return c
}

// Retain adds a holder, for code sharing a Channel beyond a single
// Send/Recv call site.
func (c *Channel[T]) Retain() { c.Inc() }

// Release removes a holder. Once the last holder releases with fibers
// still parked on the channel, that is a programmer error.
func (c *Channel[T]) Release() { c.Dec() }

func (c *Channel[T]) onDestroyed() {
	tok := c.lock.Lock()
	stillWaited := c.sendHead != nil || c.recvHead != nil
	c.lock.Unlock(tok)
	if stillWaited {
		fiberx.Abort("fiberx/syncx: Channel destroyed with waiters still parked")
	}
}

func (c *Channel[T]) pushSend(w *chanWaiter[T]) {
	w.next = nil
	if c.sendTail == nil {
		c.sendHead, c.sendTail = w, w
		return
	}
	c.sendTail.next = w
	c.sendTail = w
}

func (c *Channel[T]) popSend() *chanWaiter[T] {
	w := c.sendHead
	if w == nil {
		return nil
	}
	c.sendHead = w.next
	if c.sendHead == nil {
		c.sendTail = nil
	}
	return w
}

func (c *Channel[T]) pushRecv(w *chanWaiter[T]) {
	w.next = nil
	if c.recvTail == nil {
		c.recvHead, c.recvTail = w, w
		return
	}
	c.recvTail.next = w
	c.recvTail = w
}

func (c *Channel[T]) popRecv() *chanWaiter[T] {
	w := c.recvHead
	if w == nil {
		return nil
	}
	c.recvHead = w.next
	if c.recvHead == nil {
		c.recvTail = nil
	}
	return w
}

func (c *Channel[T]) full() bool  { return c.count == len(c.buf) }
func (c *Channel[T]) empty() bool { return c.count == 0 }

func (c *Channel[T]) bufPush(v T) {
	idx := (c.head + c.count) % len(c.buf)
	c.buf[idx] = v
	c.count++
}

func (c *Channel[T]) bufPop() T {
	v := c.buf[c.head]
	var zero T
	c.buf[c.head] = zero
	c.head = (c.head + 1) % len(c.buf)
	c.count--
	return v
}

// Send delivers v, suspending the calling fiber if no receiver is
// waiting and the buffer is full (or capacity 0). Returns
// fiberx.ErrQueueClosed if the channel is closed, whether immediately
// or while parked. Must be called from within a fiber.
func (c *Channel[T]) Send(v T) error {
	tok := c.lock.Lock()

	if c.closed {
		c.lock.Unlock(tok)
		return fiberx.ErrQueueClosed
	}

	if r := c.popRecv(); r != nil {
		c.lock.Unlock(tok)
		if !claimFor(r.claim) {
			// Lost a race with Select's own claim; nothing left to do,
			// the clause that won will service a different waiter.
			return c.Send(v)
		}
		r.value = v
		r.serviced = true
		r.handle.Schedule()
		return nil
	}

	if len(c.buf) > 0 && !c.full() {
		c.bufPush(v)
		c.lock.Unlock(tok)
		return nil
	}

	var w chanWaiter[T]
	w.value = v
	c.pushSend(&w)
	c.lock.Unlock(tok)

	fiberx.Suspend(&chanSendAwaiter[T]{c: c, w: &w})
	if w.closed {
		return fiberx.ErrQueueClosed
	}
	return nil
}

// Recv removes and returns the next value. ok is false once the
// channel is closed and drained. Must be called from within a fiber.
func (c *Channel[T]) Recv() (v T, ok bool) {
	tok := c.lock.Lock()

	if len(c.buf) > 0 && !c.empty() {
		v = c.bufPop()
		if s := c.popSend(); s != nil {
			if claimFor(s.claim) {
				c.bufPush(s.value)
				s.serviced = true
				s.handle.Schedule()
			} else {
				c.pushSend(s) // put it back; another clause won the claim
			}
		}
		c.lock.Unlock(tok)
		return v, true
	}

	if s := c.popSend(); s != nil {
		c.lock.Unlock(tok)
		if !claimFor(s.claim) {
			return c.Recv()
		}
		s.serviced = true
		s.handle.Schedule()
		return s.value, true
	}

	if c.closed {
		c.lock.Unlock(tok)
		var zero T
		return zero, false
	}

	var w chanWaiter[T]
	c.pushRecv(&w)
	c.lock.Unlock(tok)

	fiberx.Suspend(&chanRecvAwaiter[T]{c: c, w: &w})
	return w.value, !w.closed
}

// Close marks the channel closed and wakes every currently-parked
// sender and receiver exactly once. Closing an already-closed channel
// is a programmer error.
func (c *Channel[T]) Close() {
	tok := c.lock.Lock()
	if c.closed {
		c.lock.Unlock(tok)
		fiberx.Abort("fiberx/syncx: Channel closed twice")
	}
	c.closed = true
	senders := c.sendHead
	receivers := c.recvHead
	c.sendHead, c.sendTail = nil, nil
	c.recvHead, c.recvTail = nil, nil
	c.lock.Unlock(tok)

	for w := senders; w != nil; {
		next := w.next
		if claimFor(w.claim) {
			w.closed = true
			w.serviced = true
			w.handle.Schedule()
		}
		w = next
	}
	for w := receivers; w != nil; {
		next := w.next
		if claimFor(w.claim) {
			w.closed = true
			w.serviced = true
			w.handle.Schedule()
		}
		w = next
	}
}

type chanSendAwaiter[T any] struct {
	c *Channel[T]
	w *chanWaiter[T]
}

func (a *chanSendAwaiter[T]) AwaitSymmetricSuspend(self fiberx.FiberHandle) fiberx.FiberHandle {
	a.w.handle = self
	return fiberx.InvalidHandle()
}

type chanRecvAwaiter[T any] struct {
	c *Channel[T]
	w *chanWaiter[T]
}

func (a *chanRecvAwaiter[T]) AwaitSymmetricSuspend(self fiberx.FiberHandle) fiberx.FiberHandle {
	a.w.handle = self
	return fiberx.InvalidHandle()
}

// claimFor reports whether the caller may proceed to service w: true
// unconditionally for a plain Send/Recv waiter (claim == nil), or the
// outcome of the one-shot CAS race against Select for a waiter posted
// as one of several select clauses.
func claimFor(claim *selectClaim) bool {
	if claim == nil {
		return true
	}
	return claim.tryClaim()
}
