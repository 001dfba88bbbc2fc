package syncx

import (
	"sync/atomic"

	"github.com/xlaez/fiberx"
)

// WaitGroup is a 32-bit counter paired with an embedded Event. Add
// increments relaxed; Done decrements with release and fires the Event
// exactly when the count reaches zero; Wait waits on the Event. Reset
// re-arms both, and like Event.Reset is only valid between waiting
// sessions.
type WaitGroup struct {
	count atomic.Int32
	ev    Event
}

// NewWaitGroup returns a WaitGroup with its counter at n (n may be 0).
func NewWaitGroup(n int32) *WaitGroup {
	wg := &WaitGroup{}
	wg.count.Store(n)
	wg.ev = *NewEvent()
	if n == 0 {
		wg.ev.Fire()
	}
	return wg
}

// Add increments the counter by delta. delta must not drive the
// counter negative; doing so is a programmer error.
func (wg *WaitGroup) Add(delta int32) {
	if delta == 0 {
		return
	}
	n := wg.count.Add(delta)
	if n < 0 {
		fiberx.Abort("fiberx/syncx: WaitGroup counter went negative")
	}
}

// Done decrements the counter by delta and fires the group's Event the
// instant the counter reaches zero.
func (wg *WaitGroup) Done(delta int32) {
	n := wg.count.Add(-delta)
	switch {
	case n == 0:
		wg.ev.Fire()
	case n < 0:
		fiberx.Abort("fiberx/syncx: WaitGroup counter underflowed")
	}
}

// Wait suspends the calling fiber until the counter has reached zero.
// Must be called from within a fiber.
func (wg *WaitGroup) Wait() {
	wg.ev.Wait()
}

// Reset re-arms the counter to n and resets the underlying Event for a
// fresh wait session. Only valid between sessions.
func (wg *WaitGroup) Reset(n int32) {
	wg.count.Store(n)
	wg.ev.Reset()
	if n == 0 {
		wg.ev.Fire()
	}
}
