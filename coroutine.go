package fiberx

import "sync/atomic"

type coroutineStatus int32

const (
	statusInactive coroutineStatus = iota
	statusActive
	statusCompleted
)

// Coroutine is a suspendable computation: a body closure driven through
// a machine context with a 3-state lifecycle, inactive→active→{inactive,
// completed}, completed being terminal.
type Coroutine struct {
	mc       *machineContext
	status   atomic.Int32
	body     func()
	panicVal any
}

// newCoroutine constructs an inactive coroutine. Its trampoline goroutine
// is started immediately but parked waiting for the first Resume — this
// is MachineContext.setup's job, preparing the context so the first
// switch_to jumps straight to the trampoline.
func newCoroutine(body func()) *Coroutine {
	c := &Coroutine{
		mc:   newMachineContext(),
		body: body,
	}
	c.status.Store(int32(statusInactive))
	go c.trampoline()
	return c
}

func (c *Coroutine) trampoline() {
	<-c.mc.toFiber
	func() {
		defer func() {
			if r := recover(); r != nil {
				// A fiber body must not unwind across a suspension
				// point: any panic is folded here into a
				// programmer-error abort, never into a Go panic the
				// driver goroutine could observe or recover.
				c.panicVal = r
			}
		}()
		c.body()
	}()
	c.status.Store(int32(statusCompleted))
	c.mc.completeFromFiber()
	if c.panicVal != nil {
		abort("fiberx: fiber body did not return normally: %v", c.panicVal)
	}
}

// Resume drives the coroutine to its next suspension point or to
// completion, returning in either case. Calling Resume on an already-
// completed coroutine is a programmer error.
func (c *Coroutine) Resume() {
	if coroutineStatus(c.status.Load()) == statusCompleted {
		abort("fiberx: Resume called on a completed coroutine")
	}
	c.status.Store(int32(statusActive))
	c.mc.resumeFromDriver()
	if coroutineStatus(c.status.Load()) != statusCompleted {
		c.status.Store(int32(statusInactive))
	}
}

// Suspend yields control back to whichever goroutine last called
// Resume. It must only be called from code running on this coroutine's
// own goroutine, before the body has returned.
func (c *Coroutine) Suspend() {
	c.mc.suspendFromFiber()
}

// IsCompleted reports whether the coroutine's body has returned.
func (c *Coroutine) IsCompleted() bool {
	return coroutineStatus(c.status.Load()) == statusCompleted
}
