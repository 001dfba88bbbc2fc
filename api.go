package fiberx

// This file is the package's public surface. Go reserves the `go`
// keyword, so `go(body)` / `go(scheduler, body)` become Go and GoOn;
// a `self::*` namespace becomes flat package
// functions (CurrentID, CurrentScheduler, Suspend, Yield, SwitchTo,
// TeleportTo) — Go has no nested-namespace convention for "the thing
// executing right now", and stuttering fiberx.Self.Yield() over
// fiberx.Yield() buys nothing.

// GoOn launches a fiber running body on sched. body must be non-nil.
// Returns ErrStackOOM if the stack allocator cannot satisfy the new
// fiber's stack.
func GoOn(sched Scheduler, body func()) error {
	if body == nil {
		abort("fiberx: GoOn called with a nil body")
	}
	f, err := newFiber(sched, body)
	if err != nil {
		return err
	}
	sched.Submit(f)
	return nil
}

// Go launches a fiber running body on the calling fiber's own scheduler.
// Precondition: the caller must be running inside a fiber.
func Go(body func()) error {
	self := current.get()
	if self == nil {
		abort("fiberx: Go called outside fiber context")
	}
	return GoOn(self.scheduler, body)
}

// CurrentID returns the id of the fiber currently running on the
// calling goroutine. Precondition: in fiber context.
func CurrentID() FiberId {
	self := current.get()
	if self == nil {
		abort("fiberx: CurrentID called outside fiber context")
	}
	return self.id
}

// CurrentScheduler returns the Scheduler the calling fiber is currently
// pinned to. Precondition: in fiber context.
func CurrentScheduler() Scheduler {
	self := current.get()
	if self == nil {
		abort("fiberx: CurrentScheduler called outside fiber context")
	}
	return self.scheduler
}

// InFiber reports whether the calling goroutine is currently executing
// inside a fiber. Unlike the other self:: accessors this has no
// precondition of its own; primitive authors use it to decide whether a
// blocking operation should suspend the fiber or park the OS thread
// directly (e.g. when called from plain goroutine-based test code).
func InFiber() bool {
	return current.get() != nil
}

// Suspend is the low-level primitive-author entry point: it arms the calling fiber's awaiter slot with a and returns control to STL. It must be
// called from within a fiber.
func Suspend(a Awaiter) {
	self := current.get()
	if self == nil {
		abort("fiberx: Suspend called outside fiber context")
	}
	self.armAwaiter(a)
	self.coroutine.Suspend()
}

// Yield reschedules the calling fiber on its own scheduler, letting
// other runnable fibers make progress first.
func Yield() {
	Suspend(yieldAwaiter{})
}

// SwitchTo performs a symmetric transfer: the calling fiber hands
// control directly to target without a trip through target's scheduler
// queue, and is itself resubmitted to its own scheduler for a later
// resumption.
// Consumes target.
func SwitchTo(target FiberHandle) {
	Suspend(&switchToAwaiter{target: target})
}

// TeleportTo re-pins the calling fiber onto sched, then yields, so it
// next runs on sched's workers.
func TeleportTo(sched Scheduler) {
	Suspend(&teleportAwaiter{sched: sched})
}
