package fiberx

// Awaiter is the contract every suspending primitive implements to
// cooperate with STL at a suspension point. It is called
// exactly once per suspension, on the resuming thread, after the context
// switch back into STL.
//
// AwaitSymmetricSuspend may:
//   - link self into a primitive's waiter queue and return the invalid
//     handle (the fiber is now parked);
//   - schedule self (put it back on its own Scheduler) and return the
//     invalid handle (a yield);
//   - return a different valid handle (symmetric transfer);
//   - schedule self and return a different handle.
type Awaiter interface {
	AwaitSymmetricSuspend(self FiberHandle) FiberHandle
}

// ParkAwaiter can be embedded by primitives whose fast path always parks
// and never transfers — its AwaitSymmetricSuspend always returns invalid.
// The syncx primitives define their own awaiters and do not embed it.
// Embedders only need to provide the linking
// side-effect before suspending; this satisfies the Awaiter interface
// with the trivial always-park behavior when no override is needed.
type ParkAwaiter struct{}

// AwaitSymmetricSuspend always returns the invalid handle.
func (ParkAwaiter) AwaitSymmetricSuspend(FiberHandle) FiberHandle {
	return invalidHandle
}

// yieldAwaiter implements self.Yield: reschedule self on its own
// scheduler and return invalid.
type yieldAwaiter struct{}

func (yieldAwaiter) AwaitSymmetricSuspend(self FiberHandle) FiberHandle {
	self.schedule()
	return invalidHandle
}

// switchToAwaiter implements self.SwitchTo(target): captures target,
// then on suspend schedules self and returns target. The two-step
// capture-then-move avoids the race where target would be scheduled (by
// some other awaiter that also names it) before self has actually
// suspended.
type switchToAwaiter struct {
	target FiberHandle
}

func (a *switchToAwaiter) AwaitSymmetricSuspend(self FiberHandle) FiberHandle {
	next := a.target
	a.target = invalidHandle
	self.schedule()
	return next
}

// teleportAwaiter implements self.TeleportTo(sched): repin self onto
// sched, then behave exactly like a yield on the new scheduler.
type teleportAwaiter struct {
	sched Scheduler
}

func (a *teleportAwaiter) AwaitSymmetricSuspend(self FiberHandle) FiberHandle {
	self.f.scheduler = a.sched
	self.schedule()
	return invalidHandle
}
