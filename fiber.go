package fiberx

import "sync/atomic"

// FiberId is a 64-bit, monotonically increasing, process-lifetime-unique
// identifier. 0 is reserved to mean "invalid".
type FiberId uint64

var nextFiberID atomic.Uint64

func mintFiberID() FiberId {
	return FiberId(nextFiberID.Add(1))
}

// FiberHandle is a move-only ownership token for a parked or about-to-run
// Fiber. Go has no move semantics to enforce this
// statically; by convention a handle must be consumed exactly once, via
// schedule()/Schedule(), or by being returned from an Awaiter as a
// symmetric-transfer target. The zero value is the invalid handle.
type FiberHandle struct {
	f *Fiber
}

// invalidHandle is returned by an Awaiter that has parked the fiber and
// has no successor to transfer to.
var invalidHandle = FiberHandle{}

// InvalidHandle returns the zero FiberHandle, exported for primitive
// authors outside this package building their own Awaiters.
func InvalidHandle() FiberHandle { return invalidHandle }

// Valid reports whether h refers to a live Fiber.
func (h FiberHandle) Valid() bool {
	return h.f != nil
}

// schedule resubmits the handle's fiber to its own scheduler, consuming
// the handle. This is the non-symmetric-transfer path out of an
// Awaiter: the fiber goes back through the scheduler queue rather than
// being resumed directly on the current OS thread.
func (h FiberHandle) schedule() {
	if h.f == nil {
		abort("fiberx: schedule() called on an invalid FiberHandle")
	}
	h.f.scheduler.Submit(h.f)
}

// Schedule is the exported form of schedule, for primitives living
// outside this package (syncx, scheduler) that hold a FiberHandle they
// need to hand back to its scheduler — e.g. a mutex waking its next
// owner, or a channel waking a parked receiver.
func (h FiberHandle) Schedule() {
	h.schedule()
}

// Fiber is a stackful task: a Coroutine plus a borrowed Scheduler
// reference, an awaiter slot, and a unique id.
type Fiber struct {
	TaskBase

	id        FiberId
	stack     *Stack
	coroutine *Coroutine
	scheduler Scheduler
	awaiter   Awaiter // set only while suspended, consulted once by STL
}

// newFiber allocates a stack, constructs the coroutine around body, and
// returns a Fiber ready to be submitted to sched. It does not submit
// itself; the caller (go()) does that.
func newFiber(sched Scheduler, body func()) (*Fiber, error) {
	stack, err := defaultAllocator.acquire()
	if err != nil {
		return nil, err
	}
	f := &Fiber{
		id:        mintFiberID(),
		stack:     stack,
		scheduler: sched,
	}
	// The body runs on the coroutine's own goroutine, so that is the
	// goroutine the current-fiber registry must map to f.
	f.coroutine = newCoroutine(func() {
		current.set(f)
		defer current.clear()
		body()
	})
	return f, nil
}

// ID returns the fiber's unique, never-reused-within-process id.
func (f *Fiber) ID() FiberId { return f.id }

// Scheduler returns the Scheduler this fiber is currently pinned to.
func (f *Fiber) Scheduler() Scheduler { return f.scheduler }

// handle wraps f as a FiberHandle for handing to an Awaiter or Scheduler.
func (f *Fiber) handle() FiberHandle { return FiberHandle{f: f} }

// armAwaiter installs a into the fiber's awaiter slot. Called from
// self.suspend just before the fiber suspends itself; STL reads it back
// exactly once, immediately after the matching Resume returns.
func (f *Fiber) armAwaiter(a Awaiter) {
	f.awaiter = a
}

// Run is Fiber::run: the symmetric-transfer loop. It is
// also Fiber's Task implementation, so a Scheduler can invoke it
// directly via Submit/Run.
func (f *Fiber) Run() {
	self := f
	for {
		current.set(self)
		self.coroutine.Resume()
		current.clear()

		if self.coroutine.IsCompleted() {
			defaultAllocator.release(self.stack)
			return
		}

		a := self.awaiter
		self.awaiter = nil
		if a == nil {
			abort("fiberx: fiber suspended without arming an awaiter")
		}

		next := a.AwaitSymmetricSuspend(self.handle())
		if !next.Valid() {
			return
		}
		self = next.f
	}
}
