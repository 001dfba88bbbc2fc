package fiberx

// machineContext implements a context switch as a pair of unbuffered
// handshake channels between a fiber's own goroutine (the "machine")
// and whichever goroutine is currently driving it. Go goroutines
// already own a private, runtime-managed stack, so the only thing left
// to arbitrate is *which side may proceed*, which these two channels do
// exactly once per handshake lap.
type machineContext struct {
	toFiber  chan struct{}
	toDriver chan struct{}
}

func newMachineContext() *machineContext {
	return &machineContext{
		toFiber:  make(chan struct{}),
		toDriver: make(chan struct{}),
	}
}

// resumeFromDriver is switch_to observed from the driver side: it hands
// control to the fiber goroutine and blocks until that goroutine
// suspends or its body completes.
func (mc *machineContext) resumeFromDriver() {
	mc.toFiber <- struct{}{}
	<-mc.toDriver
}

// suspendFromFiber is switch_to observed from the suspended side. It
// must only be called from code running on this context's own fiber
// goroutine: it hands control back to the driver and blocks until
// resumeFromDriver is called again.
func (mc *machineContext) suspendFromFiber() {
	mc.toDriver <- struct{}{}
	<-mc.toFiber
}

// completeFromFiber is exit_to: a one-way handoff the
// trampoline performs exactly once, after the body has returned or
// panicked. There is no matching receive on toFiber afterwards — the
// fiber goroutine is logically destroyed from this point on.
func (mc *machineContext) completeFromFiber() {
	mc.toDriver <- struct{}{}
}
