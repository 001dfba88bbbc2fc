// Package refcount provides the shared reference-counted base used by
// any primitive whose lifetime must outlive the task that created it
// because other in-flight tasks still hold a handle to it. Go has no
// CRTP, so the same shape is expressed as embedding plus a destroy
// callback passed to Init rather than a destroy-on-zero virtual call.
package refcount

import "sync/atomic"

// Counted is embedded by any type that needs shared-ownership semantics.
// Construct it with Init, specifying the number of holders the object
// starts with.
type Counted struct {
	n       atomic.Int64
	destroy func()
}

// Init arms the counter at n and registers the function to run exactly
// once, when the count reaches zero. It must be called before any
// Inc/Dec.
func (c *Counted) Init(n int64, destroy func()) {
	c.n.Store(n)
	c.destroy = destroy
}

// Inc adds one holder. Relaxed: a new reference can only be created from
// a holder that already has one, so no synchronization with the eventual
// destroy is needed on this side.
func (c *Counted) Inc() {
	c.n.Add(1)
}

// Dec removes one holder, running the registered destroy callback
// exactly once if this call observes the count reaching zero. The
// decrement is acq_rel so that all writes made by every holder
// happen-before the destroy call observes them.
func (c *Counted) Dec() {
	if c.n.Add(-1) == 0 {
		c.destroy()
	}
}

// Count reports the current holder count, for diagnostics and tests
// only; it must never be used to decide whether Dec is safe to call.
func (c *Counted) Count() int64 {
	return c.n.Load()
}
