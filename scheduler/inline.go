package scheduler

import "github.com/xlaez/fiberx"

// Inline runs every submitted task synchronously, on the submitter's own
// goroutine, before Submit returns. It is the degenerate base case for
// tests that need a Scheduler but must not spin up a pool — e.g.
// self::switch_to unit tests, where Run for one fiber's STL must not
// re-enter through a separate worker.
type Inline struct{}

// Submit runs t.Run() immediately.
func (Inline) Submit(t fiberx.Task) {
	t.Run()
}
