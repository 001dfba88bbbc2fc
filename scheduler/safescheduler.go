package scheduler

import "github.com/xlaez/fiberx"

// SafeScheduler decorates any Scheduler so that Submit can never panic
// out to the caller, turning a recovered panic into an abort instead.
// This makes "submit never panics" an explicit, composable wrapper
// rather than a bare assumption every call site has to trust of its
// underlying Scheduler.
type SafeScheduler struct {
	inner fiberx.Scheduler
}

// NewSafeScheduler wraps inner so its Submit can no longer panic.
func NewSafeScheduler(inner fiberx.Scheduler) *SafeScheduler {
	return &SafeScheduler{inner: inner}
}

// Submit calls inner.Submit(t), converting any panic into an abort.
func (s *SafeScheduler) Submit(t fiberx.Task) {
	defer func() {
		if r := recover(); r != nil {
			fiberx.Abort("fiberx/scheduler: Scheduler.Submit panicked: %v", r)
		}
	}()
	s.inner.Submit(t)
}
