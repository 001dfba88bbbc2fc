package syncx

import (
	"sync/atomic"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/park"
)

// strandNode is one submitted critical section, queued into the
// strand's MPSC Michael-Scott list. It lives on the submitting fiber's
// own stack for the duration of Submit.
type strandNode struct {
	next    atomic.Pointer[strandNode]
	section func()
	handle  fiberx.FiberHandle
}

// CombiningStrand serializes critical sections without ever holding a
// mutex: whichever fiber's Submit finds the queue empty
// becomes the combiner and runs every section enqueued — its own and
// everyone else's — to completion on its own stack, until the queue
// drains. Submitters that do not become combiner are parked and
// scheduled once their own section has run. Sections must not suspend;
// CombiningStrand clears the current-fiber identity while one runs, so a
// section cannot transitively rely on self::* working from inside it.
//
// Not to be confused with StrandScheduler (fiberx/scheduler), a
// distinct type serving a different role.
type CombiningStrand struct {
	dummy strandNode
	tail  atomic.Pointer[strandNode]
}

// NewCombiningStrand returns an idle strand.
func NewCombiningStrand() *CombiningStrand {
	s := &CombiningStrand{}
	s.tail.Store(&s.dummy)
	return s
}

// Submit enqueues section and either runs the combiner loop (if this
// call finds the strand idle) or parks the calling fiber until section
// has run. Must be called from within a fiber.
func (s *CombiningStrand) Submit(section func()) {
	n := &strandNode{section: section}
	prev := s.tail.Swap(n)
	becameCombiner := prev == &s.dummy
	prev.next.Store(n)

	if becameCombiner {
		s.runCombiner(n)
		return
	}
	fiberx.Suspend(&strandSubmitAwaiter{n: n})
}

type strandSubmitAwaiter struct {
	n *strandNode
}

func (a *strandSubmitAwaiter) AwaitSymmetricSuspend(self fiberx.FiberHandle) fiberx.FiberHandle {
	a.n.handle = self
	return fiberx.InvalidHandle()
}

// runCombiner drains the queue starting at self, running each section
// in turn and scheduling the fiber that submitted it (except self,
// whose submitter is this very call stack and returns normally instead
// of being rescheduled).
func (s *CombiningStrand) runCombiner(self *strandNode) {
	cur := self
	for {
		fiberx.RunWithoutCurrentFiber(cur.section)
		if cur != self {
			cur.handle.Schedule()
		}

		next := cur.next.Load()
		if next == nil {
			if s.tail.CompareAndSwap(cur, &s.dummy) {
				return // queue drained, combiner role released
			}
			// A new submitter linked in concurrently between our load
			// and the CAS; its append is in flight, spin for it.
			var bo park.Backoff
			for next == nil {
				bo.Spin()
				next = cur.next.Load()
			}
		}
		cur = next
	}
}
