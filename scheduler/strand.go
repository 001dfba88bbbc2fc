package scheduler

import (
	"sync/atomic"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/park"
	"github.com/xlaez/fiberx/refcount"
)

// strandSchedulerNode is one submitted task's queue link in a
// StrandScheduler's MPSC list.
type strandSchedulerNode struct {
	next atomic.Pointer[strandSchedulerNode]
	task fiberx.Task
}

// StrandScheduler is the serializing scheduler-decorator variant of
// Strand — not to be confused with syncx.CombiningStrand, a distinct
// sync primitive that happens to share the "strand" name. Wherever
// CombiningStrand runs
// critical sections inline on whichever fiber happens to become
// combiner, StrandScheduler instead guarantees every task submitted to
// it runs one at a time, in submission order, on the wrapped inner
// Scheduler's own workers: the first submission to find the queue idle
// hands a single draining task to inner, which then runs every task in
// the queue until it drains, exactly like CombiningStrand's combiner
// loop but dispatched through Scheduler.Submit instead of run inline.
type StrandScheduler struct {
	refcount.Counted

	inner fiberx.Scheduler
	dummy strandSchedulerNode
	tail  atomic.Pointer[strandSchedulerNode]
}

// NewStrandScheduler returns a StrandScheduler that serializes tasks
// submitted to it onto inner.
func NewStrandScheduler(inner fiberx.Scheduler) *StrandScheduler {
	s := &StrandScheduler{inner: inner}
	s.tail.Store(&s.dummy)
	s.Counted.Init(1, func() {})
	return s
}

// Submit enqueues t. If the strand was idle, this call also submits a
// draining task to the inner scheduler; otherwise t is picked up by
// whichever draining task is already running. Implements
// fiberx.Scheduler.
func (s *StrandScheduler) Submit(t fiberx.Task) {
	n := &strandSchedulerNode{task: t}
	prev := s.tail.Swap(n)
	becameDrainer := prev == &s.dummy
	prev.next.Store(n)

	if becameDrainer {
		s.inner.Submit(strandDrainTask{s: s, start: n})
	}
}

// strandDrainTask runs every task from start onward until the queue is
// observed empty, then releases the drainer role.
type strandDrainTask struct {
	s     *StrandScheduler
	start *strandSchedulerNode
}

func (d strandDrainTask) Run() {
	s, cur := d.s, d.start
	for {
		cur.task.Run()

		next := cur.next.Load()
		if next == nil {
			if s.tail.CompareAndSwap(cur, &s.dummy) {
				return
			}
			var bo park.Backoff
			for next == nil {
				bo.Spin()
				next = cur.next.Load()
			}
		}
		cur = next
	}
}
