package scheduler

import (
	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/queue"
)

// RunLoop is a single-goroutine scheduler: it owns one queue and drains
// it only when its own Run is called, on whichever goroutine the
// embedder chooses. Unlike ThreadPool, no worker goroutines are
// started implicitly — this is for programs that want one dedicated
// pump instead of a pool.
type RunLoop struct {
	q *queue.Blocking
}

// NewRunLoop returns a RunLoop with an empty queue.
func NewRunLoop() *RunLoop {
	return &RunLoop{q: queue.New()}
}

// Submit enqueues t for the next Run call to pick up. Implements
// fiberx.Scheduler.
func (r *RunLoop) Submit(t fiberx.Task) {
	r.q.Push(t)
}

// Run drains the queue on the calling goroutine, running each task in
// turn, until Close is called and the queue is empty.
func (r *RunLoop) Run() {
	for {
		t, ok := r.q.Pop()
		if !ok {
			return
		}
		t.Run()
	}
}

// Close blocks further submissions and lets a blocked Run return once
// drained.
func (r *RunLoop) Close() {
	r.q.Close()
}
