// Package queue implements the MPMC unbounded blocking task queue
// consumed by scheduler workers. It is intentionally the simplest
// possible correct implementation: a mutex-guarded deque plus a condvar
// and a closed flag. No third-party library improves on this shape for
// an unbounded blocking MPMC queue of opaque tasks, so it stays on
// stdlib sync (DESIGN.md logs this as the justified stdlib exception).
package queue

import (
	"sync"
)

// Task is anything a scheduler can run. It mirrors fiberx.Task so
// callers never need to import the core package just to populate a
// queue (e.g. scheduler package imports only this and fiberx).
type Task interface {
	Run()
}

// Blocking is an MPMC unbounded FIFO queue of Task values. The zero
// value is not ready to use; call New.
type Blocking struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Task
	closed bool
}

// New returns a ready-to-use empty queue.
func New() *Blocking {
	q := &Blocking{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends t to the tail of the queue and wakes one blocked Pop.
// Push after Close is a programmer error: Close only blocks further
// submissions, it never silently drops one, so the caller must check
// Closed first or rely on a SafeScheduler wrapper to turn this into a
// recovered abort.
func (q *Blocking) Push(t Task) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		panic("queue: Push on a closed queue")
	}
	q.items = append(q.items, t)
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop removes and returns the task at the head of the queue, blocking
// until one is available or the queue is closed. ok is false only once
// the queue is both closed and drained.
func (q *Blocking) Pop() (t Task, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	t = q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return t, true
}

// Close marks the queue closed and wakes every blocked Pop so pollers
// can observe the closed status; it never drains remaining tasks, it
// only blocks further Push calls.
func (q *Blocking) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Closed reports whether Close has been called.
func (q *Blocking) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len reports the current queue depth, for diagnostics/tests.
func (q *Blocking) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
