// Package scheduler holds the out-of-core Scheduler implementations: a
// bundled worker-thread pool, plus the Inline, SafeScheduler, RunLoop
// and StrandScheduler collaborators. None of these are part of the fiber
// runtime's core; they are the "outside world" a Fiber is scheduled
// onto, reachable only through the fiberx.Scheduler interface.
package scheduler

import (
	"sync"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/queue"
)

// ThreadPool is a bundled MPMC thread pool: a fixed set of OS-thread
// workers pulling from one shared blocking queue, no work-stealing.
type ThreadPool struct {
	q       *queue.Blocking
	workers sync.WaitGroup
}

// NewThreadPool starts n worker goroutines pulling tasks from a shared
// queue until Close is called. n must be positive.
func NewThreadPool(n int) *ThreadPool {
	if n <= 0 {
		fiberx.Abort("fiberx/scheduler: ThreadPool requires at least one worker")
	}
	p := &ThreadPool{q: queue.New()}
	p.workers.Add(n)
	for i := 0; i < n; i++ {
		go p.workerLoop()
	}
	return p
}

func (p *ThreadPool) workerLoop() {
	defer p.workers.Done()
	for {
		t, ok := p.q.Pop()
		if !ok {
			return
		}
		t.Run()
	}
}

// Submit enqueues t for some worker to run. Implements fiberx.Scheduler.
// Submitting after Close is a programmer error: wrap a
// ThreadPool in SafeScheduler if that needs to degrade to abort instead
// of a panic escaping to the caller.
func (p *ThreadPool) Submit(t fiberx.Task) {
	p.q.Push(t)
}

// Close blocks further submissions and wakes every worker once its
// current task (if any) finishes and the queue is observed empty and
// closed; it does not drain remaining queued tasks.
func (p *ThreadPool) Close() {
	p.q.Close()
}

// Wait blocks until every worker goroutine has exited, i.e. until Close
// has been called and the queue has fully drained.
func (p *ThreadPool) Wait() {
	p.workers.Wait()
}
