package fiberx

import (
	"sync/atomic"

	"github.com/xlaez/fiberx/spinlock"
)

// Stack is a fiber's stack descriptor. Because every fiber's machine
// context is a goroutine, the Go runtime already owns the real,
// growable, guarded memory for each fiber — there is no raw page range
// for this type to mmap. Stack instead keeps a reusable, free-list-
// backed *token* bounding how many fiber goroutines may be concurrently
// live, so a runaway caller gets a deterministic ErrStackOOM instead of
// unbounded goroutine growth. The Pages field is informative only.
type Stack struct {
	next  atomic.Pointer[Stack] // free-list intrusive link
	Pages int
}

// stackAllocator is the process-wide stack pool. It uses the MCS
// QSpinlock rather than a plain mutex — acquire/release never suspends
// a fiber, so a brief active wait beats a full park/wake round trip —
// and a bounded capacity standing in for a guard-page-backed address
// space reserved up front.
type stackAllocator struct {
	lock     spinlock.QSpinlock
	free     atomic.Pointer[Stack]
	cfg      stackConfig
	cap      int64
	inUse    atomic.Int64
	freeSize atomic.Int64
}

var defaultAllocator = newStackAllocator(defaultStackConfig(), 1<<20)

func newStackAllocator(cfg stackConfig, capacity int64) *stackAllocator {
	return &stackAllocator{cfg: cfg, cap: capacity}
}

// acquire hands out a Stack token, reusing one from the free list when
// available, otherwise minting a fresh one, unless the pool is already
// at capacity in which case it reports ErrStackOOM to the caller of
// go().
func (a *stackAllocator) acquire() (*Stack, error) {
	tok := a.lock.Lock()
	defer a.lock.Unlock(tok)

	if s := a.free.Load(); s != nil {
		next := s.next.Load()
		a.free.Store(next)
		s.next.Store(nil)
		a.freeSize.Add(-1)
		a.inUse.Add(1)
		return s, nil
	}

	if a.inUse.Load() >= a.cap {
		return nil, ErrStackOOM
	}
	a.inUse.Add(1)
	return &Stack{Pages: a.cfg.pageCount}, nil
}

// release returns a stack to the free list for reuse by a later fiber.
func (a *stackAllocator) release(s *Stack) {
	tok := a.lock.Lock()
	defer a.lock.Unlock(tok)

	s.next.Store(a.free.Load())
	a.free.Store(s)
	a.freeSize.Add(1)
	a.inUse.Add(-1)
}

// FreeListSize reports the number of stacks currently idle in the pool,
// for tests asserting quiescence returns the pool to baseline.
func FreeListSize() int {
	return int(defaultAllocator.freeSize.Load())
}

// InUseCount reports the number of stacks currently checked out.
func InUseCount() int {
	return int(defaultAllocator.inUse.Load())
}
