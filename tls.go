package fiberx

import (
	"runtime"
	"strconv"
	"sync"
)

// goroutineID returns the runtime's numeric id for the calling goroutine
// by parsing the header line of its own stack trace. This is the
// standard Go substitute for native thread-local storage: the id is
// stable for the lifetime of the goroutine, which is exactly the
// lifetime of one fiber's machine context, so keying a registry on it
// gives us a single thread-local "current fiber" pointer.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	// Header looks like "goroutine 123 [running]:\n".
	const prefix = "goroutine "
	if len(b) < len(prefix) {
		return 0
	}
	b = b[len(prefix):]
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	id, err := strconv.ParseUint(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// currentRegistry maps a running goroutine's id to the Fiber it is
// executing, a single nullable thread-local pointer. A fiber's own
// goroutine is registered for as long as its body runs (see newFiber);
// the symmetric-transfer loop also registers the driving goroutine
// around each Resume.
type currentRegistry struct {
	mu sync.RWMutex
	m  map[uint64]*Fiber
}

var current = &currentRegistry{m: make(map[uint64]*Fiber)}

func (r *currentRegistry) set(f *Fiber) {
	gid := goroutineID()
	r.mu.Lock()
	r.m[gid] = f
	r.mu.Unlock()
}

func (r *currentRegistry) clear() {
	gid := goroutineID()
	r.mu.Lock()
	delete(r.m, gid)
	r.mu.Unlock()
}

func (r *currentRegistry) get() *Fiber {
	gid := goroutineID()
	r.mu.RLock()
	f := r.m[gid]
	r.mu.RUnlock()
	return f
}

// RunWithoutCurrentFiber is NoSwitchContextGuard: it clears
// the calling goroutine's current-fiber identity for the duration of fn,
// then restores it. CombiningStrand's combiner loop wraps every
// submitted critical section in this so the section cannot observe, or
// accidentally suspend, the fiber that happens to be driving the
// combiner at that moment.
func RunWithoutCurrentFiber(fn func()) {
	gid := goroutineID()
	current.mu.Lock()
	saved, had := current.m[gid]
	delete(current.m, gid)
	current.mu.Unlock()

	defer func() {
		if had {
			current.mu.Lock()
			current.m[gid] = saved
			current.mu.Unlock()
		}
	}()
	fn()
}
