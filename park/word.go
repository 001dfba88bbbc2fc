package park

import "sync/atomic"

// Word is an atomic 32-bit word supporting futex-style wait/notify: any
// goroutine may Wait(expected), which blocks only while the word still
// reads expected, and any goroutine may Notify{One,All} to wake sleepers.
// Every sleep pairs with at most one wakeup; a wakeup that arrives before
// the matching Wait simply makes Wait observe a changed value and return
// immediately.
//
// The zero value is a ready-to-use Word reading 0.
type Word struct {
	v uint32
	_ [60]byte // pad to a cache line; avoids false sharing under contention
}

// Load reads the current value with acquire semantics.
func (w *Word) Load() uint32 {
	return atomic.LoadUint32(&w.v)
}

// Store writes v with release semantics.
func (w *Word) Store(v uint32) {
	atomic.StoreUint32(&w.v, v)
}

// CAS attempts to swap old for new, returning whether it succeeded.
func (w *Word) CAS(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(&w.v, old, new)
}

// Add atomically adds delta and returns the new value.
func (w *Word) Add(delta int32) uint32 {
	return atomic.AddUint32(&w.v, uint32(delta))
}
