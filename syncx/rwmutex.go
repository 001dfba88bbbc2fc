package syncx

import (
	"sync/atomic"

	"github.com/xlaez/fiberx"
)

// rwWriterBit is subtracted from the reader count the instant a writer
// claims exclusivity, so every RLock attempt racing it sees a negative
// count and backs off, while RUnlock can detect "last reader, and a
// writer is waiting" by comparing against this exact value.
const rwWriterBit = int32(1) << 30

// RWMutex is a fiber-aware reader/writer lock: many concurrent readers,
// or one writer, queued on the same Michael-Scott machinery as Mutex —
// a single internal Mutex serializes writers against each other, plus a
// reader count with a fast uncontended path and an Event a writer waits
// on while any already-admitted readers drain.
type RWMutex struct {
	writer  Mutex
	readers atomic.Int32
	drained *Event
}

// NewRWMutex returns an unlocked RWMutex.
func NewRWMutex() *RWMutex {
	m := &RWMutex{drained: NewEvent()}
	// Same initial state as NewMutex, built in place because the dummy
	// node's address is part of that state.
	m.writer.dummy.next.Store(&m.writer.dummy)
	m.writer.tail.Store(&m.writer.dummy)
	m.writer.head = &m.writer.dummy
	return m
}

// RLock acquires a read lock, suspending only if a writer currently
// holds or is waiting for the lock. Must be called from within a fiber.
func (m *RWMutex) RLock() {
	for {
		n := m.readers.Load()
		if n < 0 {
			fiberx.Yield()
			continue
		}
		if m.readers.CompareAndSwap(n, n+1) {
			return
		}
	}
}

// RUnlock releases a read lock previously acquired with RLock.
func (m *RWMutex) RUnlock() {
	if m.readers.Add(-1) == -rwWriterBit {
		m.drained.Fire()
	}
}

// Lock acquires the write lock, suspending until no writer holds it and
// every already-admitted reader has called RUnlock. Must be called from
// within a fiber.
func (m *RWMutex) Lock() {
	m.writer.Lock()
	m.drained.Reset()
	for {
		n := m.readers.Load()
		if !m.readers.CompareAndSwap(n, n-rwWriterBit) {
			continue
		}
		if n != 0 {
			m.drained.Wait()
		}
		return
	}
}

// Unlock releases the write lock. The caller must currently hold it.
func (m *RWMutex) Unlock() {
	m.readers.Add(rwWriterBit)
	m.writer.Unlock()
}
