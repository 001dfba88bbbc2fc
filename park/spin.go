// Package park implements the runtime's low-level waiting primitives:
// the parking word (a futex-backed atomic word with wait/notify
// semantics) and the spin-loop hint used by every spinlock and
// Michael-Scott queue in the runtime before it falls back to parking.
package park

import (
	"runtime"
	"sync/atomic"

	"github.com/klauspost/cpuid/v2"
)

// hasPause caches whether the host CPU exposes a cheap spin-wait
// instruction the runtime should prefer over a bare runtime.Gosched.
// Grounded on the same feature-detection concern the qubicdb
// concurrency package solves with klauspost/cpuid/v2.
var hasPause = cpuid.CPU.Supports(cpuid.SSE2) || cpuid.CPU.Supports(cpuid.ASIMD)

// spinTicks absorbs the busy-spin writes below so the compiler can't prove
// the loop in Pause has no observable effect and elide it.
var spinTicks atomic.Uint64

// Pause hints to the CPU that the calling goroutine is in a tight
// spin-wait loop. Go exposes no inline PAUSE/YIELD asm without cgo, so on
// a CPU that actually has a cheap spin-wait instruction this busy-spins a
// short fixed count instead of yielding the P — keeping the goroutine
// runnable and avoiding a full reschedule for what should be a handful of
// cycles. On everything else, a bare busy-spin would just burn the P with
// no corresponding hardware benefit, so it falls back to runtime.Gosched.
func Pause() {
	if hasPause {
		for i := 0; i < 30; i++ {
			spinTicks.Add(1)
		}
		return
	}
	runtime.Gosched()
}

// Backoff implements a small bounded exponential spin count used by
// spin-wait loops (spinlock, mutex, strand and wait-point slow paths). None of them
// escalates to Word.Wait; they keep spinning until their condition holds.
type Backoff struct {
	n uint
}

// Spin executes one backoff step, doubling the spin budget up to a cap.
func (b *Backoff) Spin() {
	limit := uint(1) << b.n
	if limit > 1024 {
		limit = 1024
	}
	for i := uint(0); i < limit; i++ {
		Pause()
	}
	if b.n < 10 {
		b.n++
	}
}

// Reset clears accumulated backoff, for reuse across lock acquisitions.
func (b *Backoff) Reset() {
	b.n = 0
}
