package syncx

import (
	"sync/atomic"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/park"
)

// WaitPoint is the reusable generalization of WaitGroup:
// unlike WaitGroup.Reset, callers may keep calling Add/Done/Wait across
// back-to-back sessions with no quiescence requirement in between. The
// state is a single packed 64-bit word: a 32-bit generation version, a
// 1-bit "helping" flag, and a 31-bit counter. The helping flag lets a
// Wait that links into the waiter chain just as the counter reaches zero
// discover that fact and drain the chain itself, instead of depending on
// a done() call that may have already finished sweeping it.
type WaitPoint struct {
	state atomic.Uint64
	chain atomic.Pointer[waitPointNode]
}

const (
	wpCounterBits  = 31
	wpCounterMask  = uint64(1)<<wpCounterBits - 1
	wpHelpingBit   = uint64(1) << wpCounterBits
	wpVersionShift = wpCounterBits + 1
)

func wpPack(version uint32, helping bool, counter uint32) uint64 {
	s := uint64(version) << wpVersionShift
	if helping {
		s |= wpHelpingBit
	}
	s |= uint64(counter) & wpCounterMask
	return s
}

func wpCounter(s uint64) uint32 { return uint32(s & wpCounterMask) }
func wpHelping(s uint64) bool   { return s&wpHelpingBit != 0 }
func wpVersion(s uint64) uint32 { return uint32(s >> wpVersionShift) }

// waitPointNode is a waiter's queue link, on-stack for the duration of
// Wait. serviced is set true exactly once, by whichever drain call's
// chain.Swap actually captures this node — mirroring chanWaiter's own
// serviced flag — so a concurrently spinning Wait can tell whether its
// node was already claimed and scheduled out from under it.
type waitPointNode struct {
	next     atomic.Pointer[waitPointNode]
	handle   fiberx.FiberHandle
	serviced atomic.Bool
}

// NewWaitPoint returns a WaitPoint with its counter initialized to n.
func NewWaitPoint(n int32) *WaitPoint {
	wp := &WaitPoint{}
	wp.state.Store(wpPack(0, false, uint32(n)))
	return wp
}

// Add increments the counter by delta for the current session.
func (wp *WaitPoint) Add(delta int32) {
	for {
		s := wp.state.Load()
		nc := int64(wpCounter(s)) + int64(delta)
		if nc < 0 || nc > int64(wpCounterMask) {
			fiberx.Abort("fiberx/syncx: WaitPoint counter out of range")
		}
		ns := wpPack(wpVersion(s), wpHelping(s), uint32(nc))
		if wp.state.CompareAndSwap(s, ns) {
			return
		}
	}
}

// Done decrements the counter by delta. The instant it reaches zero,
// the current generation is considered complete and every parked Wait
// is scheduled.
func (wp *WaitPoint) Done(delta int32) {
	for {
		s := wp.state.Load()
		nc := int64(wpCounter(s)) - int64(delta)
		if nc < 0 {
			fiberx.Abort("fiberx/syncx: WaitPoint counter underflowed")
		}
		becameZero := nc == 0
		var ns uint64
		if becameZero {
			ns = wpPack(wpVersion(s)+1, true, 0)
		} else {
			ns = wpPack(wpVersion(s), wpHelping(s), uint32(nc))
		}
		if wp.state.CompareAndSwap(s, ns) {
			if becameZero {
				wp.drain(nil)
			}
			return
		}
	}
}

// drain schedules every fiber currently linked into the waiter chain
// and releases the helping claim. Called either by Done, which observed
// the counter reach zero, or by a racing Wait that linked in just too
// late to be caught by that sweep and claimed the helping bit itself.
//
// skip is nil from Done (no node of its own to special-case) or the
// caller's own node when Wait is draining after winning the helping
// claim: skip is marked serviced like every other captured node, but is
// not scheduled, since the caller resumes it directly via symmetric
// transfer instead of a Schedule() round trip — scheduling it too would
// resume the same machine context twice concurrently.
func (wp *WaitPoint) drain(skip *waitPointNode) {
	chain := wp.chain.Swap(nil)
	for n := chain; n != nil; {
		next := n.next.Load()
		n.serviced.Store(true)
		if n != skip {
			n.handle.Schedule()
		}
		n = next
	}
	for {
		s := wp.state.Load()
		ns := wpPack(wpVersion(s), false, wpCounter(s))
		if wp.state.CompareAndSwap(s, ns) {
			return
		}
	}
}

func (wp *WaitPoint) claimHelping(s uint64) bool {
	ns := wpPack(wpVersion(s), true, wpCounter(s))
	return wp.state.CompareAndSwap(s, ns)
}

// Wait suspends the calling fiber until the counter reaches zero, or
// returns immediately if it already has. Must be called from within a
// fiber.
func (wp *WaitPoint) Wait() {
	if s := wp.state.Load(); wpCounter(s) == 0 && !wpHelping(s) {
		return
	}
	var w waitPointNode
	fiberx.Suspend(&waitPointAwaiter{wp: wp, w: &w})
}

type waitPointAwaiter struct {
	wp *WaitPoint
	w  *waitPointNode
}

func (a *waitPointAwaiter) AwaitSymmetricSuspend(self fiberx.FiberHandle) fiberx.FiberHandle {
	wp, w := a.wp, a.w
	w.handle = self
	for {
		head := wp.chain.Load()
		w.next.Store(head)
		if wp.chain.CompareAndSwap(head, w) {
			break
		}
	}

	// Our push above may have landed either before or after a concurrent
	// drain()'s chain swap, and the helping bit alone can't tell us
	// which: a drain that already swapped the chain out will never see
	// a node pushed after its swap, even though the bit it set is still
	// visible. So rather than trusting a set helping bit once, spin
	// until it clears and re-examine; if the counter is still zero at
	// that point our node is guaranteed to still be sitting in the
	// chain (nothing else can have swapped it out), and claiming the
	// bit ourselves is then safe.
	var bo park.Backoff
	for {
		// A concurrent drain may have captured and scheduled our node
		// directly (we weren't its skip target) at any point since we
		// linked in. That resubmission already owns this fiber's machine
		// context, so we must park rather than also return self — doing
		// both would resume the same coroutine twice concurrently.
		if w.serviced.Load() {
			return fiberx.InvalidHandle()
		}
		s := wp.state.Load()
		if wpCounter(s) != 0 {
			return fiberx.InvalidHandle() // genuinely pending: park
		}
		if wpHelping(s) {
			bo.Spin()
			continue
		}
		if wp.claimHelping(s) {
			wp.drain(w)
			if w.serviced.Load() {
				// Our own sweep captured us, as expected: resume
				// directly without a Schedule() round trip.
				return self
			}
			// Some earlier sweep must have already captured and
			// scheduled us between our last check and winning this
			// claim; park and let that resubmission drive the fiber.
			return fiberx.InvalidHandle()
		}
		// Lost the claim race to a concurrent caller; loop and
		// re-examine rather than parking on their word alone.
	}
}
