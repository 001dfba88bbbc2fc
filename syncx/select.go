package syncx

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/xlaez/fiberx"
)

// selectClaim is the shared "has this select already been fulfilled"
// guard a Select call hands to every clause's waiter.
// Whichever channel operation reaches a waiter first wins the one-shot
// CAS; everyone else backs off and leaves the waiter for its owning
// clause to clean up.
type selectClaim struct {
	claimed atomic.Bool
}

func (c *selectClaim) tryClaim() bool {
	return c.claimed.CompareAndSwap(false, true)
}

// Case is one clause of a Select call, built with SendCase or RecvCase.
type Case interface {
	// tryImmediate attempts the clause's fast path with no parking
	// involved. Returns true if it completed the clause.
	tryImmediate() bool
	// enqueue posts a claim-guarded waiter into the clause's channel.
	// Called only after every clause's tryImmediate has failed.
	enqueue(claim *selectClaim, self fiberx.FiberHandle)
	// cleanup unlinks this clause's waiter from its channel after the
	// select has resumed, regardless of which clause fired.
	cleanup()
	// fired reports whether this specific clause is the one a channel
	// operation actually serviced.
	fired() bool
}

type sendCase[T any] struct {
	ch     *Channel[T]
	value  T
	w      chanWaiter[T]
	posted bool
}

// SendCase builds a Select clause that sends value on ch.
func SendCase[T any](ch *Channel[T], value T) Case {
	return &sendCase[T]{ch: ch, value: value}
}

func (sc *sendCase[T]) tryImmediate() bool {
	tok := sc.ch.lock.Lock()

	if sc.ch.closed {
		sc.ch.lock.Unlock(tok)
		return false
	}
	if r := sc.ch.popRecv(); r != nil {
		sc.ch.lock.Unlock(tok)
		if !claimFor(r.claim) {
			return sc.tryImmediate()
		}
		r.value = sc.value
		r.serviced = true
		r.handle.Schedule()
		return true
	}
	if len(sc.ch.buf) > 0 && !sc.ch.full() {
		sc.ch.bufPush(sc.value)
		sc.ch.lock.Unlock(tok)
		return true
	}
	sc.ch.lock.Unlock(tok)
	return false
}

func (sc *sendCase[T]) enqueue(claim *selectClaim, self fiberx.FiberHandle) {
	sc.w = chanWaiter[T]{value: sc.value, handle: self, claim: claim}
	tok := sc.ch.lock.Lock()
	sc.ch.pushSend(&sc.w)
	sc.ch.lock.Unlock(tok)
	sc.posted = true
}

func (sc *sendCase[T]) cleanup() {
	if !sc.posted {
		return
	}
	tok := sc.ch.lock.Lock()
	removeSendWaiter(sc.ch, &sc.w)
	sc.ch.lock.Unlock(tok)
}

func (sc *sendCase[T]) fired() bool {
	return sc.posted && sc.w.serviced
}

type recvCase[T any] struct {
	ch     *Channel[T]
	out    *T
	ok     *bool
	w      chanWaiter[T]
	posted bool
}

// RecvCase builds a Select clause that receives from ch into *out,
// reporting whether the channel was still open via *ok.
func RecvCase[T any](ch *Channel[T], out *T, ok *bool) Case {
	return &recvCase[T]{ch: ch, out: out, ok: ok}
}

func (rc *recvCase[T]) tryImmediate() bool {
	tok := rc.ch.lock.Lock()

	if len(rc.ch.buf) > 0 && !rc.ch.empty() {
		*rc.out = rc.ch.bufPop()
		*rc.ok = true
		s := rc.ch.popSend()
		if s != nil {
			if claimFor(s.claim) {
				rc.ch.bufPush(s.value)
				s.serviced = true
			} else {
				rc.ch.pushSend(s) // put it back; another clause won the claim
			}
		}
		rc.ch.lock.Unlock(tok)
		if s != nil && s.serviced {
			s.handle.Schedule()
		}
		return true
	}
	if s := rc.ch.popSend(); s != nil {
		rc.ch.lock.Unlock(tok)
		if !claimFor(s.claim) {
			return rc.tryImmediate()
		}
		*rc.out, *rc.ok = s.value, true
		s.serviced = true
		s.handle.Schedule()
		return true
	}
	if rc.ch.closed {
		rc.ch.lock.Unlock(tok)
		var zero T
		*rc.out, *rc.ok = zero, false
		return true
	}
	rc.ch.lock.Unlock(tok)
	return false
}

func (rc *recvCase[T]) enqueue(claim *selectClaim, self fiberx.FiberHandle) {
	rc.w = chanWaiter[T]{handle: self, claim: claim}
	tok := rc.ch.lock.Lock()
	rc.ch.pushRecv(&rc.w)
	rc.ch.lock.Unlock(tok)
	rc.posted = true
}

func (rc *recvCase[T]) cleanup() {
	if !rc.posted {
		return
	}
	tok := rc.ch.lock.Lock()
	removeRecvWaiter(rc.ch, &rc.w)
	rc.ch.lock.Unlock(tok)
	if rc.w.serviced {
		*rc.out, *rc.ok = rc.w.value, !rc.w.closed
	}
}

func (rc *recvCase[T]) fired() bool {
	return rc.posted && rc.w.serviced
}

func removeSendWaiter[T any](ch *Channel[T], target *chanWaiter[T]) {
	var prev *chanWaiter[T]
	for w := ch.sendHead; w != nil; prev, w = w, w.next {
		if w == target {
			if prev == nil {
				ch.sendHead = w.next
			} else {
				prev.next = w.next
			}
			if ch.sendTail == w {
				ch.sendTail = prev
			}
			return
		}
	}
}

func removeRecvWaiter[T any](ch *Channel[T], target *chanWaiter[T]) {
	var prev *chanWaiter[T]
	for w := ch.recvHead; w != nil; prev, w = w, w.next {
		if w == target {
			if prev == nil {
				ch.recvHead = w.next
			} else {
				prev.next = w.next
			}
			if ch.recvTail == w {
				ch.recvTail = prev
			}
			return
		}
	}
}

// Select waits on an n-way set of send/recv clauses, completing exactly
// one and returning its index. Clause order is randomized per call so a
// fiber selecting on the same channel set repeatedly does not always
// favor the same clause. Must be called from within a
// fiber.
func Select(cases ...Case) int {
	if len(cases) == 0 {
		fiberx.Abort("fiberx/syncx: Select called with no cases")
	}
	order := rand.Perm(len(cases))
	for _, i := range order {
		if cases[i].tryImmediate() {
			return i
		}
	}

	claim := &selectClaim{}
	fiberx.Suspend(&selectAwaiter{cases: cases, claim: claim, order: order})

	winner := 0
	for i, c := range cases {
		if c.fired() {
			winner = i
		}
		c.cleanup()
	}
	return winner
}

type selectAwaiter struct {
	cases []Case
	claim *selectClaim
	order []int
}

func (a *selectAwaiter) AwaitSymmetricSuspend(self fiberx.FiberHandle) fiberx.FiberHandle {
	for _, i := range a.order {
		a.cases[i].enqueue(a.claim, self)
	}
	return fiberx.InvalidHandle()
}
