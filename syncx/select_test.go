package syncx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/scheduler"
)

// TestSelectRecvBufferedHandoff drives recvCase.tryImmediate down its
// buffered-handoff path: a capacity-1 channel already holds one buffered
// value and has a second sender parked behind it, so a Select recv
// clause must both pop the buffered value for itself and pull the
// parked sender's value into the now-empty slot. A second, always-idle
// channel keeps the Select genuinely multi-clause. A single-worker pool
// makes the whole sequence deterministic: each fiber below runs to
// completion or to its park point before the next one is even popped.
func TestSelectRecvBufferedHandoff(t *testing.T) {
	pool := scheduler.NewThreadPool(1)
	defer pool.Close()

	ch := NewChannel[int](1)
	idle := NewChannel[int](1)

	fillDone := make(chan error, 1)
	err := fiberx.GoOn(pool, func() {
		fillDone <- ch.Send(1)
	})
	require.NoError(t, err)
	require.NoError(t, <-fillDone)

	parkedSend := make(chan error, 1)
	err = fiberx.GoOn(pool, func() {
		parkedSend <- ch.Send(2)
	})
	require.NoError(t, err)

	var got, gotIdle int
	var ok, okIdle bool
	var winner int
	selectDone := make(chan struct{})
	err = fiberx.GoOn(pool, func() {
		winner = Select(
			RecvCase(ch, &got, &ok),
			RecvCase(idle, &gotIdle, &okIdle),
		)
		close(selectDone)
	})
	require.NoError(t, err)
	<-selectDone

	require.Equal(t, 0, winner)
	require.True(t, ok)
	require.Equal(t, 1, got)
	require.False(t, okIdle)

	// The parked second sender must have been pulled into the buffer by
	// the handoff, not left parked.
	require.NoError(t, <-parkedSend)

	var drained int
	var drainedOK bool
	drainDone := make(chan struct{})
	err = fiberx.GoOn(pool, func() {
		drained, drainedOK = ch.Recv()
		close(drainDone)
	})
	require.NoError(t, err)
	<-drainDone
	require.True(t, drainedOK)
	require.Equal(t, 2, drained)
}

// TestSelectClaimRaceBetweenTwoClauses exercises selectClaim's one-shot
// CAS: a Select with two RecvCase clauses on two different channels
// parks both, then two Sends — one per channel — race to service them.
// Exactly one clause may fire; the loser's claimFor must fail and fall
// through to an ordinary buffered Send rather than also delivering its
// value to the same Select. A single-worker pool makes the race
// deterministic (the first Send submitted always wins the uncontested
// CAS) while still exercising the exact same claim/retry code path a
// true concurrent race would.
func TestSelectClaimRaceBetweenTwoClauses(t *testing.T) {
	pool := scheduler.NewThreadPool(1)
	defer pool.Close()

	chA := NewChannel[int](1)
	chB := NewChannel[int](1)

	var winner int
	var gotA, gotB int
	var okA, okB bool
	selectDone := make(chan struct{})
	err := fiberx.GoOn(pool, func() {
		winner = Select(
			RecvCase(chA, &gotA, &okA),
			RecvCase(chB, &gotB, &okB),
		)
		close(selectDone)
	})
	require.NoError(t, err)

	sendADone := make(chan error, 1)
	err = fiberx.GoOn(pool, func() {
		sendADone <- chA.Send(1)
	})
	require.NoError(t, err)

	sendBDone := make(chan error, 1)
	err = fiberx.GoOn(pool, func() {
		sendBDone <- chB.Send(2)
	})
	require.NoError(t, err)

	<-selectDone
	require.NoError(t, <-sendADone)
	require.NoError(t, <-sendBDone)

	// chA's Send was submitted first, so it wins the uncontested claim.
	require.Equal(t, 0, winner)
	require.True(t, okA)
	require.Equal(t, 1, gotA)
	require.False(t, okB)
	require.Zero(t, gotB)

	// chB's Send lost the claim race; its value must have fallen through
	// to the channel's own buffer rather than being dropped.
	var drained int
	var drainedOK bool
	drainDone := make(chan struct{})
	err = fiberx.GoOn(pool, func() {
		drained, drainedOK = chB.Recv()
		close(drainDone)
	})
	require.NoError(t, err)
	<-drainDone
	require.True(t, drainedOK)
	require.Equal(t, 2, drained)
}
