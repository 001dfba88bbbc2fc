package syncx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/scheduler"
)

// TestChannelPingPong has two fibers bounce integers
// 1..1000 between two capacity-1 channels.
func TestChannelPingPong(t *testing.T) {
	pool := scheduler.NewThreadPool(2)
	defer pool.Close()

	const n = 1000
	chAB := NewChannel[int](1)
	chBA := NewChannel[int](1)

	var received []int
	done := make(chan struct{})

	err := fiberx.GoOn(pool, func() {
		for i := 1; i <= n; i++ {
			require.NoError(t, chAB.Send(i))
			v, ok := chBA.Recv()
			require.True(t, ok)
			received = append(received, v)
		}
		close(done)
	})
	require.NoError(t, err)

	err = fiberx.GoOn(pool, func() {
		for i := 0; i < n; i++ {
			v, ok := chAB.Recv()
			require.True(t, ok)
			require.NoError(t, chBA.Send(v))
		}
	})
	require.NoError(t, err)

	<-done

	require.Len(t, received, n)
	for i, v := range received {
		require.Equal(t, i+1, v)
	}
}

// TestChannelCloseWakesParkedSenders covers a
// capacity-2 channel with 5 senders; after 2 buffer, the other 3 park;
// Close wakes them all with ErrQueueClosed.
func TestChannelCloseWakesParkedSenders(t *testing.T) {
	pool := scheduler.NewThreadPool(5)
	defer pool.Close()

	ch := NewChannel[int](2)
	results := make(chan error, 5)

	for i := 0; i < 5; i++ {
		i := i
		err := fiberx.GoOn(pool, func() {
			results <- ch.Send(i)
		})
		require.NoError(t, err)
	}

	ch.Close()

	var closedCount, okCount int
	for i := 0; i < 5; i++ {
		err := <-results
		if err == fiberx.ErrQueueClosed {
			closedCount++
		} else {
			require.NoError(t, err)
			okCount++
		}
	}
	// At least the 3 that could never fit in the 2-slot buffer must
	// observe closure; the exact split depends on scheduling, but the
	// two counts must always sum to 5 and closedCount must be at least 3.
	require.Equal(t, 5, closedCount+okCount)
	require.GreaterOrEqual(t, closedCount, 3)

	_, ok := ch.Recv()
	// A post-close Recv drains whatever the 2-slot buffer held; once
	// empty it reports !ok without ever parking.
	_ = ok
}

// TestChannelRendezvous covers the capacity-0 Open Question resolution:
// Send must park until a concurrent Recv claims the value directly.
func TestChannelRendezvous(t *testing.T) {
	pool := scheduler.NewThreadPool(2)
	defer pool.Close()

	ch := NewChannel[string](0)
	done := make(chan struct{})

	err := fiberx.GoOn(pool, func() {
		require.NoError(t, ch.Send("hello"))
		close(done)
	})
	require.NoError(t, err)

	var got string
	recvDone := make(chan struct{})
	err = fiberx.GoOn(pool, func() {
		v, ok := ch.Recv()
		require.True(t, ok)
		got = v
		close(recvDone)
	})
	require.NoError(t, err)

	<-done
	<-recvDone
	require.Equal(t, "hello", got)
}
