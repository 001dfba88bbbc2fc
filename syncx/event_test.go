package syncx

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/scheduler"
)

// TestEventReusePattern covers reset; spawn N
// waiters; fire; join all; reset; spawn N; fire; join, for two rounds,
// with no fiber left parked afterward.
func TestEventReusePattern(t *testing.T) {
	const n = 100
	pool := scheduler.NewThreadPool(4)
	defer pool.Close()

	ev := NewEvent()
	ev.Reset()

	runRound := func() {
		var woken atomic.Int32
		wg := NewWaitGroup(int32(n))
		for i := 0; i < n; i++ {
			err := fiberx.GoOn(pool, func() {
				ev.Wait()
				woken.Add(1)
				wg.Done(1)
			})
			require.NoError(t, err)
		}

		fired := make(chan struct{})
		err := fiberx.GoOn(pool, func() {
			ev.Fire()
			close(fired)
		})
		require.NoError(t, err)
		<-fired

		done := make(chan struct{})
		err = fiberx.GoOn(pool, func() {
			wg.Wait()
			close(done)
		})
		require.NoError(t, err)
		<-done

		require.Equal(t, int32(n), woken.Load())
		ev.Reset()
	}

	runRound()
	runRound()
}

// TestEventWaitAfterFireDoesNotPark covers the case where a fiber
// calls Wait after Fire must not suspend at all.
func TestEventWaitAfterFireDoesNotPark(t *testing.T) {
	pool := scheduler.NewThreadPool(1)
	defer pool.Close()

	ev := NewEvent()
	ev.Fire()

	done := make(chan struct{})
	err := fiberx.GoOn(pool, func() {
		ev.Wait() // must return immediately
		close(done)
	})
	require.NoError(t, err)
	<-done
}
