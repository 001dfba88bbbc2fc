package syncx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/scheduler"
)

// TestBarrierOfFour has four fibers each
// append their id, arrive at the barrier, then append -id; every
// pre-arrive append must precede every post-arrive append.
func TestBarrierOfFour(t *testing.T) {
	pool := scheduler.NewThreadPool(4)
	defer pool.Close()

	b := NewBarrier(4)
	mu := NewMutex()
	var log []int
	done := make(chan struct{}, 4)

	for id := 1; id <= 4; id++ {
		id := id
		err := fiberx.GoOn(pool, func() {
			mu.Lock()
			log = append(log, id)
			mu.Unlock()

			b.Arrive()

			mu.Lock()
			log = append(log, -id)
			mu.Unlock()

			done <- struct{}{}
		})
		require.NoError(t, err)
	}

	for i := 0; i < 4; i++ {
		<-done
	}

	require.Len(t, log, 8)
	var sawNegative bool
	for _, v := range log[:4] {
		require.Positive(t, v)
	}
	for _, v := range log[4:] {
		require.Negative(t, v)
		sawNegative = true
	}
	require.True(t, sawNegative)
}
