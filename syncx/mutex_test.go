package syncx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/scheduler"
)

// TestMutexStress has several
// worker threads each running several fibers that all hammer one shared
// counter protected by a Mutex. The final count must equal the exact
// product of workers, fibers-per-worker and increments-per-fiber — no
// lost updates, no phantom owners.
func TestMutexStress(t *testing.T) {
	const (
		workers          = 8
		fibersPerWorker  = 8
		incrementsEach   = 2000
	)

	pool := scheduler.NewThreadPool(workers)

	mu := NewMutex()
	counter := 0
	wg := NewWaitGroup(int32(workers * fibersPerWorker))

	for i := 0; i < workers*fibersPerWorker; i++ {
		err := fiberx.GoOn(pool, func() {
			for j := 0; j < incrementsEach; j++ {
				mu.Lock()
				counter++
				mu.Unlock()
			}
			wg.Done(1)
		})
		require.NoError(t, err)
	}

	allDone := make(chan struct{})
	err := fiberx.GoOn(pool, func() {
		wg.Wait()
		close(allDone)
	})
	require.NoError(t, err)
	<-allDone

	pool.Close()
	pool.Wait()

	require.Equal(t, workers*fibersPerWorker*incrementsEach, counter)
}

// TestMutexUncontendedRoundTripIsANoOp covers the round-trip idempotence
// property that lock;unlock with no contenders leaves the
// mutex in exactly the state it started in.
func TestMutexUncontendedRoundTripIsANoOp(t *testing.T) {
	pool := scheduler.NewThreadPool(1)
	defer pool.Close()

	mu := NewMutex()
	done := make(chan struct{})
	err := fiberx.GoOn(pool, func() {
		mu.Lock()
		mu.Unlock()
		require.True(t, mu.TryLock())
		mu.Unlock()
		close(done)
	})
	require.NoError(t, err)
	<-done
}
