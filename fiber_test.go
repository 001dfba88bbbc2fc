package fiberx

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testPool is a minimal multi-goroutine Scheduler for this package's own
// tests, defined locally to avoid an import cycle with
// fiberx/scheduler (which imports fiberx).
type testPool struct {
	ch chan Task
}

func newTestPool(workers int) *testPool {
	p := &testPool{ch: make(chan Task, 4096)}
	for i := 0; i < workers; i++ {
		go func() {
			for t := range p.ch {
				t.Run()
			}
		}()
	}
	return p
}

func (p *testPool) Submit(t Task) { p.ch <- t }

func TestGoOnRunsBodyToCompletion(t *testing.T) {
	pool := newTestPool(2)
	done := make(chan struct{})

	err := GoOn(pool, func() {
		defer close(done)
	})
	require.NoError(t, err)
	<-done
}

func TestYieldLetsOtherFibersRun(t *testing.T) {
	pool := newTestPool(1)
	var order []int
	results := make(chan struct{}, 2)

	err := GoOn(pool, func() {
		order = append(order, 1)
		Yield()
		order = append(order, 3)
		results <- struct{}{}
	})
	require.NoError(t, err)

	err = GoOn(pool, func() {
		order = append(order, 2)
		results <- struct{}{}
	})
	require.NoError(t, err)

	<-results
	<-results
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestCurrentIDIsStableWithinAFiber(t *testing.T) {
	pool := newTestPool(4)
	var seen [2]FiberId
	done := make(chan struct{}, 2)

	err := GoOn(pool, func() {
		seen[0] = CurrentID()
		Yield()
		require.Equal(t, seen[0], CurrentID())
		done <- struct{}{}
	})
	require.NoError(t, err)

	err = GoOn(pool, func() {
		seen[1] = CurrentID()
		done <- struct{}{}
	})
	require.NoError(t, err)

	<-done
	<-done
	require.NotEqual(t, seen[0], seen[1])
}

func TestSwitchToTransfersSymmetrically(t *testing.T) {
	pool := newTestPool(1)
	var submissions atomic.Int32
	countingPool := &countingScheduler{inner: pool, count: &submissions}

	done := make(chan struct{})
	var bHandle FiberHandle
	bReady := make(chan struct{})

	err := GoOn(countingPool, func() {
		<-bReady
		SwitchTo(bHandle)
	})
	require.NoError(t, err)

	f, err := newFiber(countingPool, func() {
		close(done)
	})
	require.NoError(t, err)
	bHandle = f.handle()
	close(bReady)

	<-done
	// A's switch_to(B) should cost exactly one scheduler submission (A's
	// own yield-back), not a second one for B.
	require.Equal(t, int32(2), submissions.Load())
}

type countingScheduler struct {
	inner Scheduler
	count *atomic.Int32
}

func (s *countingScheduler) Submit(t Task) {
	s.count.Add(1)
	s.inner.Submit(t)
}

func TestFreeListReturnsToBaselineAfterQuiescence(t *testing.T) {
	pool := newTestPool(4)
	base := FreeListSize() + InUseCount()

	const n = 50
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		err := GoOn(pool, func() {
			Yield()
			done <- struct{}{}
		})
		require.NoError(t, err)
	}
	for i := 0; i < n; i++ {
		<-done
	}

	require.Eventually(t, func() bool {
		return InUseCount() == 0
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, base, FreeListSize()+InUseCount())
}
