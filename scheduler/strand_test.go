package scheduler

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrandSchedulerRunsTasksInSubmissionOrder(t *testing.T) {
	pool := NewThreadPool(4)
	defer func() {
		pool.Close()
		pool.Wait()
	}()

	strand := NewStrandScheduler(pool)

	const n = 2000
	var order []int
	done := make(chan struct{})
	var completed atomic.Int32

	for i := 0; i < n; i++ {
		i := i
		strand.Submit(runFunc(func() {
			order = append(order, i)
			if completed.Add(1) == n {
				close(done)
			}
		}))
	}

	<-done
	require.Len(t, order, n)
	for i, v := range order {
		require.Equal(t, i, v)
	}
}
