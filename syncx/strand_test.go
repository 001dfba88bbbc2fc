package syncx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xlaez/fiberx"
	"github.com/xlaez/fiberx/scheduler"
)

// TestCombiningStrandSerializesWithoutLocking has 1000 fibers each
// submit an increment of a shared counter; CombiningStrand guarantees
// every section runs to completion one at a time, with no mutex ever
// taken, so the final count must equal the exact number of submissions.
func TestCombiningStrandSerializesWithoutLocking(t *testing.T) {
	const n = 1000
	pool := scheduler.NewThreadPool(8)
	defer pool.Close()

	strand := NewCombiningStrand()
	counter := 0
	done := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		err := fiberx.GoOn(pool, func() {
			strand.Submit(func() {
				counter++
			})
			done <- struct{}{}
		})
		require.NoError(t, err)
	}

	for i := 0; i < n; i++ {
		<-done
	}

	require.Equal(t, n, counter)
}

// TestCombiningStrandSingleSubmitterRunsInline covers the uncontended
// path: a submitter that finds the strand idle becomes the combiner and
// its own section runs synchronously within Submit.
func TestCombiningStrandSingleSubmitterRunsInline(t *testing.T) {
	pool := scheduler.NewThreadPool(1)
	defer pool.Close()

	strand := NewCombiningStrand()
	var ran bool
	done := make(chan struct{})

	err := fiberx.GoOn(pool, func() {
		strand.Submit(func() {
			ran = true
		})
		require.True(t, ran)
		close(done)
	})
	require.NoError(t, err)
	<-done
}
