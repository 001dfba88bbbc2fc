package refcount

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountedDestroysExactlyOnceAtZero(t *testing.T) {
	var c Counted
	var destroyed int
	c.Init(1, func() { destroyed++ })

	c.Inc()
	c.Inc()
	require.EqualValues(t, 3, c.Count())

	c.Dec()
	c.Dec()
	require.Equal(t, 0, destroyed)
	require.EqualValues(t, 1, c.Count())

	c.Dec()
	require.Equal(t, 1, destroyed)
	require.EqualValues(t, 0, c.Count())
}

func TestCountedDestroysExactlyOnceUnderConcurrency(t *testing.T) {
	const holders = 200
	var c Counted
	var destroyed int
	var mu sync.Mutex
	c.Init(int64(holders), func() {
		mu.Lock()
		destroyed++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(holders)
	for i := 0; i < holders; i++ {
		go func() {
			defer wg.Done()
			c.Dec()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, destroyed)
}
