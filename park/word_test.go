package park

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWordCASAndLoad(t *testing.T) {
	var w Word
	require.EqualValues(t, 0, w.Load())
	require.True(t, w.CAS(0, 5))
	require.False(t, w.CAS(0, 9))
	require.EqualValues(t, 5, w.Load())
}

func TestWordWaitWakesOnNotify(t *testing.T) {
	var w Word
	w.Store(1)

	woken := make(chan struct{})
	go func() {
		w.Wait(1)
		close(woken)
	}()

	select {
	case <-woken:
		t.Fatal("Wait returned before the word changed")
	case <-time.After(20 * time.Millisecond):
	}

	w.Store(2)
	w.NotifyAll()

	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake after NotifyAll")
	}
}

func TestWordWaitReturnsImmediatelyIfAlreadyChanged(t *testing.T) {
	var w Word
	w.Store(7)
	done := make(chan struct{})
	go func() {
		w.Wait(0) // expected already stale: must not block
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on an already-stale expectation")
	}
}
