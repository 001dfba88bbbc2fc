//go:build linux

package park

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Wait blocks the calling goroutine while w still reads expected. It may
// return spuriously; callers must re-check their condition in a loop.
// Grounded on the FUTEX_WAIT contract (futexsleep/futexwakeup).
func (w *Word) Wait(expected uint32) {
	for {
		if w.Load() != expected {
			return
		}
		_, _, errno := unix.Syscall6(
			unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(&w.v)),
			uintptr(linuxFutexWait),
			uintptr(expected),
			0, 0, 0,
		)
		// EAGAIN: value already changed, racy wake; EINTR: retry;
		// success (0): genuinely woken. All three loop back to the
		// value re-check above.
		if errno != 0 && errno != unix.EAGAIN && errno != unix.EINTR {
			return
		}
		if w.Load() != expected {
			return
		}
	}
}

// NotifyOne wakes at most one goroutine parked in Wait.
func (w *Word) NotifyOne() {
	unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&w.v)),
		uintptr(linuxFutexWake),
		1, 0, 0, 0,
	)
}

// NotifyAll wakes every goroutine currently parked in Wait.
func (w *Word) NotifyAll() {
	unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&w.v)),
		uintptr(linuxFutexWake),
		uintptr(^uint32(0)),
		0, 0, 0,
	)
}

const (
	linuxFutexWait = 0 // FUTEX_WAIT
	linuxFutexWake = 1 // FUTEX_WAKE
)
