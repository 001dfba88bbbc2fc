package fiberx

import (
	"errors"
	"fmt"
	"os"
)

// Sentinel errors returned across the package boundary. These are the
// only two error kinds that ever reach a caller; everything else is a
// programmer error and goes through abort.
var (
	// ErrStackOOM is returned by go() when the stack allocator cannot
	// satisfy a fresh fiber's stack request.
	ErrStackOOM = errors.New("fiberx: stack allocation failed")

	// ErrQueueClosed is returned by Channel.Send once the channel has
	// been closed. Select returns only a clause index and never reports
	// it.
	ErrQueueClosed = errors.New("fiberx: channel closed")
)

// abortFunc is swapped out in tests so a programmer-error path can be
// observed without actually terminating the test binary.
var abortFunc = defaultAbort

// abort reports a programmer-error condition and terminates the process.
// It is never recoverable: these conditions are never meant to
// propagate as Go errors or panics a caller could catch.
func abort(format string, args ...any) {
	abortFunc(fmt.Sprintf(format, args...))
}

// SetAbortHook overrides the process-wide abort path; passing nil
// restores the default (log-and-exit) behavior. Intended for tests that
// need to observe a programmer-error condition firing without actually
// terminating the test binary.
func SetAbortHook(fn func(msg string)) {
	if fn == nil {
		abortFunc = defaultAbort
		return
	}
	abortFunc = fn
}

// Abort is the exported form of abort, for sibling packages (syncx,
// scheduler) reporting a programmer-error condition of their own —
// double-close, unlock-without-ownership, counter underflow and the
// like all funnel through the same non-recoverable path.
func Abort(format string, args ...any) {
	abort(format, args...)
}

func defaultAbort(msg string) {
	log.Fatal().Str("component", "fiberx").Msg(msg)
	// log.Fatal above calls os.Exit(1) via zerolog once written; the
	// explicit exit below is a backstop for a redirected/no-op logger.
	os.Exit(2)
}
