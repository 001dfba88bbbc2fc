package fiberx

import (
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// log is the package-wide structured logger. It defaults to a logger
// writing to io.Discard so the runtime is silent unless an embedder
// opts in via SetLogger, favoring "quiet unless asked" breadcrumbs
// over noisy default output.
var logBox atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(io.Discard).With().Timestamp().Logger()
	logBox.Store(&l)
}

var log = loggerAccessor{}

type loggerAccessor struct{}

func (loggerAccessor) Fatal() *zerolog.Event { return logBox.Load().Fatal() }
func (loggerAccessor) Error() *zerolog.Event { return logBox.Load().Error() }
func (loggerAccessor) Warn() *zerolog.Event  { return logBox.Load().Warn() }
func (loggerAccessor) Info() *zerolog.Event  { return logBox.Load().Info() }
func (loggerAccessor) Debug() *zerolog.Event { return logBox.Load().Debug() }

// SetLogger installs l as the runtime's structured logger. It is safe to
// call concurrently with fiber activity; the new logger takes effect for
// subsequent log statements only.
func SetLogger(l zerolog.Logger) {
	logBox.Store(&l)
}
