package app

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/sonemaro/pngshrink/pkg/logger"
)

// exitCode is used when a second interrupt forces the process down
const exitCode = 130

// signalState tracks the state of signal handling
type signalState struct {
	shutdownInitiated atomic.Bool
}

// setupSignalHandling cancels the run context on SIGINT or SIGTERM
func (a *App) setupSignalHandling() {
	a.log.Debug("Initializing signal handlers")

	a.signals = make(chan os.Signal, 1)
	signal.Notify(a.signals, syscall.SIGINT, syscall.SIGTERM)

	go a.handleSignals(a.signals, &signalState{}, os.Exit)
}

// handleSignals processes incoming system signals. The first one cancels the
// context: running encoder processes are killed, the remaining paths fail fast
// so the PNG queue still drains, and WebP conversion is not started. A second
// one exits.
func (a *App) handleSignals(sigChan <-chan os.Signal, state *signalState, exit func(int)) {
	for sig := range sigChan {
		a.log.WithFields(logger.Fields{
			"signal": sig.String(),
		}).Debug("Received system signal")

		if !state.shutdownInitiated.CompareAndSwap(false, true) {
			a.log.Warn("Received second interrupt, exiting")
			a.progress.Stop()
			exit(exitCode)
			return
		}

		a.log.Warn("Interrupted, stopping encoders")
		a.cancel()
	}
}

// stopSignalHandling unregisters the handlers and ends the handler goroutine
func (a *App) stopSignalHandling() {
	a.stopOnce.Do(func() {
		if a.signals == nil {
			return
		}
		signal.Stop(a.signals)
		close(a.signals)
	})
}
