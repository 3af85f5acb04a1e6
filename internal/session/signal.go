package session

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// SignalPlane captures SIGUSR1 asynchronously and exposes it as a flag the
// dispatcher polls and clears (spec.md §4.9). Go's runtime signal delivery
// is already restartable — there is no EINTR equivalent to guard against —
// so the handler goroutine only ever does one atomic store.
type SignalPlane struct {
	ch      chan os.Signal
	flag    atomic.Bool
	stop    chan struct{}
	stopped chan struct{}
}

// NewSignalPlane installs a SIGUSR1 handler and starts the capture
// goroutine. Call Stop to unregister it.
func NewSignalPlane() *SignalPlane {
	sp := &SignalPlane{
		ch:      make(chan os.Signal, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	signal.Notify(sp.ch, syscall.SIGUSR1)

	go func() {
		defer close(sp.stopped)
		for {
			select {
			case <-sp.ch:
				sp.flag.Store(true)
			case <-sp.stop:
				return
			}
		}
	}()
	return sp
}

// LeaderboardRequested reports and clears the signal flag atomically, so a
// concurrent signal arriving after the check is never lost (spec.md §4.5
// step 1: "atomically clear it and invoke the leaderboard generator").
func (sp *SignalPlane) LeaderboardRequested() bool {
	return sp.flag.CompareAndSwap(true, false)
}

// Raise sets the flag directly; used by tests that cannot send a real
// process signal.
func (sp *SignalPlane) Raise() {
	sp.flag.Store(true)
}

// Stop unregisters the handler and waits for the capture goroutine to exit.
func (sp *SignalPlane) Stop() {
	signal.Stop(sp.ch)
	close(sp.stop)
	<-sp.stopped
}
