package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
)

// SignalContext returns a context that's cancelled when one of signals is received.
// A second signal exits the process with a non-zero code, for commands that don't stop promptly.
// The returned stop func cancels the context and stops listening for signals.
func SignalContext(parent context.Context, signals ...os.Signal) (ctx context.Context, stop func()) {
	if len(signals) == 0 {
		panic("no signals passed to SignalContext")
	}
	ctx, cancel := context.WithCancel(parent)
	var (
		once    sync.Once
		stopped = make(chan struct{})
		sigs    = make(chan os.Signal, 1)
	)
	stop = func() {
		once.Do(func() {
			close(stopped)
			cancel()
		})
	}
	signal.Notify(sigs, signals...)
	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancel()
		case <-stopped:
			return
		}
		select {
		case <-sigs:
			os.Exit(1)
		case <-stopped:
		}
	}()
	return ctx, stop
}
