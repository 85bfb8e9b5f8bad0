// Package signal provides graceful shutdown handling for gantry CLI commands.
//
// Long-running builds and pipeline runs use the handler's context so a single
// Ctrl+C cancels the in-flight subprocess instead of orphaning it. A second
// interrupt exits immediately for users who do not want to wait for cleanup.
//
// The package imports only the standard library so any internal package can
// depend on it.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// forcedExitCode mirrors the shell convention of 128+SIGINT.
const forcedExitCode = 130

// Handler cancels its context on SIGINT or SIGTERM and force-exits on a
// repeated signal.
type Handler struct {
	ctx         context.Context //nolint:containedctx // the handler owns the context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	done        chan struct{}
	sigs        chan os.Signal
	stopOnce    sync.Once

	// exit is swapped out in tests.
	exit func(code int)
}

// NewHandler starts listening for SIGINT and SIGTERM.
//
// Usage:
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	runPipeline(h.Context())
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
		// Buffered so signal.Notify never drops a signal between receives.
		sigs: make(chan os.Signal, 2),
		exit: os.Exit,
	}

	signal.Notify(h.sigs, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the context cancelled by the first interrupt. All
// interruptible work should run under it.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel closed when an interrupt was received, so
// callers can distinguish Ctrl+C from an ordinary failure.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop detaches from the signal machinery and cancels the context. Safe to
// call more than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigs)
		close(h.done)
		h.cancel()
	})
}

// listen handles signals until Stop is called or the context ends. The first
// signal cancels the context and closes Interrupted; the second one gives up
// on graceful shutdown and exits with the conventional interrupt code.
func (h *Handler) listen() {
	select {
	case <-h.ctx.Done():
		return
	case <-h.done:
		return
	case <-h.sigs:
		h.cancel()
		close(h.interrupted)
	}

	// Graceful shutdown is underway. One more signal means exit now.
	select {
	case <-h.done:
	case <-h.sigs:
		h.exit(forcedExitCode)
	}
}
