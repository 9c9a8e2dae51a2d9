package signals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// ErrShutdown is the cancellation cause set when a shutdown signal arrives.
var ErrShutdown = errors.New("shutdown signal received")

// Shutdown lists the signals that start a drain.
var Shutdown = []os.Signal{os.Interrupt, syscall.SIGTERM}

// Bridge turns the first shutdown signal into context cancellation. Later
// signals are logged and otherwise ignored, so a drain is never restarted
// or cut short.
type Bridge struct {
	ch       <-chan os.Signal
	release  func()
	logger   *slog.Logger
	received atomic.Int64
}

// New subscribes to SIGINT and SIGTERM.
func New(logger *slog.Logger) *Bridge {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, Shutdown...)

	b := NewFromChannel(ch, logger)
	b.release = func() { signal.Stop(ch) }
	return b
}

// NewFromChannel builds a Bridge fed by ch instead of the OS.
func NewFromChannel(ch <-chan os.Signal, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		ch:      ch,
		release: func() {},
		logger:  logger,
	}
}

// Watch returns a context derived from parent that is cancelled, with
// ErrShutdown as its cause, on the first signal. The returned stop
// function unsubscribes and may be called more than once.
func (b *Bridge) Watch(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case sig, ok := <-b.ch:
				if !ok {
					return
				}
				b.handle(sig, cancel)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			b.release()
			cancel(context.Canceled)
		})
	}

	return ctx, stop
}

// Received reports how many shutdown signals have arrived.
func (b *Bridge) Received() int {
	return int(b.received.Load())
}

func (b *Bridge) handle(sig os.Signal, cancel context.CancelCauseFunc) {
	if b.received.Add(1) > 1 {
		b.logger.Info("Already draining, ignoring signal", slog.String("signal", sig.String()))
		return
	}

	b.logger.Info("Received signal, starting drain", slog.String("signal", sig.String()))
	cancel(fmt.Errorf("%w: %s", ErrShutdown, sig))
}
