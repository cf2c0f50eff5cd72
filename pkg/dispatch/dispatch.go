// Package dispatch runs fire-and-forget background tasks whose failures are
// observable only through logs, never through the triggering request.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher runs named tasks on background goroutines. Task failures and
// panics are logged and swallowed; callers never see them.
type Dispatcher struct {
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// New creates a Dispatcher. Tasks run with a per-task deadline; a zero
// timeout means no deadline.
func New(logger *slog.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		logger:  logger.With("system", "dispatch"),
		timeout: timeout,
	}
}

// Go runs fn on a background goroutine detached from the caller's context.
// The task gets its own context so a completed request does not cancel it.
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("background task panicked", "task", name, "panic", r)
			}
		}()

		ctx := context.Background()
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		start := time.Now()
		if err := fn(ctx); err != nil {
			d.logger.Warn("background task failed",
				"task", name,
				"duration", time.Since(start),
				"error", err,
			)
			return
		}

		d.logger.Debug("background task complete", "task", name, "duration", time.Since(start))
	}()
}

// Wait blocks until all in-flight tasks have finished. Intended for
// shutdown hooks and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
