// Package concurrency holds the bounded-parallelism primitives the smart
// executor uses to dispatch installs (Limiter, RunBounded) and an LRU cache
// type. Callers construct these explicitly rather than reaching for
// package-global state — the predecessor's config.globalRegistry/init()
// pattern is deliberately not repeated here.
package concurrency

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultParallelism mirrors the smart executor's default concurrent-install
// bound: min(NumCPU, 8).
func DefaultParallelism() int64 {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return int64(n)
}

// Limiter bounds the number of concurrently running install tasks.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a Limiter allowing up to max concurrent acquisitions.
func NewLimiter(max int64) *Limiter {
	if max < 1 {
		max = 1
	}
	return &Limiter{sem: semaphore.NewWeighted(max)}
}

// Acquire blocks until a slot is free or ctx is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release frees a previously acquired slot.
func (l *Limiter) Release() { l.sem.Release(1) }

// RunBounded runs one goroutine per task, bounded to max concurrent via an
// errgroup.Group with SetLimit, cancelling all remaining tasks the moment one
// returns an error or ctx is cancelled — the pattern the smart executor (C10)
// uses to install a resolved dependency set concurrently.
func RunBounded(ctx context.Context, max int64, tasks []func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(max))
	for _, task := range tasks {
		task := task
		g.Go(func() error { return task(gctx) })
	}
	return g.Wait()
}
