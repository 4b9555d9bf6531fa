package background

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool runs fire-and-forget tasks with a bound on concurrent execution.
// Submit never blocks the caller: tasks over the limit queue up in their own
// goroutine until a slot frees. Task errors and panics stay inside the pool.
type Pool struct {
	log  *slog.Logger
	base context.Context
	sem  *semaphore.Weighted
	wg   sync.WaitGroup
}

// NewPool binds the pool to a base context; cancelling it prevents queued
// tasks from starting. size is the maximum number of tasks running at once.
func NewPool(ctx context.Context, log *slog.Logger, size int64) *Pool {
	return &Pool{log: log, base: ctx, sem: semaphore.NewWeighted(size)}
}

// Submit schedules fn and returns immediately. The caller never observes
// completion or failure.
func (p *Pool) Submit(name string, fn func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.base.Err(); err != nil {
			p.log.Warn("background task dropped", "task", name, "err", err)
			return
		}
		if err := p.sem.Acquire(p.base, 1); err != nil {
			p.log.Warn("background task dropped", "task", name, "err", err)
			return
		}
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("background task panicked", "task", name, "panic", r)
			}
		}()
		fn(p.base)
	}()
}

// Wait blocks until every submitted task has finished or been dropped.
func (p *Pool) Wait() {
	p.wg.Wait()
}
