package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coop-intake-go/pkg/logger"
)

type task struct {
	name string
	fn   func(ctx context.Context)
}

// Runner executes fire-and-forget tasks on a fixed pool of goroutines fed by
// a bounded queue. A full queue rejects new tasks instead of blocking the caller.
type Runner struct {
	queue       chan task
	workers     int
	taskTimeout time.Duration
	log         logger.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRunner(queueSize, workers int, taskTimeout time.Duration, log logger.Logger) *Runner {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		queue:       make(chan task, queueSize),
		workers:     workers,
		taskTimeout: taskTimeout,
		log:         log,
	}
}

// Start launches the workers. Once ctx is done the runner stops accepting
// tasks, finishes whatever is already queued and exits; Wait blocks until then.
func (r *Runner) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for t := range r.queue {
				r.run(base, t)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		r.close()
	}()
}

// Go queues fn without blocking. It reports false when the queue is full or
// the runner is shutting down.
func (r *Runner) Go(name string, fn func(ctx context.Context)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.log.Warn("background task rejected, runner stopped", "task", name)
		return false
	}
	select {
	case r.queue <- task{name: name, fn: fn}:
		return true
	default:
		return false
	}
}

func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.queue)
	r.log.Debug("runner closed", "pending", len(r.queue))
}

func (r *Runner) run(base context.Context, t task) {
	ctx := base
	if r.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, r.taskTimeout)
		defer cancel()
	}

	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.InternalError("background task panicked", fmt.Errorf("%v", rec), "task", t.name)
			return
		}
		r.log.Debug("background task done", "task", t.name, "duration_ms", time.Since(started).Milliseconds())
	}()

	t.fn(ctx)
}
