// Package worker pre-builds dashboards off the request path.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/homerun/internal/adapters/mq/queue"
	"github.com/okian/homerun/internal/domain/types"
	"github.com/okian/homerun/pkg/logger"
	"github.com/okian/homerun/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	defaultJobTimeout   = 30 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Builder produces a player's dashboard; building it fills the cache.
type Builder interface {
	Dashboard(ctx context.Context, player string) (types.Dashboard, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job

	// Len returns the jobs still waiting and reports them to the queue's
	// size observer.
	Len(ctx context.Context) int
}

// Worker processes jobs until its queue closes or ctx ends.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker builds dashboards for dequeued players.
type InMemoryWorker struct {
	queue      Queue
	builder    Builder
	name       string
	jobTimeout time.Duration

	processed atomic.Int64
	failed    atomic.Int64

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, b Builder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		builder:    b,
		name:       "warmer",
		jobTimeout: defaultJobTimeout,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.queue.Len(ctx)
			if err := w.process(ctx, job); err != nil {
				w.logger.Warn(ctx, "dashboard warm-up failed", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of successfully built dashboards.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of failed builds.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error {
	jctx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	if _, err := w.builder.Dashboard(jctx, job.Player); err != nil {
		w.failed.Add(1)
		metrics.RecordWarmJob("error")
		metrics.RecordErrorByComponent("worker", "warm_failed")
		return fmt.Errorf("warm %q: %w", job.Player, err)
	}
	w.processed.Add(1)
	metrics.RecordWarmJob("ok")
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. A count below one uses the default.
func NewPool(workerCount int, q Queue, b Builder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}
	for i := range workerCount {
		wopts := append([]Option{WithName("warmer-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, b, wopts...)
		pool.logger = pool.workers[i].logger
	}
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Processed sums successful builds across workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Failed sums failed builds across workers.
func (p *Pool) Failed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}

// Shutdown closes the queue and waits for workers to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
