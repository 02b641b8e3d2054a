// Package worker runs team jobs from a queue on a fixed set of goroutines.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/roboscout/internal/adapters/mq/queue"
	"github.com/okian/roboscout/pkg/logger"
)

// Handler processes one job.
type Handler interface {
	Process(ctx context.Context, job queue.Job)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job queue.Job)

// Process calls f.
func (f HandlerFunc) Process(ctx context.Context, job queue.Job) { f(ctx, job) }

// Source is where workers receive jobs.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker pulls jobs until its channel closes or ctx is done.
type Worker struct {
	name      string
	handler   Handler
	processed int
	done      chan struct{}
	logger    logger.Logger
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context, jobs <-chan queue.Job) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			start := time.Now()
			w.handler.Process(ctx, job)
			w.processed++
			w.logger.Debug(ctx, "job done",
				logger.String("team", job.Code),
				logger.Duration("took", time.Since(start)),
			)
		}
	}
}

// Pool manages multiple workers reading one queue.
type Pool struct {
	workers []*Worker
	source  Source
	handler Handler
	logger  logger.Logger
	started bool
	wg      sync.WaitGroup
}

// NewPool creates a pool of workerCount workers. Counts below one become one.
func NewPool(workerCount int, source Source, handler Handler, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		source:  source,
		handler: handler,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.workers {
		name := "worker-" + strconv.Itoa(i)
		p.workers[i] = &Worker{
			name:    name,
			handler: handler,
			done:    make(chan struct{}),
			logger:  p.logger.Named(name),
		}
	}
	return p
}

// Start launches every worker on a shared dequeue channel.
func (p *Pool) Start(ctx context.Context) error {
	if p.started {
		return fmt.Errorf("worker pool already started")
	}
	p.started = true
	jobs := p.source.Dequeue(ctx)
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx, jobs)
		}(w)
	}
	return nil
}

// Wait blocks until every worker has stopped and returns the total number
// of processed jobs.
func (p *Pool) Wait() int {
	p.wg.Wait()
	total := 0
	for _, w := range p.workers {
		total += w.processed
	}
	return total
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }
