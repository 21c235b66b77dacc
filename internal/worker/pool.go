// Package worker provides the bounded concurrency primitives the annotation
// and aggregation layers share: a fixed-size job pool and a per-model rate
// limiter.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job.
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers. Concurrency is bounded so a
// batch of external-capability calls cannot exceed the configured worker
// limit.
type Pool struct {
	workers      int
	jobs         chan Job
	results      chan Result
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	closeJobs    sync.Once
	closeResults sync.Once
}

// NewPool creates a pool with the given worker count.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			res := job.Execute(p.ctx)
			select {
			case p.results <- res:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues one job.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Close signals that no more jobs will be submitted. It must be called
// exactly once, after the last Submit; Wait does not return without it.
func (p *Pool) Close() {
	p.closeJobs.Do(func() { close(p.jobs) })
}

// Wait drains results until the workers finish. Submission may continue
// concurrently until Close is called.
func (p *Pool) Wait() []Result {
	go func() {
		p.wg.Wait()
		p.closeResults.Do(func() { close(p.results) })
	}()

	var results []Result
	for res := range p.results {
		results = append(results, res)
	}
	return results
}

// Shutdown cancels outstanding work immediately.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeResults.Do(func() { close(p.results) })
}
