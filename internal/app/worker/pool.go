// Package worker provides a bounded worker pool for external fetch fan-out.
package worker

import (
	"context"
	"sync"
)

const (
	// MinWorkers and MaxWorkers bound the pool size.
	MinWorkers = 3
	MaxWorkers = 6
)

// Job is one unit of work. Its result lands at the job's index.
type Job[T any] func(ctx context.Context) (T, error)

// Result holds the outcome of a job.
type Result[T any] struct {
	Value T
	Err   error
	Done  bool // false when the job was never picked up
}

// Pool is a fixed-size worker pool.
type Pool struct {
	workers int
}

// NewPool creates a pool. The worker count is clamped to [MinWorkers, MaxWorkers].
func NewPool(workers int) *Pool {
	if workers < MinWorkers {
		workers = MinWorkers
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Run queues every job and lets the workers drain the queue.
// Results are indexed by job position, so completion order is not observable.
// Once ctx is done, workers stop picking up jobs; those results have Done=false.
func Run[T any](ctx context.Context, p *Pool, jobs []Job[T]) []Result[T] {
	results := make([]Result[T], len(jobs))
	if len(jobs) == 0 {
		return results
	}

	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				if ctx.Err() != nil {
					continue
				}
				v, err := jobs[i](ctx)
				results[i] = Result[T]{Value: v, Err: err, Done: true}
			}
		}()
	}
	wg.Wait()

	return results
}
