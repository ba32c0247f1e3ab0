package pipeline

import (
	"context"
	"runtime"
	"sync"
)

// pool fans ticker jobs across a bounded set of goroutines. Jobs write
// into caller-owned slots, so no recombination locking is needed; the
// pool only bounds parallelism.
type pool struct {
	workers int
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &pool{workers: workers}
}

// run executes every job, at most p.workers at a time. Jobs still check
// ctx themselves; a cancelled context stops feeding new jobs but lets
// in-flight ones finish their slot.
func (p *pool) run(ctx context.Context, jobs []func(context.Context)) {
	queue := make(chan func(context.Context))
	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				job(ctx)
			}
		}()
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			job(ctx) // runs the job's own cancellation path
		case queue <- job:
		}
	}
	close(queue)
	wg.Wait()
}
