package acquire

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/docket-watch/acquire/pkg/models"
)

// Run drives a batch of acquisitions with bounded worker concurrency.
// Results stream on the Results channel as they complete, in completion
// order, not request order.
type Run struct {
	engine   *Engine
	requests []models.AcquireRequest
	workers  int

	results chan models.AcquireResult
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	startOnce sync.Once
}

// NewRun prepares a batch run. workers below 1 is clamped to 1; the browser
// context cap inside the session manager still applies on top of this.
func NewRun(engine *Engine, requests []models.AcquireRequest, workers int) *Run {
	if workers < 1 {
		workers = 1
	}
	if workers > len(requests) && len(requests) > 0 {
		workers = len(requests)
	}
	return &Run{
		engine:   engine,
		requests: requests,
		workers:  workers,
		results:  make(chan models.AcquireResult, workers),
	}
}

// Start launches the workers. Safe to call once; further calls are no-ops.
// The Results channel closes after the last request completes or the run is
// cancelled.
func (r *Run) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		ctx, r.cancel = context.WithCancel(ctx)

		queue := make(chan models.AcquireRequest)

		for i := 0; i < r.workers; i++ {
			r.wg.Add(1)
			go r.worker(ctx, queue)
		}

		go func() {
			defer close(queue)
			for _, req := range r.requests {
				select {
				case queue <- req:
				case <-ctx.Done():
					return
				}
			}
		}()

		go func() {
			r.wg.Wait()
			close(r.results)
		}()

		log.Debug().
			Int("requests", len(r.requests)).
			Int("workers", r.workers).
			Msg("Batch run started")
	})
}

func (r *Run) worker(ctx context.Context, queue <-chan models.AcquireRequest) {
	defer r.wg.Done()
	for req := range queue {
		record, err := r.engine.Acquire(ctx, req.Jurisdiction, req.Identifier)
		result := models.AcquireResult{Request: req, Record: record, Err: err}
		select {
		case r.results <- result:
		case <-ctx.Done():
			return
		}
	}
}

// Results returns the stream of completed acquisitions.
func (r *Run) Results() <-chan models.AcquireResult {
	return r.results
}

// Cancel aborts in-flight and pending requests. Workers observing the
// cancellation report their current request as failed with a timeout error.
func (r *Run) Cancel() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Wait blocks until every worker has exited. Callers draining Results do not
// need to call Wait separately.
func (r *Run) Wait() {
	r.wg.Wait()
}
