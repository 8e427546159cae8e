// Package runner processes independent race requests on a bounded worker
// pool. Each run owns its own RNG, run state, and commentary log; there is
// no shared mutable state across runs and no locking inside the engine.
package runner

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ovation22/TripleDerby-sub002/sim"
)

// Request is one queued race simulation.
type Request struct {
	Seed       int64
	Definition sim.RaceDefinition
	Entrants   []sim.Entrant
	Condition  sim.TrackCondition
}

// Outcome is the terminal state of one request. Exactly one of Result,
// Err, or Skipped is meaningful: Skipped requests were never started
// because cancellation was observed between runs; a run is never
// partially simulated.
type Outcome struct {
	Result  *sim.RaceResult
	Err     error
	Skipped bool
}

// Pool is a bounded worker pool for race simulations. Workers should stay
// in the low single digits; each run is CPU-bound and self-contained.
type Pool struct {
	cfg     *sim.Config
	workers int
}

// NewPool creates a pool with the given concurrency limit. A limit below 1
// is treated as 1.
func NewPool(cfg *sim.Config, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{cfg: cfg, workers: workers}
}

// Run processes every request and returns outcomes in request order. It
// blocks until all workers drain. Cancellation is observed only between
// runs: a request picked up after ctx is done is reported as skipped, and
// an in-flight run always proceeds to completion.
func (p *Pool) Run(ctx context.Context, requests []Request) []Outcome {
	outcomes := make([]Outcome, len(requests))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					outcomes[idx] = Outcome{Skipped: true}
					continue
				}
				req := requests[idx]
				result, err := sim.Simulate(p.cfg, req.Definition, req.Entrants, req.Condition, sim.NewSimulationKey(req.Seed))
				if err != nil {
					logrus.Warnf("worker %d: request %d not simulated: %v", worker, idx, err)
				}
				outcomes[idx] = Outcome{Result: result, Err: err}
			}
		}(w)
	}
	for idx := range requests {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return outcomes
}
