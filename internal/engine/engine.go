// Package engine runs a set of evaluator instances concurrently with fault
// isolation and all-settled join semantics: one instance's failure or
// timeout never cancels its siblings, and every instance resolves to an
// outcome before the run is considered quiescent.
package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"dealdesk/internal/logging"
	"dealdesk/internal/runner"
	"dealdesk/internal/types"
)

// Engine executes evaluation waves on a bounded worker pool. The first
// wave holds the Selector's top-level instances; as those settle, any
// granted sub-worker requests form the next wave. A wave barrier keeps
// lineage and depth reasoning simple: wave N+1 starts only after wave N
// has fully settled.
type Engine struct {
	runner      *runner.Runner
	spawner     *Spawner
	maxParallel int
}

// New creates an Engine with the given pool bound.
func New(run *runner.Runner, spawner *Spawner, maxParallel int) *Engine {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Engine{
		runner:      run,
		spawner:     spawner,
		maxParallel: maxParallel,
	}
}

// Evaluate runs all top-level instances and any transitively spawned
// sub-instances to quiescence, returning one outcome per instance in
// launch order. The caller's context carries the single run deadline;
// instances cut off by it resolve as timeout failures, never silently
// dropped. The engine itself never retries.
func (e *Engine) Evaluate(ctx context.Context, sub *types.Submission, instances []*types.EvaluatorInstance) []*types.InstanceOutcome {
	timer := logging.StartTimer(logging.CategoryEngine, "Evaluate")
	defer timer.StopWithInfo()

	var all []*types.InstanceOutcome

	wave := instances
	waveNum := 0
	for len(wave) > 0 {
		waveNum++
		logging.Engine("wave %d: %d instances", waveNum, len(wave))

		outcomes := e.runWave(ctx, sub, wave)
		all = append(all, outcomes...)

		wave = e.collectSpawns(outcomes)
	}

	logging.Engine("quiescent after %d waves: %d outcomes", waveNum, len(all))
	return all
}

// runWave runs one wave of instances concurrently and waits for every one
// of them to settle. Each goroutine writes only its own pre-allocated
// outcome slot; there is no shared mutable state between runners.
func (e *Engine) runWave(ctx context.Context, sub *types.Submission, wave []*types.EvaluatorInstance) []*types.InstanceOutcome {
	outcomes := make([]*types.InstanceOutcome, len(wave))
	sem := make(chan struct{}, e.maxParallel)

	var eg errgroup.Group
	for i, inst := range wave {
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			// Runner failures become typed outcomes; returning nil keeps
			// the join all-settled instead of all-or-nothing.
			outcomes[i] = e.runner.Run(ctx, inst, sub)
			return nil
		})
	}
	_ = eg.Wait()

	return outcomes
}

// collectSpawns gathers granted sub-worker requests from a settled wave.
func (e *Engine) collectSpawns(outcomes []*types.InstanceOutcome) []*types.EvaluatorInstance {
	if e.spawner == nil {
		return nil
	}

	var next []*types.EvaluatorInstance
	for _, outcome := range outcomes {
		if !outcome.Succeeded() || len(outcome.Judgment.RequestedSpecialists) == 0 {
			continue
		}
		children := e.spawner.Spawn(outcome.Instance, outcome.Judgment.RequestedSpecialists)
		next = append(next, children...)
	}
	return next
}
