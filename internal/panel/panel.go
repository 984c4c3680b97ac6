// Package panel is the top-level facade: it wires the registry, engine,
// consensus, and offer stages into a single Evaluate entry point.
package panel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dealdesk/internal/config"
	"dealdesk/internal/consensus"
	"dealdesk/internal/engine"
	"dealdesk/internal/judge"
	"dealdesk/internal/logging"
	"dealdesk/internal/offer"
	"dealdesk/internal/registry"
	"dealdesk/internal/runner"
	"dealdesk/internal/types"
)

// Panel evaluates pitch submissions end to end.
type Panel struct {
	cfg   *config.Config
	judge types.Judge

	mu  sync.RWMutex
	reg *registry.Registry

	cache    types.JudgmentCache
	recorder types.LifecycleRecorder
	store    *judge.Store
	watcher  *registry.OverlayWatcher

	synthesizer *consensus.Synthesizer
	generator   *offer.Generator
}

// New builds a Panel from validated config and a judgment backend. The
// overlay watcher, when enabled, hot-swaps the registry on file changes
// without interrupting in-flight evaluations.
func New(ctx context.Context, cfg *config.Config, j types.Judge) (*Panel, error) {
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	p := &Panel{
		cfg:      cfg,
		judge:    j,
		reg:      reg,
		recorder: runner.LogRecorder{},
		synthesizer: consensus.New(consensus.Thresholds{
			AcceptRatio: cfg.Consensus.AcceptRatio,
			RejectRatio: cfg.Consensus.RejectRatio,
			TopListSize: cfg.Consensus.TopListSize,
		}),
		generator: offer.New(offer.Policy{
			MinConfidence:     cfg.Offer.MinConfidence,
			MaxOffers:         cfg.Offer.MaxOffers,
			MultiplierCeiling: cfg.Offer.MultiplierCeiling,
			EquityFloor:       cfg.Offer.EquityFloor,
			EquityCeiling:     cfg.Offer.EquityCeiling,
		}),
	}

	if err := p.buildCache(); err != nil {
		return nil, err
	}

	if cfg.Registry.WatchOverlay && cfg.Registry.OverlayPath != "" {
		watcher, err := registry.NewOverlayWatcher(cfg.Registry.OverlayPath, p.swapRegistry)
		if err != nil {
			return nil, fmt.Errorf("failed to create overlay watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start overlay watcher: %w", err)
		}
		p.watcher = watcher
	}

	logging.Engine("panel ready: %d evaluator definitions", reg.Len())
	return p, nil
}

func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.Registry.OverlayPath != "" {
		reg, err := registry.NewWithOverlay(cfg.Registry.OverlayPath)
		if err != nil {
			return nil, fmt.Errorf("failed to build evaluator registry: %w", err)
		}
		return reg, nil
	}
	reg, err := registry.NewBuiltin()
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluator registry: %w", err)
	}
	return reg, nil
}

func (p *Panel) buildCache() error {
	memory := judge.NewMemoryCache(judge.DefaultCacheSize)
	if p.cfg.LLM.CachePath == "" {
		p.cache = memory
		return nil
	}

	store, err := judge.NewStore(p.cfg.LLM.CachePath)
	if err != nil {
		return fmt.Errorf("failed to open judgment cache: %w", err)
	}
	p.store = store
	p.cache = judge.NewLayeredCache(memory, store)
	return nil
}

func (p *Panel) swapRegistry(reg *registry.Registry) {
	p.mu.Lock()
	p.reg = reg
	p.mu.Unlock()
}

// Registry returns the current registry snapshot.
func (p *Panel) Registry() *registry.Registry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reg
}

// Evaluate runs the full pipeline for one submission: selection,
// concurrent evaluation with fault isolation, consensus, and offer
// generation. An evaluation where every instance failed is a run failure,
// not an empty success.
func (p *Panel) Evaluate(ctx context.Context, sub *types.Submission) (*types.EvaluationResult, error) {
	if sub == nil {
		return nil, fmt.Errorf("submission is nil")
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("submission has no id")
	}
	if sub.Name == "" || sub.Description == "" {
		return nil, fmt.Errorf("submission %s missing name or description", sub.ID)
	}

	reg := p.Registry()
	instances := registry.Select(reg, sub)
	if len(instances) == 0 {
		return nil, fmt.Errorf("no evaluators selected for submission %s", sub.ID)
	}
	logging.Engine("submission %s: %d evaluators selected", sub.ID, len(instances))

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.EvaluationTimeout())
	defer cancel()

	run := runner.New(reg, p.judge,
		runner.WithCache(p.cache),
		runner.WithRecorder(p.recorder),
		runner.WithDegradeOnInvalid(p.cfg.Runner.DegradeOnInvalid),
		runner.WithJudgeTimeout(p.cfg.JudgeTimeout()),
	)
	spawner := engine.NewSpawner(reg, p.cfg.Engine.MaxSpawnDepth)
	eng := engine.New(run, spawner, p.cfg.Engine.MaxParallel)

	startedAt := time.Now()
	outcomes := eng.Evaluate(runCtx, sub, instances)

	cons, err := p.synthesizer.Synthesize(outcomes)
	if err != nil {
		return nil, fmt.Errorf("evaluation of %s failed: %w", sub.ID, err)
	}

	offers := p.generator.Generate(cons, outcomes, sub)
	completedAt := time.Now()

	result := &types.EvaluationResult{
		SubmissionID:  sub.ID,
		Instances:     flattenOutcomes(outcomes),
		Consensus:     cons,
		Offers:        offers,
		EstimatedCost: outcomeCost(reg, outcomes),
		StartedAt:     startedAt,
		CompletedAt:   completedAt,
		Duration:      completedAt.Sub(startedAt),
	}

	logging.Engine("submission %s: verdict=%s confidence=%.1f offers=%d (succeeded=%d failed=%d)",
		sub.ID, cons.Verdict, cons.Confidence, len(offers), cons.SucceededCount, cons.FailedCount)
	return result, nil
}

// Close releases the watcher and the persistent cache.
func (p *Panel) Close() error {
	if p.watcher != nil {
		p.watcher.Stop()
	}
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// flattenOutcomes converts outcomes to wire-facing instance records,
// preserving launch order.
func flattenOutcomes(outcomes []*types.InstanceOutcome) []types.InstanceRecord {
	records := make([]types.InstanceRecord, 0, len(outcomes))
	for _, o := range outcomes {
		records = append(records, types.InstanceRecord{
			InstanceID:    o.Instance.ID,
			ParentID:      o.Instance.ParentID,
			DefinitionID:  o.Instance.DefinitionID,
			Judgment:      o.Judgment,
			FailureKind:   o.FailureKind,
			FailureDetail: o.FailureDetail,
			DurationMS:    o.Duration.Milliseconds(),
		})
	}
	return records
}

// outcomeCost sums cost weights across every instance that actually ran,
// spawned sub-workers included.
func outcomeCost(reg *registry.Registry, outcomes []*types.InstanceOutcome) float64 {
	instances := make([]*types.EvaluatorInstance, 0, len(outcomes))
	for _, o := range outcomes {
		instances = append(instances, o.Instance)
	}
	return registry.EstimateCost(reg, instances)
}
