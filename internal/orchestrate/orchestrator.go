// Package orchestrate fans the search out to all requested source collectors
// under one shared time budget, tolerates per-source failure, and drives the
// dedup, scoring, and assembly stages.
package orchestrate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scoutline/sourcing-cli/internal/assemble"
	"github.com/scoutline/sourcing-cli/internal/config"
	"github.com/scoutline/sourcing-cli/internal/dedup"
	"github.com/scoutline/sourcing-cli/internal/model"
	"github.com/scoutline/sourcing-cli/internal/scoring"
	"github.com/scoutline/sourcing-cli/internal/source"
)

// Orchestrator runs one sourcing search end to end.
type Orchestrator struct {
	registry *source.Registry
	deduper  *dedup.Engine
	scorer   *scoring.Engine
	cfg      config.SearchConfig
	progress chan Phase
	now      func() time.Time
}

// New creates an orchestrator over the given collector registry.
func New(registry *source.Registry, deduper *dedup.Engine, scorer *scoring.Engine, cfg config.SearchConfig) *Orchestrator {
	if cfg.MaxSources <= 0 {
		cfg.MaxSources = model.MaxSources
	}
	return &Orchestrator{
		registry: registry,
		deduper:  deduper,
		scorer:   scorer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithProgress attaches a progress channel receiving coarse phase
// transitions. Sends never block; a full channel drops updates.
func (o *Orchestrator) WithProgress(ch chan Phase) *Orchestrator {
	o.progress = ch
	return o
}

// WithNow sets a fixed clock for testing.
func (o *Orchestrator) WithNow(fn func() time.Time) *Orchestrator {
	o.now = fn
	return o
}

// sourceResult carries one finished collector's outcome back to the run loop.
type sourceResult struct {
	name    string
	outcome model.SourceOutcome
	elapsed time.Duration
}

// Run executes one search. Only criteria validation can fail; every source
// failure, including an all-sources wipeout, still yields a complete result
// with one outcome per requested source.
func (o *Orchestrator) Run(ctx context.Context, criteria model.SearchCriteria) (*model.SearchResult, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("component", "orchestrate"))
	start := o.now()
	budget := criteria.TimeBudget()

	requested := criteria.Sources
	outcomes := make(map[string]model.SourceOutcome, len(requested))
	perSourceTime := make(map[string]int64, len(requested))

	// Every requested source gets an outcome, including the ones dropped by
	// the source cap: capped-out entries fail with an explicit error instead
	// of vanishing from the result map.
	if len(requested) > o.cfg.MaxSources {
		log.Warn("source list capped",
			zap.Int("requested", len(requested)),
			zap.Int("max", o.cfg.MaxSources))
		for _, name := range requested[o.cfg.MaxSources:] {
			outcomes[name] = model.SourceOutcome{Source: name, Error: model.ErrSourceCapExceeded}
			perSourceTime[name] = 0
		}
		requested = requested[:o.cfg.MaxSources]
	}

	collectors, unknown := o.registry.Select(requested)
	for _, name := range unknown {
		outcomes[name] = model.SourceOutcome{Source: name, Error: "unknown source"}
		perSourceTime[name] = 0
	}

	report(o.progress, PhaseCollecting)

	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	// One goroutine per source. The channel is buffered so a collector that
	// settles after the deadline can still exit cleanly; its late result is
	// simply never read.
	results := make(chan sourceResult, len(collectors))
	for _, c := range collectors {
		go func(c source.Collector) {
			t0 := time.Now()
			outcome := c.Collect(runCtx, criteria)
			outcome.Source = c.Name()
			outcome.ElapsedMS = time.Since(t0).Milliseconds()
			results <- sourceResult{name: c.Name(), outcome: outcome, elapsed: time.Since(t0)}
		}(c)
	}

	// Bounded wait: tasks still in flight when the deadline fires are
	// abandoned with a timeout outcome. Completed work is never discarded.
	pending := len(collectors)
	expired := false
	for pending > 0 && !expired {
		select {
		case r := <-results:
			pending--
			outcomes[r.name] = r.outcome
			perSourceTime[r.name] = r.elapsed.Milliseconds()
			log.Info("source settled",
				zap.String("source", r.name),
				zap.Int("records", len(r.outcome.Records)),
				zap.String("error", r.outcome.Error),
				zap.Duration("elapsed", r.elapsed))
		case <-runCtx.Done():
			expired = true
		}
	}

	if expired && pending > 0 {
		// Small grace window for tasks that noticed the deadline themselves
		// and are about to deliver best-effort partials.
		grace := time.NewTimer(500 * time.Millisecond)
		defer grace.Stop()
	drain:
		for pending > 0 {
			select {
			case r := <-results:
				pending--
				outcomes[r.name] = r.outcome
				perSourceTime[r.name] = r.elapsed.Milliseconds()
			case <-grace.C:
				break drain
			}
		}
	}

	for _, c := range collectors {
		if _, ok := outcomes[c.Name()]; !ok {
			outcomes[c.Name()] = model.SourceOutcome{
				Source:    c.Name(),
				Error:     model.ErrTimeout,
				ElapsedMS: budget.Milliseconds(),
			}
			perSourceTime[c.Name()] = budget.Milliseconds()
			log.Warn("source abandoned at deadline", zap.String("source", c.Name()))
		}
	}

	// Combine after all tasks settled; collectors never share state.
	var raw []model.RawCandidateRecord
	perSource := o.cfg.MaxRecordsPerSource
	if perSource <= 0 {
		perSource = model.MaxRecordsPerSource
	}
	for _, name := range requested {
		out := outcomes[name]
		out.Records = source.Cap(out.Records, perSource)
		outcomes[name] = out
		raw = append(raw, out.Records...)
	}

	report(o.progress, PhaseDeduplicating)
	profiles, dedupMetrics := o.deduper.Deduplicate(raw)

	report(o.progress, PhaseScoring)
	for i := range profiles {
		breakdown := o.scorer.Score(profiles[i], criteria)
		profiles[i].Score = &breakdown
	}

	report(o.progress, PhaseAssembling)
	result := assemble.Build(assemble.Input{
		RunID:        uuid.NewString(),
		Criteria:     criteria,
		Profiles:     profiles,
		Outcomes:     outcomes,
		DedupMetrics: dedupMetrics,
		TotalTime:    o.now().Sub(start),
		PerSource:    perSourceTime,
	})

	if result.Degraded {
		log.Warn("degraded run: all sources failed",
			zap.Error(model.ErrAggregation),
			zap.Int("sources", len(requested)))
	}

	report(o.progress, PhaseDone)
	return result, nil
}
