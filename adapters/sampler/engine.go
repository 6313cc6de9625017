package sampler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/model"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
	"github.com/mbedward/invasive-grasses-models/internal"
	"github.com/mbedward/invasive-grasses-models/ports"
)

// Engine is a Metropolis-within-Gibbs MCMC sampler implementing the Sampler
// port. Chains are embarrassingly parallel: each owns its seeded RNG stream
// and state, results land in chain-indexed slots, and pooling order is
// therefore identical no matter how the scheduler interleaves the workers.
type Engine struct {
	rng         ports.RNG
	maxParallel int64
	logger      *internal.Logger
}

// NewEngine creates a sampler engine. maxParallel bounds how many chains run
// concurrently; zero or negative means one worker per chain.
func NewEngine(rng ports.RNG, maxParallel int) *Engine {
	return &Engine{
		rng:         rng,
		maxParallel: int64(maxParallel),
		logger:      internal.DefaultLogger,
	}
}

// Fit runs the chains and returns pooled samples with per-parameter
// convergence diagnostics. Non-convergence is flagged on the run, not
// returned as an error.
func (e *Engine) Fit(ctx context.Context, target *model.Target, opts posterior.Options) (*posterior.Run, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.RHatThreshold <= 0 {
		opts.RHatThreshold = posterior.DefaultRHatThreshold
	}

	names, indices, err := e.resolveMonitor(target, opts.Monitor)
	if err != nil {
		return nil, err
	}

	limit := e.maxParallel
	if limit <= 0 {
		limit = int64(opts.Chains)
	}
	sem := semaphore.NewWeighted(limit)

	chainDraws := make([][][]float64, opts.Chains)
	g, gctx := errgroup.WithContext(ctx)
	for chain := 0; chain < opts.Chains; chain++ {
		chain := chain
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			rng := e.rng.ChainStream(opts.Seed, chain)
			runner, err := newChainRunner(target, rng, chain)
			if err != nil {
				return err
			}
			draws, err := runner.run(opts)
			if err != nil {
				return err
			}
			chainDraws[chain] = draws
			e.logger.Debug("chain %d finished: %d retained draws", chain, len(draws))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sampling %s failed: %w", target.Spec.Name, err)
	}

	run := &posterior.Run{
		ID:          core.NewRunID(),
		Model:       target.Spec.Name,
		Options:     opts,
		Diagnostics: make(map[core.ParamName]posterior.Diagnostic, len(names)),
		Converged:   true,
	}

	// Diagnostics from per-chain series, then pool row-concatenated.
	for j, name := range names {
		series := make([][]float64, opts.Chains)
		for c, draws := range chainDraws {
			col := make([]float64, len(draws))
			for i, draw := range draws {
				col[i] = draw[indices[j]]
			}
			series[c] = col
		}
		d := posterior.Diagnostic{
			ESS:  effectiveSampleSize(series),
			RHat: gelmanRubin(series),
		}
		run.Diagnostics[name] = d
		if d.RHat > run.WorstRHat {
			run.WorstRHat = d.RHat
		}
		if d.RHat > opts.RHatThreshold {
			run.Converged = false
		}
	}

	pooled := make([][]float64, 0, opts.Chains*opts.Samples)
	for _, draws := range chainDraws {
		for _, draw := range draws {
			row := make([]float64, len(indices))
			for j, idx := range indices {
				row[j] = draw[idx]
			}
			pooled = append(pooled, row)
		}
	}
	run.Samples = posterior.NewSamples(names, pooled)

	if !run.Converged {
		e.logger.Warn("model %s: worst R-hat %.3f exceeds threshold %.3f; results should not be trusted without a longer run",
			run.Model, run.WorstRHat, opts.RHatThreshold)
	}
	return run, nil
}

// resolveMonitor expands monitored parameter names to flat element names and
// state-vector indices. Entries may be block names ("b1", expanded to every
// element) or single element names ("b1[3]"). An empty request falls back to
// the spec's Monitor flags.
func (e *Engine) resolveMonitor(target *model.Target, monitor []string) ([]core.ParamName, []int, error) {
	var names []core.ParamName
	if len(monitor) == 0 {
		names = target.MonitoredNames()
	} else {
		for _, m := range monitor {
			if b, ok := target.BlockOf(m); ok {
				for i := 0; i < b.Size; i++ {
					names = append(names, model.ElementName(b.Name, i, b.Size))
				}
				continue
			}
			name := core.ParamName(m)
			if _, err := target.IndexOf(name); err != nil {
				return nil, nil, err
			}
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("%w: nothing to monitor", core.ErrBadOptions)
	}

	indices := make([]int, len(names))
	for j, name := range names {
		idx, err := target.IndexOf(name)
		if err != nil {
			return nil, nil, err
		}
		indices[j] = idx
	}
	return names, indices, nil
}
