package sampler

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/model"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
)

const (
	initialStepScale = 0.5
	adaptInterval    = 50
	targetAcceptance = 0.44
	initJitterSigma  = 0.1
)

// chainRunner advances one Metropolis-within-Gibbs chain. No state is shared
// between chains; each owns its RNG stream, its state vector and its
// adaptation bookkeeping.
type chainRunner struct {
	target *model.Target
	rng    *rand.Rand
	chain  int

	state []float64
	logp  float64

	// per-element proposal scales, adapted during burn-in only so the
	// retained draws come from a fixed transition kernel
	scales   []float64
	accepted []int
	proposed []int
	adapting bool
}

func newChainRunner(target *model.Target, rng *rand.Rand, chain int) (*chainRunner, error) {
	c := &chainRunner{
		target:   target,
		rng:      rng,
		chain:    chain,
		state:    target.InitVector(),
		scales:   make([]float64, target.Dim()),
		accepted: make([]int, target.Dim()),
		proposed: make([]int, target.Dim()),
		adapting: true,
	}
	for i := range c.scales {
		c.scales[i] = initialStepScale
	}
	c.overdisperseInit()

	c.logp = target.LogPosterior(c.state)
	if math.IsInf(c.logp, -1) || math.IsNaN(c.logp) {
		return nil, core.NewChainDivergedError(chain, 0)
	}
	return c, nil
}

// overdisperseInit jitters the continuous starting values per chain so the
// between-chain variance in the R-hat diagnostic means something.
func (c *chainRunner) overdisperseInit() {
	for _, b := range c.target.Blocks() {
		for i := 0; i < b.Size; i++ {
			idx := b.Offset + i
			switch b.Role {
			case model.RoleRandomWalk:
				c.state[idx] += initJitterSigma * c.rng.NormFloat64()
			case model.RoleLogWalk:
				c.state[idx] *= math.Exp(initJitterSigma * c.rng.NormFloat64())
			}
		}
	}
}

// run produces the retained draws of one chain: burn-in discarded, every
// thin-th post-burn-in step kept until opts.Samples draws accumulate.
func (c *chainRunner) run(opts posterior.Options) ([][]float64, error) {
	total := opts.Burnin + opts.Samples*opts.Thin
	retained := make([][]float64, 0, opts.Samples)

	for step := 0; step < total; step++ {
		if step == opts.Burnin {
			c.adapting = false
		}
		if err := c.advance(step); err != nil {
			return nil, err
		}
		if c.adapting && (step+1)%adaptInterval == 0 {
			c.adaptScales()
		}
		if step >= opts.Burnin && (step-opts.Burnin+1)%opts.Thin == 0 {
			draw := make([]float64, len(c.state))
			copy(draw, c.state)
			retained = append(retained, draw)
		}
	}
	return retained, nil
}

// advance performs one full sweep over all parameter blocks.
func (c *chainRunner) advance(step int) error {
	for _, b := range c.target.Blocks() {
		switch b.Role {
		case model.RoleRandomWalk:
			c.updateRandomWalk(b)
		case model.RoleLogWalk:
			c.updateLogWalk(b)
		case model.RoleIndicator:
			c.updateIndicator(b)
		case model.RoleGibbsBeta:
			c.updateGibbsBeta(b)
		}
	}
	if math.IsNaN(c.logp) || math.IsInf(c.logp, 1) {
		return core.NewChainDivergedError(c.chain, step)
	}
	return nil
}

func (c *chainRunner) updateRandomWalk(b model.Block) {
	for i := 0; i < b.Size; i++ {
		idx := b.Offset + i
		old := c.state[idx]
		c.state[idx] = old + c.scales[idx]*c.rng.NormFloat64()
		c.proposed[idx]++

		logpNew := c.target.LogPosterior(c.state)
		if c.accept(logpNew - c.logp) {
			c.logp = logpNew
			c.accepted[idx]++
		} else {
			c.state[idx] = old
		}
	}
}

// updateLogWalk proposes on the log scale for positive parameters; the
// log(new/old) term is the Jacobian of the transform.
func (c *chainRunner) updateLogWalk(b model.Block) {
	for i := 0; i < b.Size; i++ {
		idx := b.Offset + i
		old := c.state[idx]
		next := old * math.Exp(c.scales[idx]*c.rng.NormFloat64())
		c.state[idx] = next
		c.proposed[idx]++

		logpNew := c.target.LogPosterior(c.state)
		if c.accept(logpNew - c.logp + math.Log(next) - math.Log(old)) {
			c.logp = logpNew
			c.accepted[idx]++
		} else {
			c.state[idx] = old
		}
	}
}

func (c *chainRunner) updateIndicator(b model.Block) {
	for i := 0; i < b.Size; i++ {
		idx := b.Offset + i
		old := c.state[idx]
		c.state[idx] = 1 - old

		logpNew := c.target.LogPosterior(c.state)
		if c.accept(logpNew - c.logp) {
			c.logp = logpNew
		} else {
			c.state[idx] = old
		}
	}
}

// updateGibbsBeta draws inclusion probabilities from their conjugate Beta
// full conditional given the indicators they govern. Inverse-CDF sampling
// keeps the chain on the plain math/rand stream.
func (c *chainRunner) updateGibbsBeta(b model.Block) {
	ind, ok := c.target.BlockOf(model.ParamIndicator)
	if !ok {
		return
	}
	for i := 0; i < b.Size; i++ {
		idx := b.Offset + i
		psi := c.state[ind.Offset+i]
		dist := distuv.Beta{Alpha: b.Prior.A + psi, Beta: b.Prior.B + 1 - psi}
		c.state[idx] = dist.Quantile(c.rng.Float64())
	}
	c.logp = c.target.LogPosterior(c.state)
}

func (c *chainRunner) accept(logRatio float64) bool {
	if math.IsNaN(logRatio) {
		return false
	}
	if logRatio >= 0 {
		return true
	}
	return math.Log(c.rng.Float64()) < logRatio
}

// adaptScales nudges each proposal scale toward the per-coordinate
// acceptance target. Burn-in only.
func (c *chainRunner) adaptScales() {
	for i := range c.scales {
		if c.proposed[i] == 0 {
			continue
		}
		rate := float64(c.accepted[i]) / float64(c.proposed[i])
		if rate > targetAcceptance {
			c.scales[i] *= 1.1
		} else {
			c.scales[i] /= 1.1
		}
		c.accepted[i] = 0
		c.proposed[i] = 0
	}
}
