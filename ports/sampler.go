package ports

import (
	"context"

	"github.com/mbedward/invasive-grasses-models/domain/model"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
)

// Sampler is the MCMC engine contract. Implementations run opts.Chains
// independent chains against the bound target, discard burn-in, retain every
// thin-th draw until opts.Samples draws per chain, and pool the chains
// row-concatenated. A returned error means the run failed outright;
// non-convergence is instead reported on the Run's diagnostics.
type Sampler interface {
	Fit(ctx context.Context, target *model.Target, opts posterior.Options) (*posterior.Run, error)
}
