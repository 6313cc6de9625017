package posterior

import (
	"github.com/mbedward/invasive-grasses-models/domain/core"
)

// Diagnostic holds convergence diagnostics for one monitored parameter.
// ESS is the effective sample size adjusted for within-chain autocorrelation;
// RHat is the potential-scale-reduction statistic, ~1.0 at convergence.
type Diagnostic struct {
	ESS  float64
	RHat float64
}

// Options are the fixed-length sampling parameters of one run.
type Options struct {
	Chains        int
	Burnin        int
	Samples       int // retained draws per chain
	Thin          int
	Seed          int64
	RHatThreshold float64 // convergence target, default 1.05

	// Monitor names the parameters to retain in the pooled matrix, either
	// whole blocks ("b1") or single elements ("b1[3]"). Empty means every
	// parameter the model spec marks for monitoring.
	Monitor []string
}

// DefaultRHatThreshold is the design target for trusting a run.
const DefaultRHatThreshold = 1.05

// Validate checks the option invariants of the fit contract.
func (o Options) Validate() error {
	if o.Chains < 1 || o.Burnin < 0 || o.Samples < 1 || o.Thin < 1 {
		return core.ErrBadOptions
	}
	return nil
}

// Run is the structured result of one sampler invocation: pooled samples
// plus per-parameter diagnostics. Non-convergence is reported on the run,
// never swallowed and never auto-corrected.
type Run struct {
	ID          core.RunID
	Model       string
	Options     Options
	Samples     *Samples
	Diagnostics map[core.ParamName]Diagnostic

	// Converged is true when every monitored parameter's RHat is at or
	// below the configured threshold. Callers must check it before trusting
	// any downstream statistic.
	Converged bool

	// WorstRHat is the largest RHat across monitored parameters, reported
	// so callers can decide whether to re-run with longer chains.
	WorstRHat float64
}
