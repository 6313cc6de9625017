package analysis

import (
	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/model"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
)

// Deviance is the log-likelihood based decomposition of model fit against
// the saturated (perfect) and null (intercept-only) references.
//
// LLNull and LLFitted are computed by plugging posterior-mean parameter
// values into the beta-binomial log pmf rather than integrating the log
// likelihood over the full posterior. This plug-in approximation is carried
// over from the source analysis deliberately.
type Deviance struct {
	LLSaturated      float64
	LLNull           float64
	LLFitted         float64
	ResidualDeviance float64
	NullDeviance     float64
	PercentExplained float64
}

// SaturatedLogLik is the perfect-fit reference: each species predicted at
// its own observed proportion. Parameter free; exactly 0 for a species
// observed at no sites or at every site.
func SaturatedLogLik(nsites []int, total int) float64 {
	ll := 0.0
	for _, k := range nsites {
		ll += model.BinomialLogPMF(k, total, float64(k)/float64(total))
	}
	return ll
}

// betaBinomialPlugIn sums the beta-binomial log pmf over species at the
// posterior-mean intercept, slope and dispersion. x is the centered
// covariate, nil for the null model.
func betaBinomialPlugIn(s *posterior.Samples, nsites []int, total int, x []float64) (float64, error) {
	b0, err := s.Mean(core.ParamName(model.ParamIntercept))
	if err != nil {
		return 0, err
	}
	phi, err := s.Mean(core.ParamName(model.ParamDispersion))
	if err != nil {
		return 0, err
	}
	b1 := 0.0
	if x != nil {
		b1, err = s.Mean(core.ParamName(model.ParamSlope))
		if err != nil {
			return 0, err
		}
	}

	ll := 0.0
	for i, k := range nsites {
		eta := b0
		if x != nil {
			eta += b1 * x[i]
		}
		pmean := model.InvLogit(eta)
		ll += model.BetaBinomialLogPMF(k, total, pmean*phi, (1-pmean)*phi)
	}
	return ll, nil
}

// DevianceExplained decomposes the deviance of a fitted risk model against
// its null baseline. fitted must carry b0, b1 and phi draws; null must carry
// b0 and phi. x is the centered risk covariate in analysis-table row order.
// A zero null deviance makes percent-explained undefined and is reported as
// ErrDegenerateDeviance, never as a silent NaN.
func DevianceExplained(fitted, null *posterior.Samples, nsites []int, total int, x []float64) (*Deviance, error) {
	if len(nsites) == 0 {
		return nil, core.ErrEmptyTable
	}
	if len(x) != len(nsites) {
		return nil, core.ErrDimensionMismatch
	}

	d := &Deviance{LLSaturated: SaturatedLogLik(nsites, total)}

	var err error
	d.LLFitted, err = betaBinomialPlugIn(fitted, nsites, total, x)
	if err != nil {
		return nil, err
	}
	d.LLNull, err = betaBinomialPlugIn(null, nsites, total, nil)
	if err != nil {
		return nil, err
	}

	d.ResidualDeviance = -2 * (d.LLFitted - d.LLSaturated)
	d.NullDeviance = -2 * (d.LLNull - d.LLSaturated)

	if d.NullDeviance == 0 {
		return d, core.ErrDegenerateDeviance
	}
	d.PercentExplained = 100 * (1 - d.ResidualDeviance/d.NullDeviance)
	return d, nil
}
