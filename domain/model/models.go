package model

// Parameter names shared by the model families.
const (
	ParamIntercept  = "b0"
	ParamSlope      = "b1"
	ParamDispersion = "phi"
	ParamIndicator  = "psi"
	ParamInclProb   = "p_ind"
	ParamScale0     = "sd0"
	ParamScaleB     = "sd_b"
)

// BetaBinomial builds the over-dispersed occupancy regression:
//
//	nsites[i] ~ Binomial(p[i], total)
//	p[i]      ~ Beta(pmean[i]*phi, (1-pmean[i])*phi)
//	logit(pmean[i]) = b0 + b1 * risk_centered[i]
//
// with b0, b1 ~ Normal(0, 10) and phi ~ Exponential(1/10). The Beta layer is
// integrated out analytically, so the sampler works on (b0, b1, phi) only.
// The risk covariate must be centered before binding.
func BetaBinomial() *Spec {
	return &Spec{
		Name:       "beta_binomial_risk",
		Likelihood: LikBetaBinomial,
		Link:       LinkLogit,
		Params: []Param{
			{Name: ParamIntercept, Size: 1, Prior: Prior{Kind: PriorNormal, Sigma: 10}, Role: RoleRandomWalk, Monitor: true},
			{Name: ParamSlope, Size: 1, Prior: Prior{Kind: PriorNormal, Sigma: 10}, Role: RoleRandomWalk, Monitor: true},
			{Name: ParamDispersion, Size: 1, Prior: Prior{Kind: PriorExponential, Rate: 0.1}, Role: RoleLogWalk, Init: 1, Monitor: true},
		},
	}
}

// NullBetaBinomial is the intercept-only variant of BetaBinomial: a single
// shared mean across species. It exists as a deviance baseline, not as a
// model to report coefficients from.
func NullBetaBinomial() *Spec {
	return &Spec{
		Name:       "beta_binomial_null",
		Likelihood: LikBetaBinomial,
		Link:       LinkLogit,
		Params: []Param{
			{Name: ParamIntercept, Size: 1, Prior: Prior{Kind: PriorNormal, Sigma: 10}, Role: RoleRandomWalk, Monitor: true},
			{Name: ParamDispersion, Size: 1, Prior: Prior{Kind: PriorExponential, Rate: 0.1}, Role: RoleLogWalk, Init: 1, Monitor: true},
		},
	}
}

// VariableSelection builds the spike-and-slab style component model over
// ncomp candidate risk components:
//
//	nsites[i] ~ Binomial(p_occ[i], total)
//	logit(p_occ[i]) = b0 + sum_j b1[j] * psi[j] * X[i,j]
//	psi[j]   ~ Bernoulli(p_ind[j])
//	p_ind[j] ~ Beta(0.5, 0.5)
//	b0 ~ Normal(0, sd0),  b1[j] ~ Normal(0, sd_b)
//	sd0, sd_b ~ Exponential(1)
//
// The Beta(0.5, 0.5) inclusion prior is U-shaped: it biases the sampler
// toward committing psi to 0 or 1 instead of lingering near 0.5, which helps
// mixing between included and excluded states. The component matrix is bound
// raw (uncentered), matching the source analysis.
func VariableSelection(ncomp int) *Spec {
	return &Spec{
		Name:       "variable_selection",
		Likelihood: LikBinomialLogit,
		Link:       LinkLogit,
		Params: []Param{
			{Name: ParamScale0, Size: 1, Prior: Prior{Kind: PriorExponential, Rate: 1}, Role: RoleLogWalk, Init: 1},
			{Name: ParamScaleB, Size: 1, Prior: Prior{Kind: PriorExponential, Rate: 1}, Role: RoleLogWalk, Init: 1},
			{Name: ParamIntercept, Size: 1, Prior: Prior{Kind: PriorNormal, SigmaParam: ParamScale0}, Role: RoleRandomWalk, Monitor: true},
			{Name: ParamSlope, Size: ncomp, Prior: Prior{Kind: PriorNormal, SigmaParam: ParamScaleB}, Role: RoleRandomWalk, Monitor: true},
			{Name: ParamInclProb, Size: ncomp, Prior: Prior{Kind: PriorBeta, A: 0.5, B: 0.5}, Role: RoleGibbsBeta, Init: 0.5},
			{Name: ParamIndicator, Size: ncomp, Prior: Prior{Kind: PriorBernoulli, ProbParam: ParamInclProb}, Role: RoleIndicator, Init: 1, Monitor: true},
		},
	}
}
