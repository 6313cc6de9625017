package model

// This package declares Bayesian models as data: named parameters with named
// prior distributions over a likelihood kind and link. The sampling backend
// behind ports.Sampler interprets a bound Spec; swapping backends never
// changes the Spec itself.

// PriorKind identifies a prior distribution family.
type PriorKind string

const (
	PriorNormal      PriorKind = "normal"
	PriorExponential PriorKind = "exponential"
	PriorBeta        PriorKind = "beta"
	PriorBernoulli   PriorKind = "bernoulli"
)

// Prior describes one prior distribution. Fields are interpreted per Kind:
// Normal uses Mu/Sigma, Exponential uses Rate, Beta uses A/B, Bernoulli uses
// ProbParam. SigmaParam, when set on a Normal, names a scalar parameter whose
// current value supplies Sigma (hierarchical scale). ProbParam on a Bernoulli
// names the vector parameter holding the per-element inclusion probability.
type Prior struct {
	Kind       PriorKind
	Mu         float64
	Sigma      float64
	Rate       float64
	A          float64
	B          float64
	SigmaParam string
	ProbParam  string
}

// Role hints how the sampler should update a parameter block.
type Role string

const (
	// RoleRandomWalk: Gaussian random-walk Metropolis on the raw scale.
	RoleRandomWalk Role = "random_walk"

	// RoleLogWalk: Gaussian random-walk on log scale for positive parameters
	// (dispersion and scale hyperparameters).
	RoleLogWalk Role = "log_walk"

	// RoleIndicator: 0/1 flip proposal for inclusion indicators.
	RoleIndicator Role = "indicator"

	// RoleGibbsBeta: exact conjugate Beta draw given the indicator it governs.
	RoleGibbsBeta Role = "gibbs_beta"
)

// Param is one named model parameter. Size > 1 declares a vector parameter
// whose elements are monitored as name[1]..name[Size].
type Param struct {
	Name    string
	Size    int
	Prior   Prior
	Role    Role
	Init    float64
	Monitor bool
}

// LikelihoodKind identifies the observation model.
type LikelihoodKind string

const (
	// LikBetaBinomial: nsites[i] ~ BetaBinomial(total, pmean[i]*phi,
	// (1-pmean[i])*phi) with the per-site Beta probability integrated out.
	LikBetaBinomial LikelihoodKind = "beta_binomial"

	// LikBinomialLogit: nsites[i] ~ Binomial(total, invlogit(eta[i])) with
	// eta built from indicator-gated component coefficients.
	LikBinomialLogit LikelihoodKind = "binomial_logit"
)

// Link identifies the link function between linear predictor and mean.
type Link string

const LinkLogit Link = "logit"

// Spec is a declarative model description.
type Spec struct {
	Name       string
	Likelihood LikelihoodKind
	Link       Link
	Params     []Param
}

// Param returns the named parameter declaration, or false.
func (s *Spec) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Data binds observed values to a Spec. Total is the shared trial count,
// NSites the per-species occupancy counts. X carries the centered scalar
// covariate for the beta-binomial models; XMatrix the raw (uncentered)
// component matrix for the variable-selection model.
type Data struct {
	Total   int
	NSites  []int
	X       []float64
	XMatrix [][]float64
}
