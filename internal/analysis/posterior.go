// Package analysis summarizes posterior sample matrices: inclusion rates,
// marginal effects, prediction curves, deviance decomposition and pairwise
// contrasts. Everything here is a pure read over an immutable sample matrix,
// addressed by parameter name.
package analysis

import (
	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/model"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
)

// InclusionRate is the fraction of retained draws in which a candidate
// component's indicator was switched on. It is an importance score, not a
// p-value.
type InclusionRate struct {
	Component string
	Rate      float64
}

// InclusionRates computes per-component inclusion rates from the psi draws.
// components[j] names the column governed by psi[j+1].
func InclusionRates(s *posterior.Samples, components []string) ([]InclusionRate, error) {
	out := make([]InclusionRate, len(components))
	for j, comp := range components {
		name := model.ElementName(model.ParamIndicator, j, len(components))
		col, err := s.Column(name)
		if err != nil {
			return nil, err
		}
		ones := 0
		for _, v := range col {
			if v == 1 {
				ones++
			}
		}
		out[j] = InclusionRate{Component: comp, Rate: float64(ones) / float64(len(col))}
	}
	return out, nil
}

// MarginalEffect is the distribution of a component coefficient conditional
// on the component being included: the b1[j] draws restricted to iterations
// where psi[j] was 1.
type MarginalEffect struct {
	Component string
	Draws     []float64
	Mean      float64
	HasDraws  bool
}

// MarginalEffects extracts the conditional coefficient distributions for all
// candidate components. A component never included in any retained draw
// yields HasDraws false rather than an error.
func MarginalEffects(s *posterior.Samples, components []string) ([]MarginalEffect, error) {
	out := make([]MarginalEffect, len(components))
	for j, comp := range components {
		psiName := model.ElementName(model.ParamIndicator, j, len(components))
		bName := model.ElementName(model.ParamSlope, j, len(components))
		psi, err := s.Column(psiName)
		if err != nil {
			return nil, err
		}
		b, err := s.Column(bName)
		if err != nil {
			return nil, err
		}

		eff := MarginalEffect{Component: comp}
		sum := 0.0
		for i := range psi {
			if psi[i] == 1 {
				eff.Draws = append(eff.Draws, b[i])
				sum += b[i]
			}
		}
		if len(eff.Draws) > 0 {
			eff.HasDraws = true
			eff.Mean = sum / float64(len(eff.Draws))
		}
		out[j] = eff
	}
	return out, nil
}

// ProbPositive returns the direct posterior probability that a parameter is
// positive: the fraction of retained draws above zero. No hypothesis-test
// p-value is computed or implied.
func ProbPositive(s *posterior.Samples, name core.ParamName) (float64, error) {
	col, err := s.Column(name)
	if err != nil {
		return 0, err
	}
	pos := 0
	for _, v := range col {
		if v > 0 {
			pos++
		}
	}
	return float64(pos) / float64(len(col)), nil
}
