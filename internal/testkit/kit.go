// Package testkit provides in-memory survey fixtures: a hand-written species
// table resembling the roadside survey, and synthetic generators with known
// parameters for sampler validation.
package testkit

import (
	"context"
	"math/rand"

	"github.com/mbedward/invasive-grasses-models/domain/model"
	"github.com/mbedward/invasive-grasses-models/domain/survey"
	"github.com/mbedward/invasive-grasses-models/ports"
)

// FixtureRepository implements ports.SurveyRepository from static in-memory
// tables. Used by tests and as the data source when no database is
// configured.
type FixtureRepository struct {
	occ  []survey.Occurrence
	risk []survey.RiskAssessment
}

var _ ports.SurveyRepository = (*FixtureRepository)(nil)

// NewFixtureRepository builds the default fixture: a plausible perennial
// grass survey with two Sporobolus species sharing one genus-level risk
// assessment and one surveyed species lacking any assessment.
func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{
		occ: []survey.Occurrence{
			{Species: "Eragrostis curvula", CommonName: "African lovegrass", NSites: 102},
			{Species: "Hyparrhenia hirta", CommonName: "Coolatai grass", NSites: 87},
			{Species: "Sporobolus fertilis", CommonName: "Giant Parramatta grass", NSites: 64},
			{Species: "Sporobolus africanus", CommonName: "Parramatta grass", NSites: 49},
			{Species: "Nassella neesiana", CommonName: "Chilean needle grass", NSites: 31},
			{Species: "Nassella trichotoma", CommonName: "Serrated tussock", NSites: 18},
			{Species: "Chloris gayana", CommonName: "Rhodes grass", NSites: 53},
			{Species: "Paspalum dilatatum", CommonName: "Paspalum", NSites: 95},
			{Species: "Phalaris aquatica", CommonName: "Phalaris", NSites: 41},
			{Species: "Cenchrus ciliaris", CommonName: "Buffel grass", NSites: 7},
			{Species: "Andropogon virginicus", CommonName: "Whisky grass", NSites: 26},
			{Species: "Bothriochloa pertusa", CommonName: "Indian couch", NSites: 3},
			// No risk assessment exists for this one; the join drops it.
			{Species: "Axonopus fissifolius", CommonName: "Narrow-leafed carpet grass", NSites: 22},
		},
		risk: []survey.RiskAssessment{
			riskRow("Eragrostis curvula", 68, 4, 5, 2, 5, 4, 5, 3, 4, 4, 3),
			riskRow("Hyparrhenia hirta", 62, 4, 4, 1, 5, 4, 4, 3, 4, 3, 3),
			riskRow("Sporobolus", 57, 3, 4, 1, 4, 3, 4, 3, 2, 4, 4),
			riskRow("Nassella neesiana", 54, 3, 5, 1, 4, 3, 4, 2, 2, 3, 3),
			riskRow("Nassella trichotoma", 51, 3, 5, 0, 4, 3, 3, 2, 2, 3, 2),
			riskRow("Chloris gayana", 44, 2, 3, 0, 3, 3, 4, 3, 2, 2, 3),
			riskRow("Paspalum dilatatum", 49, 3, 3, 1, 4, 3, 3, 3, 1, 2, 3),
			riskRow("Phalaris aquatica", 42, 2, 3, 1, 3, 3, 3, 2, 2, 2, 2),
			riskRow("Cenchrus ciliaris", 38, 2, 3, 0, 3, 3, 4, 2, 3, 2, 1),
			riskRow("Andropogon virginicus", 35, 2, 3, 0, 2, 2, 3, 2, 3, 1, 2),
			riskRow("Bothriochloa pertusa", 27, 1, 2, 0, 2, 2, 2, 2, 1, 2, 1),
		},
	}
}

func riskRow(species string, summed float64, scores ...float64) survey.RiskAssessment {
	comp := make(map[string]float64, len(survey.ModelComponents))
	for i, name := range survey.ModelComponents {
		comp[name] = scores[i]
	}
	return survey.RiskAssessment{Species: species, Components: comp, SummedRisk: summed}
}

// LoadOccurrences implements ports.SurveyRepository.
func (f *FixtureRepository) LoadOccurrences(ctx context.Context) ([]survey.Occurrence, error) {
	out := make([]survey.Occurrence, len(f.occ))
	copy(out, f.occ)
	return out, nil
}

// LoadRiskAssessments implements ports.SurveyRepository.
func (f *FixtureRepository) LoadRiskAssessments(ctx context.Context) ([]survey.RiskAssessment, error) {
	out := make([]survey.RiskAssessment, len(f.risk))
	copy(out, f.risk)
	return out, nil
}

// SyntheticBinding generates binomial counts from known logistic parameters,
// for sampler recovery tests. Deterministic for a given seed.
func SyntheticBinding(n, total int, b0, b1 float64, seed int64) model.Data {
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		x[i] = rng.NormFloat64()
		p := model.InvLogit(b0 + b1*x[i])
		k := 0
		for t := 0; t < total; t++ {
			if rng.Float64() < p {
				k++
			}
		}
		counts[i] = k
	}
	return model.Data{Total: total, NSites: counts, X: x}
}
