package analysis

import (
	"fmt"

	mstats "github.com/montanaflynn/stats"

	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/model"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
)

// CurvePoint is the predicted occupancy probability at one risk value with a
// pointwise (not simultaneous) 95% credible band.
type CurvePoint struct {
	Risk  float64
	Mean  float64
	Lower float64 // 2.5th percentile
	Upper float64 // 97.5th percentile
}

// PredictionCurve evaluates the fitted risk-occupancy relationship over a
// grid of raw risk values. center is the mean retained from Center() at fit
// time; grid values are mapped onto the centered scale before the linear
// predictor is formed, draw by draw, then back-transformed via inverse logit.
func PredictionCurve(s *posterior.Samples, grid []float64, center float64) ([]CurvePoint, error) {
	b0, err := s.Column(core.ParamName(model.ParamIntercept))
	if err != nil {
		return nil, err
	}
	b1, err := s.Column(core.ParamName(model.ParamSlope))
	if err != nil {
		return nil, err
	}

	curve := make([]CurvePoint, len(grid))
	probs := make([]float64, len(b0))
	for g, x := range grid {
		xc := x - center
		sum := 0.0
		for i := range b0 {
			p := model.InvLogit(b0[i] + b1[i]*xc)
			probs[i] = p
			sum += p
		}
		lower, err := mstats.Percentile(probs, 2.5)
		if err != nil {
			return nil, err
		}
		upper, err := mstats.Percentile(probs, 97.5)
		if err != nil {
			return nil, err
		}
		curve[g] = CurvePoint{
			Risk:  x,
			Mean:  sum / float64(len(b0)),
			Lower: lower,
			Upper: upper,
		}
	}
	return curve, nil
}

// ContrastCase names a reference risk exemplar ("low", "mid", "high").
type ContrastCase struct {
	Name string
	Risk float64
}

// ContrastPair is an ordered difference between two named cases, reported as
// First minus Second.
type ContrastPair struct {
	First  string
	Second string
}

// ContrastSummary describes the distribution of one pairwise difference in
// predicted probability, expressed in percentage points.
type ContrastSummary struct {
	Label    string // "high-low" style
	Median   float64
	Lower50  float64 // 25th percentile
	Upper50  float64 // 75th percentile
	Lower95  float64 // 2.5th percentile
	Upper95  float64 // 97.5th percentile
}

// Contrasts computes per-draw predicted probabilities at each named case and
// summarizes the requested ordered pairwise differences. Differences are
// antisymmetric draw for draw: reversing a pair negates its distribution.
func Contrasts(s *posterior.Samples, center float64, cases []ContrastCase, pairs []ContrastPair) ([]ContrastSummary, error) {
	b0, err := s.Column(core.ParamName(model.ParamIntercept))
	if err != nil {
		return nil, err
	}
	b1, err := s.Column(core.ParamName(model.ParamSlope))
	if err != nil {
		return nil, err
	}

	probs := make(map[string][]float64, len(cases))
	for _, c := range cases {
		p := make([]float64, len(b0))
		xc := c.Risk - center
		for i := range b0 {
			p[i] = model.InvLogit(b0[i] + b1[i]*xc)
		}
		probs[c.Name] = p
	}

	out := make([]ContrastSummary, len(pairs))
	for k, pair := range pairs {
		a, ok := probs[pair.First]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrUnknownContrastCase, pair.First)
		}
		b, ok := probs[pair.Second]
		if !ok {
			return nil, fmt.Errorf("%w: %s", core.ErrUnknownContrastCase, pair.Second)
		}

		diff := make([]float64, len(a))
		for i := range a {
			diff[i] = 100 * (a[i] - b[i]) // percentage points
		}

		summary, err := summarizeContrast(diff)
		if err != nil {
			return nil, err
		}
		summary.Label = pair.First + "-" + pair.Second
		out[k] = summary
	}
	return out, nil
}

func summarizeContrast(diff []float64) (ContrastSummary, error) {
	median, err := mstats.Median(diff)
	if err != nil {
		return ContrastSummary{}, err
	}
	q := func(p float64) (float64, error) { return mstats.Percentile(diff, p) }

	l50, err := q(25)
	if err != nil {
		return ContrastSummary{}, err
	}
	u50, err := q(75)
	if err != nil {
		return ContrastSummary{}, err
	}
	l95, err := q(2.5)
	if err != nil {
		return ContrastSummary{}, err
	}
	u95, err := q(97.5)
	if err != nil {
		return ContrastSummary{}, err
	}

	return ContrastSummary{
		Median:  median,
		Lower50: l50,
		Upper50: u50,
		Lower95: l95,
		Upper95: u95,
	}, nil
}
