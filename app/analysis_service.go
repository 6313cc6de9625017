package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/model"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
	"github.com/mbedward/invasive-grasses-models/domain/survey"
	"github.com/mbedward/invasive-grasses-models/internal"
	"github.com/mbedward/invasive-grasses-models/internal/analysis"
	"github.com/mbedward/invasive-grasses-models/internal/errors"
	"github.com/mbedward/invasive-grasses-models/ports"
)

// AnalysisService orchestrates the full pipeline: data preparation, model
// binding, sampling and posterior summarization. Data flows strictly
// forward; the joined table is built once per request and read-only after.
type AnalysisService struct {
	surveys ports.SurveyRepository
	sampler ports.Sampler
	runs    ports.RunRepository // optional, may be nil
	logger  *internal.Logger
}

// NewAnalysisService creates an analysis service. The run repository may be
// nil, in which case runs are not persisted.
func NewAnalysisService(surveys ports.SurveyRepository, sampler ports.Sampler, runs ports.RunRepository) *AnalysisService {
	return &AnalysisService{
		surveys: surveys,
		sampler: sampler,
		runs:    runs,
		logger:  internal.DefaultLogger,
	}
}

// FullAnalysisRequest configures the summed-risk occupancy analysis.
type FullAnalysisRequest struct {
	Options posterior.Options

	// GridPoints for the predicted-probability curve over the observed risk
	// range; zero means 50.
	GridPoints int

	// Contrast exemplars; empty means low/mid/high at the observed minimum,
	// median and maximum summed risk.
	Cases []analysis.ContrastCase
	Pairs []analysis.ContrastPair

	// RequireConvergence turns a non-converged run into ErrNotConverged
	// instead of a flagged result.
	RequireConvergence bool
}

// FullAnalysisResult is the output of the summed-risk analysis.
type FullAnalysisResult struct {
	Table      *survey.Table
	JoinReport survey.JoinReport
	RiskMean   float64 // centering constant, needed for future predictions

	Fitted *posterior.Run
	Null   *posterior.Run

	Deviance          *analysis.Deviance
	ProbSlopePositive float64
	Curve             []analysis.CurvePoint
	Contrasts         []analysis.ContrastSummary
}

// RunFullAnalysis joins the survey tables, centers the precomputed summed
// risk score and fits the beta-binomial model plus its null baseline, then
// summarizes the posterior.
func (s *AnalysisService) RunFullAnalysis(ctx context.Context, req FullAnalysisRequest) (*FullAnalysisResult, error) {
	table, report, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	centered, mean := survey.Center(table.SummedRisk())

	result := &FullAnalysisResult{Table: table, JoinReport: report, RiskMean: mean}

	data := model.Data{Total: survey.TotalSites, NSites: table.NSites(), X: centered}
	result.Fitted, err = s.fit(ctx, model.BetaBinomial(), data, req.Options, req.RequireConvergence)
	if err != nil {
		return nil, err
	}

	nullData := model.Data{Total: survey.TotalSites, NSites: table.NSites()}
	result.Null, err = s.fit(ctx, model.NullBetaBinomial(), nullData, req.Options, req.RequireConvergence)
	if err != nil {
		return nil, err
	}

	result.Deviance, err = analysis.DevianceExplained(
		result.Fitted.Samples, result.Null.Samples, table.NSites(), survey.TotalSites, centered)
	if err != nil {
		return nil, errors.AnalysisError("deviance decomposition failed", err)
	}

	result.ProbSlopePositive, err = analysis.ProbPositive(result.Fitted.Samples, core.ParamName(model.ParamSlope))
	if err != nil {
		return nil, err
	}

	grid := riskGrid(table.SummedRisk(), req.GridPoints)
	result.Curve, err = analysis.PredictionCurve(result.Fitted.Samples, grid, mean)
	if err != nil {
		return nil, err
	}

	cases, pairs := req.Cases, req.Pairs
	if len(cases) == 0 {
		cases, pairs = defaultContrasts(table.SummedRisk())
	}
	result.Contrasts, err = analysis.Contrasts(result.Fitted.Samples, mean, cases, pairs)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SelectionRequest configures the variable-selection analysis and the
// reduced-score refit derived from it.
type SelectionRequest struct {
	Options posterior.Options

	// InclusionThreshold is the minimum inclusion rate for a component to
	// enter the reduced subset score; zero means 0.5.
	InclusionThreshold float64

	RequireConvergence bool
}

// SelectionResult is the output of the variable-selection analysis.
type SelectionResult struct {
	Table      *survey.Table
	JoinReport survey.JoinReport

	Run       *posterior.Run
	Inclusion []analysis.InclusionRate
	Effects   []analysis.MarginalEffect

	// Reduced-score refit: selected components with selection-informed
	// signs, the derived subset score, and its beta-binomial fit.
	SubsetComponents []survey.SignedComponent
	SubsetTable      *survey.Table
	SubsetCenter     float64
	SubsetRun        *posterior.Run
	SubsetNull       *posterior.Run
	SubsetDeviance   *analysis.Deviance
}

// RunSelection fits the indicator-based component model on the raw
// (uncentered) component scores, reports inclusion rates and conditional
// effects, then derives a signed subset risk score from the selected
// components and refits the centered beta-binomial model on it.
func (s *AnalysisService) RunSelection(ctx context.Context, req SelectionRequest) (*SelectionResult, error) {
	table, report, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	xmat, err := table.ComponentMatrix(survey.ModelComponents)
	if err != nil {
		return nil, errors.DataError(err.Error())
	}

	result := &SelectionResult{Table: table, JoinReport: report}

	data := model.Data{Total: survey.TotalSites, NSites: table.NSites(), XMatrix: xmat}
	result.Run, err = s.fit(ctx, model.VariableSelection(len(survey.ModelComponents)), data, req.Options, req.RequireConvergence)
	if err != nil {
		return nil, err
	}

	result.Inclusion, err = analysis.InclusionRates(result.Run.Samples, survey.ModelComponents)
	if err != nil {
		return nil, err
	}
	result.Effects, err = analysis.MarginalEffects(result.Run.Samples, survey.ModelComponents)
	if err != nil {
		return nil, err
	}

	threshold := req.InclusionThreshold
	if threshold <= 0 {
		threshold = 0.5
	}
	result.SubsetComponents = selectComponents(result.Inclusion, result.Effects, threshold)
	if len(result.SubsetComponents) == 0 {
		s.logger.Warn("no component reached inclusion rate %.2f; skipping reduced-score refit", threshold)
		return result, nil
	}

	subsetTable, err := survey.DeriveSubsetScore(table, result.SubsetComponents)
	if err != nil {
		return nil, err
	}
	result.SubsetTable = subsetTable

	subset, _ := subsetTable.SubsetRisk()
	centered, mean := survey.Center(subset)
	result.SubsetCenter = mean

	subsetData := model.Data{Total: survey.TotalSites, NSites: subsetTable.NSites(), X: centered}
	result.SubsetRun, err = s.fit(ctx, model.BetaBinomial(), subsetData, req.Options, req.RequireConvergence)
	if err != nil {
		return nil, err
	}

	nullData := model.Data{Total: survey.TotalSites, NSites: subsetTable.NSites()}
	result.SubsetNull, err = s.fit(ctx, model.NullBetaBinomial(), nullData, req.Options, req.RequireConvergence)
	if err != nil {
		return nil, err
	}

	result.SubsetDeviance, err = analysis.DevianceExplained(
		result.SubsetRun.Samples, result.SubsetNull.Samples, subsetTable.NSites(), survey.TotalSites, centered)
	if err != nil {
		return nil, errors.AnalysisError("subset deviance decomposition failed", err)
	}

	return result, nil
}

// prepare loads the source tables and produces the joined analysis table.
func (s *AnalysisService) prepare(ctx context.Context) (*survey.Table, survey.JoinReport, error) {
	occ, err := s.surveys.LoadOccurrences(ctx)
	if err != nil {
		return nil, survey.JoinReport{}, errors.Wrap(err, "failed to load occurrence table")
	}
	risk, err := s.surveys.LoadRiskAssessments(ctx)
	if err != nil {
		return nil, survey.JoinReport{}, errors.Wrap(err, "failed to load risk table")
	}

	table, report := survey.Join(occ, risk, survey.DefaultGenusOverride())
	if table.Len() == 0 {
		return nil, report, errors.DataError("no occurrence rows matched a risk assessment")
	}
	if report.Dropped > 0 {
		s.logger.Info("join dropped %d of %d occurrence rows with no risk assessment: %v",
			report.Dropped, report.Matched+report.Dropped, report.DroppedSpecies)
	}
	return table, report, nil
}

// fit runs the sampler on a bound model, persists the run when a repository
// is configured, and enforces convergence when requested.
func (s *AnalysisService) fit(ctx context.Context, spec *model.Spec, data model.Data, opts posterior.Options, requireConvergence bool) (*posterior.Run, error) {
	target, err := model.Bind(spec, data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to bind model %s", spec.Name)
	}
	run, err := s.sampler.Fit(ctx, target, opts)
	if err != nil {
		return nil, errors.SamplerError(fmt.Sprintf("sampling %s failed", spec.Name), err)
	}

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			// Persistence is an extension; a failed save never invalidates
			// the in-memory result.
			s.logger.Error("failed to persist run %s: %v", run.ID, err)
		}
	}

	if !run.Converged && requireConvergence {
		return nil, fmt.Errorf("%w: model %s worst R-hat %.3f", core.ErrNotConverged, spec.Name, run.WorstRHat)
	}
	return run, nil
}

// riskGrid spans the observed risk range with n evenly spaced points.
func riskGrid(risk []float64, n int) []float64 {
	if n <= 1 {
		n = 50
	}
	lo, hi := risk[0], risk[0]
	for _, v := range risk {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	grid := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range grid {
		grid[i] = lo + float64(i)*step
	}
	return grid
}

// defaultContrasts builds low/mid/high exemplars at the observed minimum,
// median and maximum risk, with the ordered differences the source reports.
func defaultContrasts(risk []float64) ([]analysis.ContrastCase, []analysis.ContrastPair) {
	sorted := make([]float64, len(risk))
	copy(sorted, risk)
	sort.Float64s(sorted)
	cases := []analysis.ContrastCase{
		{Name: "low", Risk: sorted[0]},
		{Name: "mid", Risk: sorted[len(sorted)/2]},
		{Name: "high", Risk: sorted[len(sorted)-1]},
	}
	pairs := []analysis.ContrastPair{
		{First: "mid", Second: "low"},
		{First: "high", Second: "mid"},
		{First: "high", Second: "low"},
	}
	return cases, pairs
}

// selectComponents picks the subset-score components: inclusion rate at or
// above the threshold, signed by the conditional effect direction.
func selectComponents(rates []analysis.InclusionRate, effects []analysis.MarginalEffect, threshold float64) []survey.SignedComponent {
	var out []survey.SignedComponent
	for i, r := range rates {
		if r.Rate < threshold {
			continue
		}
		sign := 1.0
		if effects[i].HasDraws && effects[i].Mean < 0 {
			sign = -1.0
		}
		out = append(out, survey.SignedComponent{Column: r.Component, Sign: sign})
	}
	return out
}
