package ports

import (
	"context"

	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
	"github.com/mbedward/invasive-grasses-models/domain/survey"
)

// SurveyRepository loads the two source tables of an analysis run. Both are
// read-only and loaded once per run.
type SurveyRepository interface {
	LoadOccurrences(ctx context.Context) ([]survey.Occurrence, error)
	LoadRiskAssessments(ctx context.Context) ([]survey.RiskAssessment, error)
}

// RunRepository persists sampler runs. Persistence is an extension: an
// analysis is complete without it, but saved runs allow posterior summaries
// to be recomputed without re-sampling.
type RunRepository interface {
	SaveRun(ctx context.Context, run *posterior.Run) error
	GetRun(ctx context.Context, id core.RunID) (*posterior.Run, error)
	ListRuns(ctx context.Context, modelName string) ([]core.RunID, error)
}
