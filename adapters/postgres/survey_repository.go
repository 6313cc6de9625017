package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/survey"
	"github.com/mbedward/invasive-grasses-models/ports"
)

// surveyRepository implements the SurveyRepository interface
type surveyRepository struct {
	db *sqlx.DB
}

// NewSurveyRepository creates a new survey repository
func NewSurveyRepository(db *sqlx.DB) ports.SurveyRepository {
	return &surveyRepository{db: db}
}

// LoadOccurrences reads the species occurrence table.
func (r *surveyRepository) LoadOccurrences(ctx context.Context) ([]survey.Occurrence, error) {
	query := `SELECT species, COALESCE(common_name, '') AS common_name, nsites
		FROM occurrences ORDER BY species`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load occurrences: %w", err)
	}
	defer rows.Close()

	var out []survey.Occurrence
	for rows.Next() {
		var o survey.Occurrence
		if err := rows.Scan(&o.Species, &o.CommonName, &o.NSites); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence row: %w", err)
		}
		if o.NSites < 0 || o.NSites > survey.TotalSites {
			return nil, fmt.Errorf("%w: %s has nsites=%d", core.ErrDimensionMismatch, o.Species, o.NSites)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// LoadRiskAssessments reads the risk component table. Component scores are
// stored as a JSONB object keyed by column name; a non-numeric value there
// surfaces as a TypeMismatch error.
func (r *surveyRepository) LoadRiskAssessments(ctx context.Context) ([]survey.RiskAssessment, error) {
	query := `SELECT species, components, summed_risk FROM risk_assessments ORDER BY species`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load risk assessments: %w", err)
	}
	defer rows.Close()

	var out []survey.RiskAssessment
	for rows.Next() {
		var ra survey.RiskAssessment
		var componentsJSON []byte
		if err := rows.Scan(&ra.Species, &componentsJSON, &ra.SummedRisk); err != nil {
			return nil, fmt.Errorf("failed to scan risk row: %w", err)
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(componentsJSON, &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal components for %s: %w", ra.Species, err)
		}
		ra.Components = make(map[string]float64, len(raw))
		for col, msg := range raw {
			var v float64
			if err := json.Unmarshal(msg, &v); err != nil {
				return nil, core.NewTypeMismatchError(col, string(msg))
			}
			ra.Components[col] = v
		}
		out = append(out, ra)
	}
	return out, rows.Err()
}
