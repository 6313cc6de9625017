package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
	"github.com/mbedward/invasive-grasses-models/ports"
)

// Connect opens a Postgres connection pool with the pq driver.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// runRepository implements the RunRepository interface. Samples are stored
// long-format (run, draw index, parameter, value) so runs with different
// monitored-parameter sets share one schema.
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// EnsureSchema creates the run persistence tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sampler_runs (
		id TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		chains INT NOT NULL,
		burnin INT NOT NULL,
		samples INT NOT NULL,
		thin INT NOT NULL,
		seed BIGINT NOT NULL,
		rhat_threshold DOUBLE PRECISION NOT NULL,
		converged BOOLEAN NOT NULL,
		worst_rhat DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS run_samples (
		run_id TEXT NOT NULL REFERENCES sampler_runs(id) ON DELETE CASCADE,
		draw_idx INT NOT NULL,
		param TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, draw_idx, param)
	);
	CREATE TABLE IF NOT EXISTS run_diagnostics (
		run_id TEXT NOT NULL REFERENCES sampler_runs(id) ON DELETE CASCADE,
		param TEXT NOT NULL,
		ess DOUBLE PRECISION NOT NULL,
		rhat DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, param)
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure run schema: %w", err)
	}
	return nil
}

// SaveRun persists a run, its diagnostics and its pooled samples in one
// transaction.
func (r *runRepository) SaveRun(ctx context.Context, run *posterior.Run) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sampler_runs (id, model, chains, burnin, samples, thin, seed, rhat_threshold, converged, worst_rhat)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.Model, run.Options.Chains, run.Options.Burnin, run.Options.Samples,
		run.Options.Thin, run.Options.Seed, run.Options.RHatThreshold, run.Converged, run.WorstRHat,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	diagStmt, err := tx.PreparexContext(ctx,
		`INSERT INTO run_diagnostics (run_id, param, ess, rhat) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("failed to prepare diagnostics insert: %w", err)
	}
	for param, d := range run.Diagnostics {
		if _, err := diagStmt.ExecContext(ctx, run.ID, string(param), d.ESS, d.RHat); err != nil {
			return fmt.Errorf("failed to insert diagnostic for %s: %w", param, err)
		}
	}

	sampleStmt, err := tx.PreparexContext(ctx,
		`INSERT INTO run_samples (run_id, draw_idx, param, value) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	names := run.Samples.Names()
	for i := 0; i < run.Samples.Len(); i++ {
		for _, name := range names {
			v, err := run.Samples.Value(i, name)
			if err != nil {
				return err
			}
			if _, err := sampleStmt.ExecContext(ctx, run.ID, i, string(name), v); err != nil {
				return fmt.Errorf("failed to insert sample: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetRun loads a persisted run by ID.
func (r *runRepository) GetRun(ctx context.Context, id core.RunID) (*posterior.Run, error) {
	run := &posterior.Run{ID: id, Diagnostics: make(map[core.ParamName]posterior.Diagnostic)}

	err := r.db.QueryRowContext(ctx,
		`SELECT model, chains, burnin, samples, thin, seed, rhat_threshold, converged, worst_rhat
		 FROM sampler_runs WHERE id = $1`, id).Scan(
		&run.Model, &run.Options.Chains, &run.Options.Burnin, &run.Options.Samples,
		&run.Options.Thin, &run.Options.Seed, &run.Options.RHatThreshold,
		&run.Converged, &run.WorstRHat,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	diagRows, err := r.db.QueryContext(ctx,
		`SELECT param, ess, rhat FROM run_diagnostics WHERE run_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load diagnostics: %w", err)
	}
	defer diagRows.Close()
	for diagRows.Next() {
		var param string
		var d posterior.Diagnostic
		if err := diagRows.Scan(&param, &d.ESS, &d.RHat); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		run.Diagnostics[core.ParamName(param)] = d
	}
	if err := diagRows.Err(); err != nil {
		return nil, err
	}

	sampleRows, err := r.db.QueryContext(ctx,
		`SELECT draw_idx, param, value FROM run_samples WHERE run_id = $1 ORDER BY draw_idx, param`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	defer sampleRows.Close()

	byParam := make(map[core.ParamName][]float64)
	var names []core.ParamName
	maxDraw := -1
	for sampleRows.Next() {
		var idx int
		var param string
		var value float64
		if err := sampleRows.Scan(&idx, &param, &value); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		name := core.ParamName(param)
		if _, seen := byParam[name]; !seen {
			names = append(names, name)
		}
		byParam[name] = append(byParam[name], value)
		if idx > maxDraw {
			maxDraw = idx
		}
	}
	if err := sampleRows.Err(); err != nil {
		return nil, err
	}

	draws := make([][]float64, maxDraw+1)
	for i := range draws {
		row := make([]float64, len(names))
		for j, name := range names {
			row[j] = byParam[name][i]
		}
		draws[i] = row
	}
	run.Samples = posterior.NewSamples(names, draws)
	return run, nil
}

// ListRuns returns run IDs for a model, newest first.
func (r *runRepository) ListRuns(ctx context.Context, modelName string) ([]core.RunID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM sampler_runs WHERE model = $1 ORDER BY created_at DESC`, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []core.RunID
	for rows.Next() {
		var id core.RunID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
