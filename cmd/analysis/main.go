package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/mbedward/invasive-grasses-models/adapters/postgres"
	"github.com/mbedward/invasive-grasses-models/adapters/sampler"
	"github.com/mbedward/invasive-grasses-models/app"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
	"github.com/mbedward/invasive-grasses-models/internal/config"
	"github.com/mbedward/invasive-grasses-models/internal/testkit"
	"github.com/mbedward/invasive-grasses-models/ports"
)

// A linear batch run: fit the summed-risk beta-binomial model and its null
// baseline, report deviance explained and risk contrasts, then run the
// component selection model and the reduced-score refit.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var surveys ports.SurveyRepository = testkit.NewFixtureRepository()
	var runs ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		surveys = postgres.NewSurveyRepository(db)
		runs = postgres.NewRunRepository(db)
	}

	engine := sampler.NewEngine(sampler.NewStreamRNG(), cfg.Sampler.MaxParallel)
	service := app.NewAnalysisService(surveys, engine, runs)

	opts := posterior.Options{
		Chains:        cfg.Sampler.Chains,
		Burnin:        cfg.Sampler.Burnin,
		Samples:       cfg.Sampler.Samples,
		Thin:          cfg.Sampler.Thin,
		Seed:          cfg.Sampler.Seed,
		RHatThreshold: cfg.Sampler.RHatThreshold,
	}

	ctx := context.Background()

	full, err := service.RunFullAnalysis(ctx, app.FullAnalysisRequest{Options: opts})
	if err != nil {
		log.Fatalf("Summed-risk analysis failed: %v", err)
	}
	printFullAnalysis(full)

	sel, err := service.RunSelection(ctx, app.SelectionRequest{Options: opts})
	if err != nil {
		log.Fatalf("Variable-selection analysis failed: %v", err)
	}
	printSelection(sel)
}

func printFullAnalysis(r *app.FullAnalysisResult) {
	fmt.Println("=== Summed risk vs roadside occupancy ===")
	fmt.Printf("species analysed: %d (dropped %d without risk assessment)\n",
		r.Table.Len(), r.JoinReport.Dropped)
	fmt.Printf("risk centering constant: %.3f\n", r.RiskMean)
	printConvergence("fitted", r.Fitted)
	printConvergence("null", r.Null)
	fmt.Printf("deviance explained: %.1f%% (residual %.2f, null %.2f)\n",
		r.Deviance.PercentExplained, r.Deviance.ResidualDeviance, r.Deviance.NullDeviance)
	fmt.Printf("P(slope > 0) = %.3f\n", r.ProbSlopePositive)
	for _, c := range r.Contrasts {
		fmt.Printf("contrast %s: median %+.1f pp (95%% CI %+.1f to %+.1f)\n",
			c.Label, c.Median, c.Lower95, c.Upper95)
	}
}

func printSelection(r *app.SelectionResult) {
	fmt.Println("=== Component variable selection ===")
	printConvergence("selection", r.Run)
	for i, inc := range r.Inclusion {
		line := fmt.Sprintf("%-28s inclusion %.2f", inc.Component, inc.Rate)
		if r.Effects[i].HasDraws {
			line += fmt.Sprintf("  effect|included %+.3f", r.Effects[i].Mean)
		}
		fmt.Println(line)
	}
	if r.SubsetRun == nil {
		return
	}
	fmt.Printf("reduced score from %d components, centering constant %.3f\n",
		len(r.SubsetComponents), r.SubsetCenter)
	printConvergence("reduced", r.SubsetRun)
	fmt.Printf("reduced-model deviance explained: %.1f%%\n", r.SubsetDeviance.PercentExplained)
}

func printConvergence(label string, run *posterior.Run) {
	status := "converged"
	if !run.Converged {
		status = "NOT CONVERGED - do not trust these results"
	}
	fmt.Printf("%s model run %s: worst R-hat %.3f (%s)\n", label, run.ID, run.WorstRHat, status)
}
