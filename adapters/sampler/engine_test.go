package sampler

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbedward/invasive-grasses-models/domain/core"
	"github.com/mbedward/invasive-grasses-models/domain/model"
	"github.com/mbedward/invasive-grasses-models/domain/posterior"
	"github.com/mbedward/invasive-grasses-models/internal/testkit"
)

func smallTarget(t *testing.T) *model.Target {
	t.Helper()
	target, err := model.Bind(model.BetaBinomial(), testkit.SyntheticBinding(12, 139, -0.5, 1.0, 7))
	require.NoError(t, err)
	return target
}

func smallOptions() posterior.Options {
	return posterior.Options{
		Chains:  3,
		Burnin:  500,
		Samples: 300,
		Thin:    2,
		Seed:    99,
	}
}

func TestFit_ValidatesOptions(t *testing.T) {
	engine := NewEngine(NewStreamRNG(), 0)
	target := smallTarget(t)

	for _, opts := range []posterior.Options{
		{Chains: 0, Burnin: 10, Samples: 10, Thin: 1},
		{Chains: 2, Burnin: -1, Samples: 10, Thin: 1},
		{Chains: 2, Burnin: 10, Samples: 0, Thin: 1},
		{Chains: 2, Burnin: 10, Samples: 10, Thin: 0},
	} {
		_, err := engine.Fit(context.Background(), target, opts)
		assert.ErrorIs(t, err, core.ErrBadOptions)
	}
}

func TestFit_PooledShapeAndDiagnostics(t *testing.T) {
	engine := NewEngine(NewStreamRNG(), 0)
	run, err := engine.Fit(context.Background(), smallTarget(t), smallOptions())
	require.NoError(t, err)

	opts := smallOptions()
	assert.Equal(t, opts.Chains*opts.Samples, run.Samples.Len())
	assert.ElementsMatch(t,
		[]core.ParamName{"b0", "b1", "phi"},
		run.Samples.Names())

	for name, d := range run.Diagnostics {
		assert.Greaterf(t, d.ESS, 0.0, "%s ESS", name)
		assert.LessOrEqualf(t, d.ESS, float64(opts.Chains*opts.Samples), "%s ESS", name)
		assert.Greaterf(t, d.RHat, 0.0, "%s R-hat", name)
	}
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "beta_binomial_risk", run.Model)
}

func TestFit_ReproducibleForFixedSeed(t *testing.T) {
	engine := NewEngine(NewStreamRNG(), 0)
	run1, err := engine.Fit(context.Background(), smallTarget(t), smallOptions())
	require.NoError(t, err)
	run2, err := engine.Fit(context.Background(), smallTarget(t), smallOptions())
	require.NoError(t, err)

	require.Equal(t, run1.Samples.Len(), run2.Samples.Len())
	for _, name := range run1.Samples.Names() {
		c1, err := run1.Samples.Column(name)
		require.NoError(t, err)
		c2, err := run2.Samples.Column(name)
		require.NoError(t, err)
		assert.Equalf(t, c1, c2, "column %s differs between identically seeded runs", name)
	}
}

func TestFit_SchedulingDoesNotChangeDraws(t *testing.T) {
	// One worker versus one worker per chain must pool identical draws.
	serial := NewEngine(NewStreamRNG(), 1)
	parallel := NewEngine(NewStreamRNG(), 0)

	run1, err := serial.Fit(context.Background(), smallTarget(t), smallOptions())
	require.NoError(t, err)
	run2, err := parallel.Fit(context.Background(), smallTarget(t), smallOptions())
	require.NoError(t, err)

	for _, name := range run1.Samples.Names() {
		c1, _ := run1.Samples.Column(name)
		c2, _ := run2.Samples.Column(name)
		assert.Equalf(t, c1, c2, "column %s depends on worker scheduling", name)
	}
}

func TestFit_DifferentSeedsDiffer(t *testing.T) {
	engine := NewEngine(NewStreamRNG(), 0)
	opts := smallOptions()
	run1, err := engine.Fit(context.Background(), smallTarget(t), opts)
	require.NoError(t, err)
	opts.Seed = 100
	run2, err := engine.Fit(context.Background(), smallTarget(t), opts)
	require.NoError(t, err)

	c1, _ := run1.Samples.Column("b1")
	c2, _ := run2.Samples.Column("b1")
	assert.NotEqual(t, c1, c2)
}

func TestFit_RecoversKnownSlope(t *testing.T) {
	if testing.Short() {
		t.Skip("slow sampler recovery test")
	}

	data := testkit.SyntheticBinding(40, 139, -0.5, 1.0, 11)
	target, err := model.Bind(model.BetaBinomial(), data)
	require.NoError(t, err)

	engine := NewEngine(NewStreamRNG(), 0)
	run, err := engine.Fit(context.Background(), target, posterior.Options{
		Chains: 3, Burnin: 1500, Samples: 600, Thin: 2, Seed: 5,
	})
	require.NoError(t, err)

	b0, err := run.Samples.Mean("b0")
	require.NoError(t, err)
	b1, err := run.Samples.Mean("b1")
	require.NoError(t, err)

	assert.InDelta(t, -0.5, b0, 0.3)
	assert.InDelta(t, 1.0, b1, 0.3)
}

func TestFit_SelectionIndicatorsAreBinary(t *testing.T) {
	nsites := []int{102, 87, 64, 49, 31, 18, 53, 95, 41, 7, 26, 3}
	xmat := make([][]float64, len(nsites))
	for i := range xmat {
		xmat[i] = []float64{float64(nsites[i]) / 30, float64((i * 7) % 5)}
	}
	target, err := model.Bind(model.VariableSelection(2),
		model.Data{Total: 139, NSites: nsites, XMatrix: xmat})
	require.NoError(t, err)

	engine := NewEngine(NewStreamRNG(), 0)
	run, err := engine.Fit(context.Background(), target, posterior.Options{
		Chains: 2, Burnin: 400, Samples: 200, Thin: 1, Seed: 21,
	})
	require.NoError(t, err)

	for _, name := range []core.ParamName{"psi[1]", "psi[2]"} {
		col, err := run.Samples.Column(name)
		require.NoError(t, err)
		for _, v := range col {
			if v != 0 && v != 1 {
				t.Fatalf("%s draw %v is not a 0/1 indicator", name, v)
			}
		}
	}

	// Slope draws must stay finite under the hierarchical scale priors.
	for _, name := range []core.ParamName{"b0", "b1[1]", "b1[2]"} {
		col, err := run.Samples.Column(name)
		require.NoError(t, err)
		for _, v := range col {
			require.Falsef(t, math.IsNaN(v) || math.IsInf(v, 0), "%s contains %v", name, v)
		}
	}
}

func TestFit_MonitorOverride(t *testing.T) {
	engine := NewEngine(NewStreamRNG(), 0)
	opts := smallOptions()
	opts.Monitor = []string{model.ParamSlope}

	run, err := engine.Fit(context.Background(), smallTarget(t), opts)
	require.NoError(t, err)
	assert.Equal(t, []core.ParamName{"b1"}, run.Samples.Names())

	opts.Monitor = []string{"nonexistent"}
	_, err = engine.Fit(context.Background(), smallTarget(t), opts)
	assert.ErrorIs(t, err, core.ErrUnknownParam)
}

func TestFit_FlagsNonConvergence(t *testing.T) {
	engine := NewEngine(NewStreamRNG(), 0)

	// No burn-in, few draws, and a threshold below the attainable floor of
	// the statistic: the run must come back flagged, never errored.
	run, err := engine.Fit(context.Background(), smallTarget(t), posterior.Options{
		Chains:        4,
		Burnin:        0,
		Samples:       20,
		Thin:          1,
		Seed:          3,
		RHatThreshold: 0.5,
	})
	require.NoError(t, err)

	assert.False(t, run.Converged)
	assert.Greater(t, run.WorstRHat, 0.5)
	for name, d := range run.Diagnostics {
		assert.Greaterf(t, d.RHat, 0.0, "%s R-hat", name)
	}
}

func TestFit_MonitorElementNames(t *testing.T) {
	nsites := []int{12, 77, 40, 103, 5, 66}
	xmat := make([][]float64, len(nsites))
	for i := range xmat {
		xmat[i] = []float64{float64(i), float64(i % 3)}
	}
	target, err := model.Bind(model.VariableSelection(2),
		model.Data{Total: 139, NSites: nsites, XMatrix: xmat})
	require.NoError(t, err)

	engine := NewEngine(NewStreamRNG(), 0)
	run, err := engine.Fit(context.Background(), target, posterior.Options{
		Chains:  2,
		Burnin:  50,
		Samples: 20,
		Thin:    1,
		Seed:    8,
		Monitor: []string{"psi[2]", "b0"},
	})
	require.NoError(t, err)
	assert.Equal(t, []core.ParamName{"psi[2]", "b0"}, run.Samples.Names())

	_, err = engine.Fit(context.Background(), target, posterior.Options{
		Chains: 2, Burnin: 50, Samples: 20, Thin: 1, Seed: 8,
		Monitor: []string{"psi[3]"},
	})
	assert.ErrorIs(t, err, core.ErrUnknownParam)
}

func TestStreamRNG_Deterministic(t *testing.T) {
	rng := NewStreamRNG()
	a := rng.ChainStream(42, 1)
	b := rng.ChainStream(42, 1)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("chain streams with identical seed and index diverge")
		}
	}
	first := rng.ChainStream(42, 1).Float64()
	second := rng.ChainStream(42, 2).Float64()
	if first == second {
		t.Fatal("distinct chain indices produce identical streams")
	}
}
