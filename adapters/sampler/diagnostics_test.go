package sampler

import (
	"math/rand"
	"testing"
)

func noisyChains(m, n int, means []float64, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	chains := make([][]float64, m)
	for c := range chains {
		chains[c] = make([]float64, n)
		for i := range chains[c] {
			chains[c][i] = means[c] + rng.NormFloat64()
		}
	}
	return chains
}

func TestGelmanRubin_AgreeingChainsNearOne(t *testing.T) {
	chains := noisyChains(4, 500, []float64{0, 0, 0, 0}, 1)
	rhat := gelmanRubin(chains)
	if rhat < 0.95 || rhat > 1.1 {
		t.Errorf("R-hat for agreeing chains = %v, want ~1", rhat)
	}
}

func TestGelmanRubin_SeparatedChainsLarge(t *testing.T) {
	chains := noisyChains(4, 500, []float64{-10, -3, 3, 10}, 2)
	rhat := gelmanRubin(chains)
	if rhat < 1.5 {
		t.Errorf("R-hat for separated chains = %v, want well above 1", rhat)
	}
}

func TestGelmanRubin_ConstantChains(t *testing.T) {
	chains := [][]float64{{1, 1, 1, 1}, {1, 1, 1, 1}}
	if rhat := gelmanRubin(chains); rhat != 1 {
		t.Errorf("constant chains should report R-hat 1, got %v", rhat)
	}
}

func TestEffectiveSampleSize_Bounds(t *testing.T) {
	chains := noisyChains(4, 400, []float64{0, 0, 0, 0}, 3)
	ess := effectiveSampleSize(chains)
	total := 4.0 * 400.0
	if ess <= 0 || ess > total {
		t.Fatalf("ESS = %v outside (0, %v]", ess, total)
	}
	// Near-independent draws should retain most of the nominal sample.
	if ess < total/4 {
		t.Errorf("ESS for iid noise = %v, unexpectedly low", ess)
	}
}

func TestEffectiveSampleSize_AutocorrelatedSeriesShrinks(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	m, n := 4, 400
	chains := make([][]float64, m)
	for c := range chains {
		chains[c] = make([]float64, n)
		x := 0.0
		for i := range chains[c] {
			// AR(1) with strong persistence
			x = 0.95*x + rng.NormFloat64()
			chains[c][i] = x
		}
	}
	ess := effectiveSampleSize(chains)
	total := float64(m * n)
	if ess > total/4 {
		t.Errorf("ESS for highly autocorrelated chains = %v of %v, should shrink substantially", ess, total)
	}
}

func TestEffectiveSampleSize_ConstantChains(t *testing.T) {
	chains := [][]float64{{1, 1, 1, 1, 1}, {1, 1, 1, 1, 1}}
	if ess := effectiveSampleSize(chains); ess != 10 {
		t.Errorf("constant chains ESS = %v, want nominal 10", ess)
	}
}
