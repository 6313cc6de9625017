package sampler

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// gelmanRubin computes the potential-scale-reduction statistic for one
// parameter from its per-chain draw series: sqrt(varPlus / W) where W is the
// mean within-chain variance and varPlus blends W with the between-chain
// variance. Values near 1.0 indicate the chains agree on the distribution.
func gelmanRubin(chains [][]float64) float64 {
	m := len(chains)
	if m < 2 {
		return 1
	}
	n := len(chains[0])
	if n < 2 {
		return 1
	}

	means := make([]float64, m)
	w := 0.0
	for i, ch := range chains {
		means[i] = stat.Mean(ch, nil)
		w += stat.Variance(ch, nil)
	}
	w /= float64(m)

	if w == 0 {
		// Constant chains: indicators stuck at the same value everywhere.
		return 1
	}

	b := float64(n) * stat.Variance(means, nil)
	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}

// effectiveSampleSize estimates the number of equivalent independent draws
// for one parameter, pooling autocovariances across chains and truncating
// the autocorrelation sum at the first non-positive pair (initial positive
// sequence rule).
func effectiveSampleSize(chains [][]float64) float64 {
	m := len(chains)
	if m == 0 {
		return 0
	}
	n := len(chains[0])
	total := float64(m * n)
	if n < 4 {
		return total
	}

	w := 0.0
	means := make([]float64, m)
	for i, ch := range chains {
		means[i] = stat.Mean(ch, nil)
		w += stat.Variance(ch, nil)
	}
	w /= float64(m)
	if w == 0 {
		return total
	}

	varPlus := float64(n-1) / float64(n) * w
	if m > 1 {
		varPlus += float64(n) * stat.Variance(means, nil) / float64(n)
	}

	// rho[t] pooled across chains, corrected toward varPlus
	rho := func(t int) float64 {
		acov := 0.0
		for i, ch := range chains {
			s := 0.0
			for k := 0; k+t < n; k++ {
				s += (ch[k] - means[i]) * (ch[k+t] - means[i])
			}
			acov += s / float64(n)
		}
		acov /= float64(m)
		return 1 - (w-acov)/varPlus
	}

	sum := 0.0
	for t := 1; t+1 < n; t += 2 {
		pair := rho(t) + rho(t+1)
		if pair <= 0 {
			break
		}
		sum += pair
	}

	ess := total / (1 + 2*sum)
	if ess > total {
		ess = total
	}
	if ess < 1 {
		ess = 1
	}
	return ess
}
