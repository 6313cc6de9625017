package model

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// InvLogit maps a linear predictor to a probability.
func InvLogit(eta float64) float64 {
	if eta >= 0 {
		return 1 / (1 + math.Exp(-eta))
	}
	e := math.Exp(eta)
	return e / (1 + e)
}

// Logit maps a probability in (0,1) to the linear-predictor scale.
func Logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

// softplus computes log(1+exp(x)) without overflow.
func softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

// logBeta computes log B(a, b).
func logBeta(a, b float64) float64 {
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	return la + lb - lab
}

// logChoose computes log C(n, k).
func logChoose(n, k int) float64 {
	return combin.LogGeneralizedBinomial(float64(n), float64(k))
}

// BinomialLogPMF evaluates log P(k | n, p) on the logit scale for numerical
// stability: k*eta - n*log(1+exp(eta)) + log C(n,k), eta = logit(p).
func BinomialLogPMF(k, n int, p float64) float64 {
	switch {
	case p <= 0:
		if k == 0 {
			return 0
		}
		return math.Inf(-1)
	case p >= 1:
		if k == n {
			return 0
		}
		return math.Inf(-1)
	}
	eta := Logit(p)
	return logChoose(n, k) + float64(k)*eta - float64(n)*softplus(eta)
}

// BetaBinomialLogPMF evaluates the log pmf of the beta-binomial distribution
// with the per-observation Beta(a, b) success probability integrated out:
//
//	log C(n,k) + log B(k+a, n-k+b) - log B(a, b)
func BetaBinomialLogPMF(k, n int, a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return math.Inf(-1)
	}
	return logChoose(n, k) + logBeta(float64(k)+a, float64(n-k)+b) - logBeta(a, b)
}
