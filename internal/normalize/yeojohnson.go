package normalize

import (
	"math"

	"tabclean/internal/stats"
)

const (
	lambdaSearchLo = -5.0
	lambdaSearchHi = 5.0
	lambdaTol      = 1e-7

	// goldenRatio is (sqrt(5)-1)/2, the section ratio of the search.
	goldenRatio = 0.6180339887498949
)

// yeoJohnson applies the power transform for one value. The function is
// continuous in lambda, with the log branches taken at the removable
// singularities lambda=0 and lambda=2.
func yeoJohnson(x, lambda float64) float64 {
	switch {
	case x >= 0 && math.Abs(lambda) > 1e-12:
		return (math.Pow(x+1, lambda) - 1) / lambda
	case x >= 0:
		return math.Log1p(x)
	case math.Abs(lambda-2) > 1e-12:
		return -(math.Pow(1-x, 2-lambda) - 1) / (2 - lambda)
	default:
		return -math.Log1p(-x)
	}
}

// yeoJohnsonLogLikelihood scores a lambda against the fit data under
// the normality objective of the power transform.
func yeoJohnsonLogLikelihood(xs []float64, lambda float64) float64 {
	transformed := make([]float64, len(xs))
	for i, x := range xs {
		transformed[i] = yeoJohnson(x, lambda)
	}
	sd := stats.PopStdDev(transformed)
	variance := sd * sd
	if variance <= 0 {
		return math.Inf(-1)
	}

	var logTerm float64
	for _, x := range xs {
		logTerm += math.Copysign(math.Log1p(math.Abs(x)), x)
	}
	n := float64(len(xs))
	return -n/2*math.Log(variance) + (lambda-1)*logTerm
}

// fitLambda maximizes the log-likelihood over a bounded lambda range by
// golden-section search. The objective is unimodal over the range for
// realistic data; the bounded search also keeps pathological inputs
// from running away.
func fitLambda(xs []float64) float64 {
	a, b := lambdaSearchLo, lambdaSearchHi
	c := b - goldenRatio*(b-a)
	d := a + goldenRatio*(b-a)
	for b-a > lambdaTol {
		if yeoJohnsonLogLikelihood(xs, c) > yeoJohnsonLogLikelihood(xs, d) {
			b = d
		} else {
			a = c
		}
		c = b - goldenRatio*(b-a)
		d = a + goldenRatio*(b-a)
	}
	return (a + b) / 2
}
