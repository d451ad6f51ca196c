package gcv

import "math"

// GCV computes the Generalized Cross-Validation criterion for a model
// with k effective (unpruned) basis functions, weighted residual sum of
// squares rss, m samples and complexity penalty.
//
//	GCV = (RSS/m) / (1 - (k + penalty*(k-1)/2)/m)^2
//
// when the denominator base is positive; otherwise GCV = +Inf, so that
// such models are never selected by pruning (see spec's open question
// on the empty-denominator case).
func GCV(rss float64, k, m int, penalty float64) float64 {
	if m <= 0 {
		return math.Inf(1)
	}
	effective := float64(k) + penalty*float64(k-1)/2
	base := 1 - effective/float64(m)
	if base <= 0 {
		return math.Inf(1)
	}

	return (rss / float64(m)) / (base * base)
}

// RSQ computes the fraction of weighted variance explained:
// 1 - rss/rss0, where rss0 is the weighted total sum of squares about
// the weighted mean (the intercept-only model's RSS).
func RSQ(rss, rss0 float64) float64 {
	if rss0 == 0 {
		return 0 // documented convention: constant-response 0/0 case
	}

	return 1 - rss/rss0
}

// GRSQ computes the fraction of GCV explained relative to the
// intercept-only model: 1 - gcvVal/gcv0.
func GRSQ(gcvVal, gcv0 float64) float64 {
	if math.IsInf(gcv0, 1) {
		return 0
	}
	if gcv0 == 0 {
		return 0
	}

	return 1 - gcvVal/gcv0
}
