package orth

import (
	"fmt"
	"math"
)

// CollinearityThreshold is the relative-norm cutoff below which a
// candidate column is rejected as collinear with the current basis.
// A small constant, per the MARS core design (~1e-10 relative).
const CollinearityThreshold = 1e-10

// Updater maintains the orthonormal columns Q of a weighted QR
// factorization, appended one at a time. It never removes a column
// during the forward pass.
type Updater struct {
	weights []float64 // nonnegative sample weights, length m
	y       []float64 // response, length m
	m       int

	cols []([]float64) // orthonormal columns under the weighted inner product
	qty  []float64     // <q_j, y>_w for each appended column, residual bookkeeping

	totalYY float64 // <y, y>_w, fixed at construction
}

// New constructs an Updater for m samples with the given nonnegative
// weights and response y. Both must have length m.
func New(weights, y []float64) (*Updater, error) {
	if len(weights) != len(y) {
		return nil, fmt.Errorf("orth.New: len(weights)=%d, len(y)=%d: %w", len(weights), len(y), ErrShapeMismatch)
	}
	for _, w := range weights {
		if w < 0 {
			return nil, ErrNegativeWeight
		}
	}
	u := &Updater{
		weights: weights,
		y:       y,
		m:       len(y),
	}
	u.totalYY = weightedDot(weights, y, y)

	return u, nil
}

// NumColumns reports how many columns have been appended so far.
func (u *Updater) NumColumns() int { return len(u.cols) }

// Weights returns the sample weights the updater was constructed with.
func (u *Updater) Weights() []float64 { return u.weights }

// Response returns y, the updater's response vector.
func (u *Updater) Response() []float64 { return u.y }

// Column returns a read-only reference to the j-th orthonormal column.
func (u *Updater) Column(j int) []float64 { return u.cols[j] }

// QTY returns the cached <q_j, y>_w computed when column j was appended.
func (u *Updater) QTY(j int) float64 { return u.qty[j] }

// RSS returns the current weighted residual sum of squares given the
// columns appended so far: ||y||_w^2 minus the sum of squared
// projections of y onto each orthonormal column.
func (u *Updater) RSS() float64 {
	rss := u.totalYY
	for _, c := range u.qty {
		rss -= c * c
	}
	if rss < 0 {
		rss = 0 // guard against rounding noise driving RSS slightly negative
	}

	return rss
}

// weightedDot computes sum(w_i * a_i * b_i).
func weightedDot(w, a, b []float64) float64 {
	var s float64
	for i := range a {
		s += w[i] * a[i] * b[i]
	}

	return s
}

// Orthogonalize performs two-pass modified Gram-Schmidt of candidate c
// against the current columns, returning the residual component c~ and
// its pre-normalization weighted norm. It does not mutate updater state.
func (u *Updater) Orthogonalize(c []float64) (residual []float64, norm float64, err error) {
	if len(c) != u.m {
		return nil, 0, fmt.Errorf("orth.Orthogonalize: %w", ErrShapeMismatch)
	}
	residual = make([]float64, u.m)
	copy(residual, c)
	for pass := 0; pass < 2; pass++ {
		for _, q := range u.cols {
			proj := weightedDot(u.weights, q, residual)
			for i := range residual {
				residual[i] -= proj * q[i]
			}
		}
	}
	norm = math.Sqrt(weightedDot(u.weights, residual, residual))

	return residual, norm, nil
}

// TrialProjection reports, without mutating state, the RSS reduction
// that would result from appending candidate c: (the orthogonal
// residual's projection onto y)^2, and whether c would be accepted or
// rejected as collinear.
func (u *Updater) TrialProjection(c []float64) (reduction float64, accepted bool, err error) {
	residual, normTilde, err := u.Orthogonalize(c)
	if err != nil {
		return 0, false, err
	}
	normC := math.Sqrt(weightedDot(u.weights, c, c))
	if normC == 0 || normTilde < CollinearityThreshold*normC {
		return 0, false, nil
	}
	qty := weightedDot(u.weights, residual, u.y) / normTilde
	reduction = qty * qty

	return reduction, true, nil
}

// Append orthogonalizes candidate c against the current columns and, if
// it is not collinear, normalizes and appends it, returning its column
// index. accepted=false (err=nil) signals a collinearity rejection: the
// caller should skip this candidate and continue the forward pass.
func (u *Updater) Append(c []float64) (colIndex int, accepted bool, err error) {
	residual, normTilde, err := u.Orthogonalize(c)
	if err != nil {
		return 0, false, err
	}
	normC := math.Sqrt(weightedDot(u.weights, c, c))
	if normC == 0 || normTilde < CollinearityThreshold*normC {
		return 0, false, nil // collinear: caller skips this candidate
	}
	q := make([]float64, u.m)
	for i := range residual {
		q[i] = residual[i] / normTilde
	}
	qty := weightedDot(u.weights, q, u.y)
	u.cols = append(u.cols, q)
	u.qty = append(u.qty, qty)

	return len(u.cols) - 1, true, nil
}
