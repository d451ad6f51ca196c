package pruning

import (
	"fmt"
	"math"

	gmat "gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/mars/basis"
	"github.com/katalvlaran/mars/gcv"
	"github.com/katalvlaran/mars/mat"
	"github.com/katalvlaran/mars/record"
)

// Passer runs the backward-elimination pruning pass over a basis
// produced by the forward pass.
type Passer struct {
	basis   *basis.Basis
	X       *mat.Dense
	y, w    []float64
	penalty float64
	rec     *record.PruningPassRecord

	finalActive []int // unpruned term indices of the selected model, set by Run
}

// New constructs a Passer over the given (already forward-passed) basis.
func New(b *basis.Basis, X *mat.Dense, y, w []float64, penalty float64) *Passer {
	return &Passer{basis: b, X: X, y: y, w: w, penalty: penalty, rec: record.NewPruningPassRecord()}
}

// Record returns the pruning-pass step trace.
func (pp *Passer) Record() *record.PruningPassRecord { return pp.rec }

// solve fits weighted least squares over the given term indices
// (evaluated as design-matrix columns against X) and returns the
// coefficient vector and the resulting weighted RSS.
func (pp *Passer) solve(activeIdx []int) (coef []float64, rss float64, err error) {
	m := pp.X.Rows()
	k := len(activeIdx)
	cols := make([][]float64, k)
	for j, idx := range activeIdx {
		cols[j], err = pp.basis.EvaluateColumn(idx, pp.X)
		if err != nil {
			return nil, 0, err
		}
	}

	design, err := mat.NewDense(m, k)
	if err != nil {
		return nil, 0, fmt.Errorf("pruning.solve: %w", err)
	}
	for j := 0; j < k; j++ {
		for i := 0; i < m; i++ {
			if err := design.Set(i, j, cols[j][i]); err != nil {
				return nil, 0, fmt.Errorf("pruning.solve: %w", err)
			}
		}
	}
	// design.Gonum() hands us an independent copy, safe to scale in place
	// without aliasing the original column evaluations.
	bw := design.Gonum()
	yw := gmat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		sw := math.Sqrt(pp.w[i])
		yw.SetVec(i, sw*pp.y[i])
		for j := 0; j < k; j++ {
			bw.Set(i, j, sw*bw.At(i, j))
		}
	}

	var coefVec gmat.VecDense
	if err := coefVec.SolveVec(bw, yw); err != nil {
		return nil, 0, fmt.Errorf("pruning.solve: %w: %v", ErrSolveFailed, err)
	}
	coef = make([]float64, k)
	for j := 0; j < k; j++ {
		coef[j] = coefVec.AtVec(j)
	}

	for i := 0; i < m; i++ {
		var yhat float64
		for j := 0; j < k; j++ {
			yhat += coef[j] * cols[j][i]
		}
		d := pp.y[i] - yhat
		rss += pp.w[i] * d * d
	}

	return coef, rss, nil
}

// Run performs backward elimination: at each step it removes the
// unpruned, non-root term whose removal yields the smallest RSS
// increase, records the step, and tracks the minimum-GCV step across
// the whole trace (including the initial, unpruned state). It leaves
// the basis's pruned flags set to reflect the selected model.
func (pp *Passer) Run() error {
	m := pp.X.Rows()
	active := append([]int(nil), pp.basis.PIter()...)
	removable := make([]int, 0, len(active))
	for _, idx := range active {
		if idx != 0 {
			removable = append(removable, idx)
		}
	}
	if len(removable) == 0 {
		return ErrEmptyBasis
	}

	_, rss0, err := pp.solve(active)
	if err != nil {
		return err
	}
	rss0Intercept := pp.interceptOnlyRSS()
	gcv0 := gcv.GCV(rss0Intercept, 1, m, pp.penalty)

	gcvVal := gcv.GCV(rss0, len(active), m, pp.penalty)
	pp.rec.Append(record.PruningEntry{
		RSS: rss0, GCV: gcvVal,
		RSQ: gcv.RSQ(rss0, rss0Intercept), GRSQ: gcv.GRSQ(gcvVal, gcv0),
		Removed: -1,
	})
	bestStep := 0
	bestGCV := gcvVal
	removalOrder := []int{-1}

	for len(removable) > 0 {
		bestCandidate := -1
		bestCandidateRSS := math.Inf(1)
		for _, cand := range removable {
			trial := without(active, cand)
			_, rss, err := pp.solve(trial)
			if err != nil {
				return err
			}
			if rss < bestCandidateRSS || (rss == bestCandidateRSS && cand < bestCandidate) {
				bestCandidateRSS = rss
				bestCandidate = cand
			}
		}

		active = without(active, bestCandidate)
		removable = without(removable, bestCandidate)
		if err := pp.basis.SetPruned(bestCandidate, true); err != nil {
			return err
		}
		removalOrder = append(removalOrder, bestCandidate)

		gcvVal = gcv.GCV(bestCandidateRSS, len(active), m, pp.penalty)
		pp.rec.Append(record.PruningEntry{
			RSS: bestCandidateRSS, GCV: gcvVal,
			RSQ: gcv.RSQ(bestCandidateRSS, rss0Intercept), GRSQ: gcv.GRSQ(gcvVal, gcv0),
			Removed: bestCandidate,
		})
		step := pp.rec.Len() - 1
		// <=, not <: later steps always have strictly fewer terms, and
		// ties break toward fewer terms.
		if gcvVal <= bestGCV {
			bestGCV = gcvVal
			bestStep = step
		}
	}

	if err := pp.rec.SetSelected(bestStep); err != nil {
		return err
	}

	// Restore every term removed after the selected step: the trace
	// kept eliminating past the optimum to explore the full path.
	for _, idx := range removalOrder[bestStep+1:] {
		if err := pp.basis.SetPruned(idx, false); err != nil {
			return err
		}
	}
	pp.finalActive = append([]int(nil), pp.basis.PIter()...)

	return nil
}

// Coefficients returns the least-squares coefficient vector over the
// selected model's surviving columns, in PIter() order. Run must have
// completed successfully first.
func (pp *Passer) Coefficients() ([]float64, error) {
	if pp.finalActive == nil {
		return nil, fmt.Errorf("pruning.Coefficients: Run has not completed")
	}
	coef, _, err := pp.solve(pp.finalActive)

	return coef, err
}

// interceptOnlyRSS computes RSS0: the weighted total sum of squares
// about the weighted mean, i.e. the intercept-only model's RSS.
func (pp *Passer) interceptOnlyRSS() float64 {
	var sw, swy float64
	for i := range pp.y {
		sw += pp.w[i]
		swy += pp.w[i] * pp.y[i]
	}
	ybar := 0.0
	if sw > 0 {
		ybar = swy / sw
	}
	var rss float64
	for i := range pp.y {
		d := pp.y[i] - ybar
		rss += pp.w[i] * d * d
	}

	return rss
}

// without returns a copy of s with value v removed (s is assumed to
// contain v at most once).
func without(s []int, v int) []int {
	out := make([]int, 0, len(s))
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}

	return out
}
