package forward

import (
	"fmt"
	"math"

	gonumstat "gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/mars/basis"
	"github.com/katalvlaran/mars/gcv"
	"github.com/katalvlaran/mars/knot"
	"github.com/katalvlaran/mars/mat"
	"github.com/katalvlaran/mars/orth"
	"github.com/katalvlaran/mars/record"
)

// pfKey identifies a (parent, feature) pair for minspan's cross-iteration
// prior-knot bookkeeping.
type pfKey struct {
	parent  int
	feature int
}

// Passer runs the forward pass: the greedy knot-search loop that builds
// the Basis from the Constant root up to a stopping condition.
type Passer struct {
	cfg Config
	X   *mat.Dense
	w   []float64

	basis      *basis.Basis
	upd        *orth.Updater
	rec        *record.ForwardPassRecord
	priorKnots map[pfKey][]float64

	rss0 float64
	gcv0 float64
}

// New validates X, y, w and cfg and constructs a Passer seeded with the
// Constant term and the intercept-only QR column.
func New(X *mat.Dense, y, w []float64, cfg Config) (*Passer, error) {
	m, n := X.Rows(), X.Cols()
	if m == 0 || n == 0 {
		return nil, fmt.Errorf("forward.New: %w", ErrShapeMismatch)
	}
	if len(y) != m || len(w) != m {
		return nil, fmt.Errorf("forward.New: len(y)=%d len(w)=%d m=%d: %w", len(y), len(w), m, ErrShapeMismatch)
	}
	for i := 0; i < m; i++ {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("forward.New: y[%d]: %w", i, ErrNonFinite)
		}
		if math.IsNaN(w[i]) || math.IsInf(w[i], 0) {
			return nil, fmt.Errorf("forward.New: w[%d]: %w", i, ErrNonFinite)
		}
		if w[i] < 0 {
			return nil, fmt.Errorf("forward.New: w[%d]=%g: %w", i, w[i], ErrNegativeWeight)
		}
		row, err := X.Row(i)
		if err != nil {
			return nil, fmt.Errorf("forward.New: %w", err)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("forward.New: X[%d,%d]: %w", i, j, ErrNonFinite)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("forward.New: %w", err)
	}
	if cfg.LinVars != nil {
		for f := range cfg.LinVars {
			if f < 0 || f >= n {
				return nil, fmt.Errorf("forward.New: linvars references unknown feature %d: %w", f, ErrInvalidConfig)
			}
		}
	}

	b, err := basis.New(n, cfg.MaxDegree, cfg.XLabels)
	if err != nil {
		return nil, fmt.Errorf("forward.New: %w", err)
	}
	upd, err := orth.New(w, y)
	if err != nil {
		return nil, fmt.Errorf("forward.New: %w", err)
	}
	constantCol := make([]float64, m)
	for i := range constantCol {
		constantCol[i] = 1
	}
	if _, accepted, err := upd.Append(constantCol); err != nil || !accepted {
		if err != nil {
			return nil, fmt.Errorf("forward.New: %w", err)
		}

		return nil, fmt.Errorf("forward.New: constant column rejected as degenerate")
	}

	ybar := gonumstat.Mean(y, w)
	var rss0 float64
	for i := 0; i < m; i++ {
		d := y[i] - ybar
		rss0 += w[i] * d * d
	}
	gcv0 := gcv.GCV(rss0, 1, m, cfg.Penalty)

	return &Passer{
		cfg:        cfg,
		X:          X,
		w:          w,
		basis:      b,
		upd:        upd,
		rec:        record.NewForwardPassRecord(),
		priorKnots: make(map[pfKey][]float64),
		rss0:       rss0,
		gcv0:       gcv0,
	}, nil
}

// Basis returns the (unpruned) basis built so far.
func (fp *Passer) Basis() *basis.Basis { return fp.basis }

// Record returns the forward-pass iteration trace.
func (fp *Passer) Record() *record.ForwardPassRecord { return fp.rec }

// candidate is one (parent, feature) combination's chosen representative
// triple (hinge or knotless linear), after the per-combo GCV comparison.
type candidate struct {
	parent, feature int
	isLinear        bool
	knot            float64
	reduction       float64
}

// Run executes the greedy forward-pass loop until a stopping condition
// fires, populating the Basis and the ForwardPassRecord.
func (fp *Passer) Run() error {
	m := fp.X.Rows()
	n := fp.X.Cols()
	prevRSQ := 0.0

	for {
		if fp.basis.Len() >= fp.cfg.MaxTerms {
			fp.finish(record.ReachedMaxTerms, "")
			return nil
		}

		candidates, err := fp.collectCandidates(m, n)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fp.finish(record.NoImprovement, "")
			return nil
		}

		desc, committed, err := fp.commitBest(candidates)
		if err != nil {
			return err
		}
		if !committed {
			// commitBest also skips candidates that need more room than
			// max_terms leaves; if none fit, max_terms is the reason.
			reason := record.ReachedMaxTerms
			for _, cand := range candidates {
				needed := 2
				if cand.isLinear {
					needed = 1
				}
				if fp.basis.Len()+needed <= fp.cfg.MaxTerms {
					reason = record.AllCollinear
					break
				}
			}
			fp.finish(reason, "")
			return nil
		}

		rss := fp.upd.RSS()
		k := fp.basis.PLen()
		mse := rss / float64(m)
		gcvVal := gcv.GCV(rss, k, m, fp.cfg.Penalty)
		rsq := gcv.RSQ(rss, fp.rss0)
		grsq := gcv.GRSQ(gcvVal, fp.gcv0)

		stop := record.NotStopped
		switch {
		case rsq > 1-fp.cfg.Thresh:
			stop = record.ReachedMaxRSQ
		case rsq-prevRSQ < fp.cfg.Thresh:
			stop = record.RSQImprovementBelowThresh
		}
		fp.rec.Append(record.ForwardEntry{MSE: mse, GCV: gcvVal, RSQ: rsq, GRSQ: grsq, Description: desc, Stopping: stop})
		prevRSQ = rsq
		if stop != record.NotStopped {
			return nil
		}
	}
}

// finish appends a final zero-progress entry carrying the given
// stopping reason, for iterations that terminate before any metric
// update (e.g. max_terms reached with no room for a new candidate, or
// every candidate collinear).
func (fp *Passer) finish(reason record.StoppingCondition, desc string) {
	rss := fp.upd.RSS()
	k := fp.basis.PLen()
	m := fp.X.Rows()
	gcvVal := gcv.GCV(rss, k, m, fp.cfg.Penalty)
	rsq := gcv.RSQ(rss, fp.rss0)
	grsq := gcv.GRSQ(gcvVal, fp.gcv0)
	fp.rec.Append(record.ForwardEntry{MSE: rss / float64(m), GCV: gcvVal, RSQ: rsq, GRSQ: grsq, Description: desc, Stopping: reason})
}

// knotOptions builds knot.Options for the current configuration.
func (fp *Passer) knotOptions(allowLinear bool) knot.Options {
	return knot.Options{
		Endspan:         fp.cfg.Endspan,
		EndspanAlpha:    fp.cfg.EndspanAlpha,
		Minspan:         fp.cfg.Minspan,
		MinspanAlpha:    fp.cfg.MinspanAlpha,
		CheckEvery:      fp.cfg.CheckEvery,
		MinSearchPoints: fp.cfg.MinSearchPoints,
		AllowLinear:     allowLinear,
		NumVariables:    fp.X.Cols(),
	}
}

// collectCandidates runs the knot search over every eligible
// (parent, feature) combination and returns the chosen representative
// triple for each, per the per-combo GCV linear-vs-hinge comparison.
func (fp *Passer) collectCandidates(m, n int) ([]candidate, error) {
	currentRSS := fp.upd.RSS()
	k := fp.basis.PLen()
	var out []candidate

	parentCols := make(map[int][]float64)
	for parentIdx := 0; parentIdx < fp.basis.Len(); parentIdx++ {
		t, err := fp.basis.Term(parentIdx)
		if err != nil {
			return nil, err
		}
		if t.IsPruned() || t.Degree() >= fp.cfg.MaxDegree {
			continue
		}
		covered, err := fp.basis.CoveredFeatures(parentIdx)
		if err != nil {
			return nil, err
		}
		p, ok := parentCols[parentIdx]
		if !ok {
			p, err = fp.basis.EvaluateColumn(parentIdx, fp.X)
			if err != nil {
				return nil, err
			}
			parentCols[parentIdx] = p
		}

		for f := 0; f < n; f++ {
			if covered[f] {
				continue
			}
			xcol, err := fp.X.Col(f)
			if err != nil {
				return nil, err
			}

			if fp.cfg.LinVars[f] {
				u := make([]float64, m)
				for i := 0; i < m; i++ {
					u[i] = p[i] * xcol[i]
				}
				reduction, accepted, err := fp.upd.TrialProjection(u)
				if err != nil {
					return nil, err
				}
				if accepted && reduction > 0 {
					out = append(out, candidate{parent: parentIdx, feature: f, isLinear: true, reduction: reduction})
				}
				continue
			}

			result, err := knot.Search(p, xcol, fp.upd, fp.priorKnots[pfKey{parentIdx, f}], fp.knotOptions(fp.cfg.AllowLinear))
			if err != nil {
				continue // no eligible knots for this combination
			}

			switch {
			case result.HasHinge && result.HasLinear:
				gcvHinge := gcv.GCV(currentRSS-result.ReductionHinge, k+2, m, fp.cfg.Penalty)
				gcvLinear := gcv.GCV(currentRSS-result.ReductionLinear, k+1, m, fp.cfg.Penalty)
				if gcvLinear < gcvHinge {
					out = append(out, candidate{parent: parentIdx, feature: f, isLinear: true, reduction: result.ReductionLinear})
				} else {
					out = append(out, candidate{parent: parentIdx, feature: f, knot: result.Knot, reduction: result.ReductionHinge})
				}
			case result.HasHinge:
				out = append(out, candidate{parent: parentIdx, feature: f, knot: result.Knot, reduction: result.ReductionHinge})
			case result.HasLinear:
				out = append(out, candidate{parent: parentIdx, feature: f, isLinear: true, reduction: result.ReductionLinear})
			}
		}
	}

	return out, nil
}

// commitBest ranks candidates by the documented tie-break rule and
// attempts to commit each in turn (an exact Append can reject a
// candidate the fast running-sum search scored optimistically); the
// first one that actually commits wins. Candidates that need more terms
// than max_terms leaves room for are skipped without an append attempt.
// Returns committed=false if every candidate was either skipped for room
// or rejected as collinear.
func (fp *Passer) commitBest(candidates []candidate) (desc string, committed bool, err error) {
	rank(candidates)

	for _, cand := range candidates {
		needed := 1
		if !cand.isLinear {
			needed = 2
		}
		if fp.basis.Len()+needed > fp.cfg.MaxTerms {
			continue
		}

		p, err := fp.basis.EvaluateColumn(cand.parent, fp.X)
		if err != nil {
			return "", false, err
		}
		xcol, err := fp.X.Col(cand.feature)
		if err != nil {
			return "", false, err
		}
		m := len(p)

		if cand.isLinear {
			u := make([]float64, m)
			for i := 0; i < m; i++ {
				u[i] = p[i] * xcol[i]
			}
			if _, accepted, err := fp.upd.Append(u); err != nil {
				return "", false, err
			} else if accepted {
				if _, err := fp.basis.AppendLinear(cand.parent, cand.feature); err != nil {
					return "", false, err
				}

				return fmt.Sprintf("added linear term on feature %d (parent %d)", cand.feature, cand.parent), true, nil
			}
			continue
		}

		hplus := make([]float64, m)
		hminus := make([]float64, m)
		for i := 0; i < m; i++ {
			d := xcol[i] - cand.knot
			if d > 0 {
				hplus[i] = p[i] * d
			} else {
				hminus[i] = p[i] * -d
			}
		}

		_, acceptedPlus, err := fp.upd.Append(hplus)
		if err != nil {
			return "", false, err
		}
		if acceptedPlus {
			_, acceptedMinus, err := fp.upd.Append(hminus)
			if err != nil {
				return "", false, err
			}
			if acceptedMinus {
				if _, _, err := fp.basis.AppendHingePair(cand.parent, cand.feature, cand.knot); err != nil {
					return "", false, err
				}
				fp.recordKnot(cand)

				return fmt.Sprintf("added hinge pair on feature %d (parent %d) at knot %g", cand.feature, cand.parent, cand.knot), true, nil
			}
			if _, err := fp.basis.AppendHinge(cand.parent, cand.feature, cand.knot, false); err != nil {
				return "", false, err
			}
			fp.recordKnot(cand)

			return fmt.Sprintf("added hinge(+) on feature %d (parent %d) at knot %g; mirror collinear", cand.feature, cand.parent, cand.knot), true, nil
		}

		_, acceptedMinus, err := fp.upd.Append(hminus)
		if err != nil {
			return "", false, err
		}
		if acceptedMinus {
			if _, err := fp.basis.AppendHinge(cand.parent, cand.feature, cand.knot, true); err != nil {
				return "", false, err
			}
			fp.recordKnot(cand)

			return fmt.Sprintf("added hinge(-) on feature %d (parent %d) at knot %g; mirror collinear", cand.feature, cand.parent, cand.knot), true, nil
		}
		// both directions collinear: discard this candidate, try the next
	}

	return "", false, nil
}

func (fp *Passer) recordKnot(cand candidate) {
	key := pfKey{cand.parent, cand.feature}
	fp.priorKnots[key] = append(fp.priorKnots[key], cand.knot)
}

// rank sorts candidates in place by descending RSS reduction, with the
// documented tie-breaks: smaller feature index, then smaller parent
// index, then smaller knot value.
func rank(candidates []candidate) {
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && less(candidates[j], candidates[j-1]); j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
}

// less reports whether a should be ranked ahead of b (a is "better").
func less(a, b candidate) bool {
	if a.reduction != b.reduction {
		return a.reduction > b.reduction
	}
	if a.feature != b.feature {
		return a.feature < b.feature
	}
	if a.parent != b.parent {
		return a.parent < b.parent
	}

	return a.knot < b.knot
}
