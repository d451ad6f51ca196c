package mars

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/mars/basis"
	"github.com/katalvlaran/mars/forward"
	"github.com/katalvlaran/mars/mat"
	"github.com/katalvlaran/mars/pruning"
	"github.com/katalvlaran/mars/record"
)

// Result is Fit's complete output: the pruned basis, its coefficients,
// and both passes' iteration traces.
type Result struct {
	Basis        *basis.Basis
	Coefficients []float64 // one per basis.PIter() entry, same order
	ForwardTrace *record.ForwardPassRecord
	PruningTrace *record.PruningPassRecord
}

// IsDegenerate reports whether Fit settled on the Constant-only model: no
// forward-pass candidate improved on the intercept. This is not an error
// condition (see ErrDegenerateFit); it is the correct output for data
// with no discoverable structure under the given Options.
func (r *Result) IsDegenerate() bool {
	return r.Basis.PLen() == 1 && r.ForwardTrace.StoppingCondition() == record.NoImprovement
}

// Predict evaluates the fitted model at each row of X, which must have
// NumVariables() columns matching the training data.
func (r *Result) Predict(X *mat.Dense) ([]float64, error) {
	active := r.Basis.PIter()
	if len(active) != len(r.Coefficients) {
		return nil, fmt.Errorf("mars.Result.Predict: %d active terms but %d coefficients", len(active), len(r.Coefficients))
	}
	m := X.Rows()
	yhat := make([]float64, m)
	for i := 0; i < m; i++ {
		row, err := X.Row(i)
		if err != nil {
			return nil, fmt.Errorf("mars.Result.Predict: %w", err)
		}
		var v float64
		for j, idx := range active {
			termVal, err := r.Basis.Evaluate(idx, row)
			if err != nil {
				return nil, fmt.Errorf("mars.Result.Predict: %w", err)
			}
			v += r.Coefficients[j] * termVal
		}
		yhat[i] = v
	}

	return yhat, nil
}

// Fit runs the forward pass and the pruning pass over the training data
// X (m rows, n columns), response y and case weights w (both length m,
// w entries >= 0), and returns the selected model.
//
// Fit validates X, y, w and opts before doing any work and returns
// ErrInvalidInput or ErrInvalidConfig (wrapped with context) rather than
// panicking. A data set with no discoverable structure is not an error:
// Fit returns a Result whose IsDegenerate reports true.
func Fit(X *mat.Dense, y, w []float64, opts Options) (*Result, error) {
	if X == nil {
		return nil, fmt.Errorf("mars.Fit: nil X: %w", ErrInvalidInput)
	}
	m, n := X.Rows(), X.Cols()
	if len(y) != m {
		return nil, fmt.Errorf("mars.Fit: len(y)=%d, want %d: %w", len(y), m, ErrInvalidInput)
	}
	if w == nil {
		w = make([]float64, m)
		for i := range w {
			w[i] = 1
		}
	}
	if len(w) != m {
		return nil, fmt.Errorf("mars.Fit: len(w)=%d, want %d: %w", len(w), m, ErrInvalidInput)
	}
	for i := 0; i < m; i++ {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("mars.Fit: y[%d] is not finite: %w", i, ErrInvalidInput)
		}
		if w[i] < 0 || math.IsNaN(w[i]) || math.IsInf(w[i], 0) {
			return nil, fmt.Errorf("mars.Fit: w[%d]=%g is invalid: %w", i, w[i], ErrInvalidInput)
		}
		row, err := X.Row(i)
		if err != nil {
			return nil, fmt.Errorf("mars.Fit: %w", err)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("mars.Fit: X[%d,%d] is not finite: %w", i, j, ErrInvalidInput)
			}
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mars.Fit: %w", err)
	}
	xlabels := opts.XLabels
	if xlabels != nil && len(xlabels) != n {
		return nil, fmt.Errorf("mars.Fit: xlabels length %d, want %d: %w", len(xlabels), n, ErrInvalidConfig)
	}

	cfg, err := opts.toForwardConfig(n, xlabels)
	if err != nil {
		return nil, err
	}

	fp, err := forward.New(X, y, w, cfg)
	if err != nil {
		return nil, fmt.Errorf("mars.Fit: %w", err)
	}
	if err := fp.Run(); err != nil {
		return nil, fmt.Errorf("mars.Fit: forward pass: %w", err)
	}

	b := fp.Basis()
	pp := pruning.New(b, X, y, w, cfg.Penalty)
	var coef []float64
	if err := pp.Run(); errors.Is(err, pruning.ErrEmptyBasis) {
		// Constant-only basis: nothing to prune, and the single
		// coefficient is the weighted mean of y.
		var sw, swy float64
		for i := 0; i < m; i++ {
			sw += w[i]
			swy += w[i] * y[i]
		}
		coef = []float64{0}
		if sw > 0 {
			coef[0] = swy / sw
		}
	} else if err != nil {
		return nil, fmt.Errorf("mars.Fit: pruning pass: %w", err)
	} else if coef, err = pp.Coefficients(); err != nil {
		return nil, fmt.Errorf("mars.Fit: %w", err)
	}

	return &Result{
		Basis:        b,
		Coefficients: coef,
		ForwardTrace: fp.Record(),
		PruningTrace: pp.Record(),
	}, nil
}
