package basis

import (
	"fmt"

	"github.com/katalvlaran/mars/mat"
)

// Basis is the ordered, append-only collection of Term values produced
// by the forward pass and logically pruned by the pruning pass. Index 0
// is always the Constant root. For every non-root term, the parent
// appears at an earlier index (enforced on Append).
type Basis struct {
	terms        []Term
	numVariables int
	maxDegree    int
	xlabels      []string
}

// New constructs a Basis seeded with the unique Constant root.
// numVariables fixes n for the lifetime of the Basis; maxDegree bounds
// every appended term's Degree(). xlabels, if non-nil, must have length
// numVariables and supplies presentation labels; a nil slice disables
// labeling (Label() returns "").
func New(numVariables, maxDegree int, xlabels []string) (*Basis, error) {
	if numVariables <= 0 {
		return nil, fmt.Errorf("basis.New: numVariables=%d: %w", numVariables, ErrFeatureOutOfRange)
	}
	if maxDegree <= 0 {
		return nil, fmt.Errorf("basis.New: maxDegree=%d: %w", maxDegree, ErrDegreeExceeded)
	}
	if xlabels != nil && len(xlabels) != numVariables {
		return nil, fmt.Errorf("basis.New: xlabels length %d, want %d: %w", len(xlabels), numVariables, ErrFeatureOutOfRange)
	}

	b := &Basis{
		numVariables: numVariables,
		maxDegree:    maxDegree,
		xlabels:      xlabels,
	}
	b.terms = append(b.terms, Term{kind: Constant, parent: -1, feature: -1, degree: 0})

	return b, nil
}

// NumVariables returns n, fixed at construction.
func (b *Basis) NumVariables() int { return b.numVariables }

// MaxDegree returns the degree bound enforced on Append.
func (b *Basis) MaxDegree() int { return b.maxDegree }

// Len returns the total number of terms, pruned or not.
func (b *Basis) Len() int { return len(b.terms) }

// PLen returns the number of unpruned ("selected") terms.
func (b *Basis) PLen() int {
	n := 0
	for i := range b.terms {
		if !b.terms[i].pruned {
			n++
		}
	}

	return n
}

// PIter returns the indices of unpruned terms in insertion order.
func (b *Basis) PIter() []int {
	out := make([]int, 0, len(b.terms))
	for i := range b.terms {
		if !b.terms[i].pruned {
			out = append(out, i)
		}
	}

	return out
}

// Term returns a copy of the term at index i.
func (b *Basis) Term(i int) (Term, error) {
	if i < 0 || i >= len(b.terms) {
		return Term{}, fmt.Errorf("Basis.Term(%d): %w", i, ErrIndexOutOfRange)
	}

	return b.terms[i], nil
}

// CoveredFeatures returns the set of feature indices along the root path
// of term i, inclusive of i's own feature if it has one.
func (b *Basis) CoveredFeatures(i int) (map[int]bool, error) {
	if i < 0 || i >= len(b.terms) {
		return nil, fmt.Errorf("Basis.CoveredFeatures(%d): %w", i, ErrIndexOutOfRange)
	}
	covered := make(map[int]bool)
	for cur := i; cur != -1; cur = b.terms[cur].parent {
		if b.terms[cur].feature >= 0 {
			covered[b.terms[cur].feature] = true
		}
	}

	return covered, nil
}

// SetPruned flags term i as pruned or unpruned. The Constant root
// (index 0) can never be pruned.
func (b *Basis) SetPruned(i int, pruned bool) error {
	if i < 0 || i >= len(b.terms) {
		return fmt.Errorf("Basis.SetPruned(%d): %w", i, ErrIndexOutOfRange)
	}
	if i == 0 && pruned {
		return ErrPruneRoot
	}
	b.terms[i].pruned = pruned

	return nil
}

// validateChild checks the shared append-time invariants: parent index
// in range and unpruned, degree within bound, feature not already
// covered by an ancestor.
func (b *Basis) validateChild(parent, feature int) (degree int, err error) {
	if parent < 0 || parent >= len(b.terms) {
		return 0, fmt.Errorf("Basis: parent=%d: %w", parent, ErrInvalidParent)
	}
	if b.terms[parent].pruned {
		return 0, fmt.Errorf("Basis: parent=%d is pruned: %w", parent, ErrInvalidParent)
	}
	if feature < 0 || feature >= b.numVariables {
		return 0, fmt.Errorf("Basis: feature=%d: %w", feature, ErrFeatureOutOfRange)
	}
	covered, _ := b.CoveredFeatures(parent)
	if covered[feature] {
		return 0, fmt.Errorf("Basis: feature=%d already covered by parent=%d: %w", feature, parent, ErrFeatureCovered)
	}
	degree = b.terms[parent].degree + 1
	if degree > b.maxDegree {
		return 0, fmt.Errorf("Basis: degree=%d exceeds max_degree=%d: %w", degree, b.maxDegree, ErrDegreeExceeded)
	}

	return degree, nil
}

func (b *Basis) labelFor(feature int) string {
	if b.xlabels == nil {
		return ""
	}

	return b.xlabels[feature]
}

// AppendLinear appends a single knotless Linear(parent, feature) term
// and returns its index.
func (b *Basis) AppendLinear(parent, feature int) (int, error) {
	degree, err := b.validateChild(parent, feature)
	if err != nil {
		return 0, fmt.Errorf("Basis.AppendLinear: %w", err)
	}
	idx := len(b.terms)
	b.terms = append(b.terms, Term{
		kind:    Linear,
		parent:  parent,
		feature: feature,
		degree:  degree,
		label:   b.labelFor(feature),
	})

	return idx, nil
}

// AppendHinge appends a single Hinge(parent, feature, knot, reverse) term
// and returns its index. Used directly for the fast-path where a mirror
// partner was rejected as collinear (see AppendHingePair).
func (b *Basis) AppendHinge(parent, feature int, knot float64, reverse bool) (int, error) {
	degree, err := b.validateChild(parent, feature)
	if err != nil {
		return 0, fmt.Errorf("Basis.AppendHinge: %w", err)
	}
	idx := len(b.terms)
	b.terms = append(b.terms, Term{
		kind: Hinge, parent: parent, feature: feature, knot: knot,
		reverse: reverse, degree: degree, label: b.labelFor(feature),
	})

	return idx, nil
}

// AppendHingePair appends a mirror pair of Hinge(parent, feature, knot, +)
// and Hinge(parent, feature, knot, -) terms at consecutive indices (1 and
// 2 for a pair appended right after the Constant root), and returns both
// indices.
func (b *Basis) AppendHingePair(parent, feature int, knot float64) (plus, minus int, err error) {
	plus, err = b.AppendHinge(parent, feature, knot, false)
	if err != nil {
		return 0, 0, fmt.Errorf("Basis.AppendHingePair: %w", err)
	}
	minus, err = b.AppendHinge(parent, feature, knot, true)
	if err != nil {
		return 0, 0, fmt.Errorf("Basis.AppendHingePair: %w", err)
	}

	return plus, minus, nil
}

// Mirror returns a copy of the Hinge term at index i with the opposite
// orientation. It does not mutate or append to the Basis.
func (b *Basis) Mirror(i int) (Term, error) {
	t, err := b.Term(i)
	if err != nil {
		return Term{}, err
	}
	if t.kind != Hinge {
		return Term{}, fmt.Errorf("Basis.Mirror(%d): %w", i, ErrNotHinge)
	}
	t.reverse = !t.reverse

	return t, nil
}

// Evaluate computes the value of term i at a single sample row. The
// recursion short-circuits: once any ancestor factor evaluates to 0,
// the product is 0 regardless of remaining factors.
func (b *Basis) Evaluate(i int, xRow []float64) (float64, error) {
	if len(xRow) != b.numVariables {
		return 0, ErrRowLength
	}
	if i < 0 || i >= len(b.terms) {
		return 0, fmt.Errorf("Basis.Evaluate(%d): %w", i, ErrIndexOutOfRange)
	}

	return b.evaluate(i, xRow)
}

func (b *Basis) evaluate(i int, xRow []float64) (float64, error) {
	t := b.terms[i]
	if t.kind == Constant {
		return 1, nil
	}
	parentVal, err := b.evaluate(t.parent, xRow)
	if err != nil {
		return 0, err
	}
	if parentVal == 0 {
		return 0, nil // short-circuit: product is 0 regardless of this factor
	}
	x := xRow[t.feature]
	switch t.kind {
	case Linear:
		return parentVal * x, nil
	case Hinge:
		h := t.Sign() * (x - t.knot)
		if h < 0 {
			h = 0
		}

		return parentVal * h, nil
	default:
		return 0, fmt.Errorf("Basis.evaluate: unknown kind %v", t.kind)
	}
}

// EvaluateColumn computes the value of term i across every row of X,
// returning a length-X.Rows() slice.
func (b *Basis) EvaluateColumn(i int, X *mat.Dense) ([]float64, error) {
	if i < 0 || i >= len(b.terms) {
		return nil, fmt.Errorf("Basis.EvaluateColumn(%d): %w", i, ErrIndexOutOfRange)
	}
	m := X.Rows()
	out := make([]float64, m)
	row := make([]float64, b.numVariables)
	for r := 0; r < m; r++ {
		for c := 0; c < b.numVariables; c++ {
			v, err := X.At(r, c)
			if err != nil {
				return nil, err
			}
			row[c] = v
		}
		val, err := b.evaluate(i, row)
		if err != nil {
			return nil, err
		}
		out[r] = val
	}

	return out, nil
}

// Transform fills an m x PLen() matrix with the evaluations of every
// unpruned term, in insertion order. Column j of the output is the
// evaluation of the j-th unpruned term.
func (b *Basis) Transform(X *mat.Dense) (*mat.Dense, error) {
	unpruned := b.PIter()
	out, err := mat.NewDense(X.Rows(), len(unpruned))
	if err != nil {
		return nil, fmt.Errorf("Basis.Transform: %w", err)
	}
	for j, idx := range unpruned {
		col, err := b.EvaluateColumn(idx, X)
		if err != nil {
			return nil, fmt.Errorf("Basis.Transform: %w", err)
		}
		for r, v := range col {
			if err := out.Set(r, j, v); err != nil {
				return nil, fmt.Errorf("Basis.Transform: %w", err)
			}
		}
	}

	return out, nil
}
