package basis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/mars/mat"
)

func newTestBasis(t *testing.T) *Basis {
	t.Helper()
	b, err := New(2, 2, []string{"x0", "x1"})
	require.NoError(t, err)

	return b
}

func TestNewSeedsConstantRoot(t *testing.T) {
	b := newTestBasis(t)
	assert.Equal(t, 1, b.Len())
	term, err := b.Term(0)
	require.NoError(t, err)
	assert.Equal(t, Constant, term.Kind())
	assert.False(t, term.IsPruned())
}

func TestNewRejectsInvalidShape(t *testing.T) {
	_, err := New(0, 1, nil)
	assert.ErrorIs(t, err, ErrFeatureOutOfRange)
	_, err = New(1, 0, nil)
	assert.ErrorIs(t, err, ErrDegreeExceeded)
	_, err = New(2, 1, []string{"only-one"})
	assert.ErrorIs(t, err, ErrFeatureOutOfRange)
}

func TestAppendHingePairConsecutiveIndices(t *testing.T) {
	b := newTestBasis(t)
	plus, minus, err := b.AppendHingePair(0, 0, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, plus)
	assert.Equal(t, 2, minus)

	pt, _ := b.Term(plus)
	mt, _ := b.Term(minus)
	assert.Equal(t, 1.0, pt.Sign())
	assert.Equal(t, -1.0, mt.Sign())
}

func TestAppendRejectsCoveredFeature(t *testing.T) {
	b := newTestBasis(t)
	idx, err := b.AppendLinear(0, 0)
	require.NoError(t, err)
	_, err = b.AppendLinear(idx, 0)
	assert.ErrorIs(t, err, ErrFeatureCovered)
}

func TestAppendRejectsDegreeExceeded(t *testing.T) {
	b, err := New(2, 1, nil)
	require.NoError(t, err)
	idx, err := b.AppendLinear(0, 0)
	require.NoError(t, err)
	_, err = b.AppendLinear(idx, 1)
	assert.ErrorIs(t, err, ErrDegreeExceeded)
}

func TestAppendRejectsPrunedParent(t *testing.T) {
	b := newTestBasis(t)
	idx, err := b.AppendLinear(0, 0)
	require.NoError(t, err)
	require.NoError(t, b.SetPruned(idx, true))
	_, err = b.AppendLinear(idx, 1)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestSetPrunedRejectsRoot(t *testing.T) {
	b := newTestBasis(t)
	assert.ErrorIs(t, b.SetPruned(0, true), ErrPruneRoot)
}

func TestMirrorFlipsOrientation(t *testing.T) {
	b := newTestBasis(t)
	plus, _, err := b.AppendHingePair(0, 0, 1.0)
	require.NoError(t, err)
	mirrored, err := b.Mirror(plus)
	require.NoError(t, err)
	assert.True(t, mirrored.Reverse())

	linIdx, err := b.AppendLinear(0, 1)
	require.NoError(t, err)
	_, err = b.Mirror(linIdx)
	assert.ErrorIs(t, err, ErrNotHinge)
}

func TestEvaluateHingeShortCircuits(t *testing.T) {
	b := newTestBasis(t)
	h1, err := b.AppendHinge(0, 0, 0.5, false) // max(0, x0-0.5)
	require.NoError(t, err)
	h2, err := b.AppendHinge(h1, 1, 0.0, false) // h1 * max(0, x1)
	require.NoError(t, err)

	// x0 below the knot: h1 is 0, so h2 must short-circuit to 0
	// regardless of x1.
	v, err := b.Evaluate(h2, []float64{0.1, 100})
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	// x0 above the knot and x1 positive: product of both hinge values.
	v, err = b.Evaluate(h2, []float64{1.0, 2.0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5*2.0, v, 1e-12)
}

func TestEvaluateRejectsWrongRowLength(t *testing.T) {
	b := newTestBasis(t)
	_, err := b.Evaluate(0, []float64{1})
	assert.ErrorIs(t, err, ErrRowLength)
}

func TestTransformRespectsPruning(t *testing.T) {
	b := newTestBasis(t)
	idx, err := b.AppendLinear(0, 0)
	require.NoError(t, err)
	require.NoError(t, b.SetPruned(idx, true))

	X, err := mat.NewDenseFromRows([][]float64{{2, 3}, {4, 5}})
	require.NoError(t, err)
	out, err := b.Transform(X)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Cols(), "pruned term must not appear in Transform's output")
	v, err := out.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "surviving column is the Constant term")
}

func TestCoveredFeatures(t *testing.T) {
	b := newTestBasis(t)
	idx, err := b.AppendLinear(0, 0)
	require.NoError(t, err)
	covered, err := b.CoveredFeatures(idx)
	require.NoError(t, err)
	assert.True(t, covered[0])
	assert.False(t, covered[1])
}
