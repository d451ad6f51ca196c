package orth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/mars/mat"
)

func TestNewRejectsShapeMismatch(t *testing.T) {
	_, err := New([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestNewRejectsNegativeWeight(t *testing.T) {
	_, err := New([]float64{1, -1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrNegativeWeight)
}

func TestAppendOrthonormalAndRSS(t *testing.T) {
	w := []float64{1, 1, 1, 1}
	y := []float64{1, 2, 3, 5}
	u, err := New(w, y)
	require.NoError(t, err)

	ones := []float64{1, 1, 1, 1}
	idx, accepted, err := u.Append(ones)
	require.NoError(t, err)
	require.True(t, accepted)
	assert.Equal(t, 0, idx)

	xs := []float64{1, 2, 3, 4}
	_, accepted, err = u.Append(xs)
	require.NoError(t, err)
	require.True(t, accepted)

	assert.InDelta(t, 1.0, weightedDot(w, u.Column(0), u.Column(0)), 1e-12)
	assert.InDelta(t, 1.0, weightedDot(w, u.Column(1), u.Column(1)), 1e-12)
	assert.InDelta(t, 0.0, weightedDot(w, u.Column(0), u.Column(1)), 1e-12)
	assert.GreaterOrEqual(t, u.RSS(), 0.0)
	assert.Less(t, u.RSS(), u.totalYY, "adding predictive columns should reduce RSS below the total")
}

func TestAppendRejectsCollinearColumn(t *testing.T) {
	w := []float64{1, 1, 1}
	y := []float64{1, 2, 3}
	u, err := New(w, y)
	require.NoError(t, err)

	_, accepted, err := u.Append([]float64{1, 1, 1})
	require.NoError(t, err)
	require.True(t, accepted)

	_, accepted, err = u.Append([]float64{2, 2, 2}) // exact multiple of column 0
	require.NoError(t, err)
	assert.False(t, accepted, "a column collinear with the existing basis must be rejected")
}

func TestTrialProjectionDoesNotMutate(t *testing.T) {
	w := []float64{1, 1, 1}
	y := []float64{1, 2, 3}
	u, err := New(w, y)
	require.NoError(t, err)

	_, _, err = u.TrialProjection([]float64{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, u.NumColumns(), "TrialProjection must not append")
}

func TestQTYCachedAtAppend(t *testing.T) {
	w := []float64{1, 1, 1}
	y := []float64{2, 4, 6}
	u, err := New(w, y)
	require.NoError(t, err)
	_, _, err = u.Append([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, weightedDot(w, u.Column(0), y), u.QTY(0), 1e-12)
}

// TestAppendAgreesWithBatchQR cross-checks the incrementally-maintained
// RSS against an independent batch Householder QR least-squares
// residual, for an unweighted design.
func TestAppendAgreesWithBatchQR(t *testing.T) {
	w := []float64{1, 1, 1, 1, 1}
	y := []float64{1, 3, 2, 5, 4}
	x := []float64{0, 1, 2, 3, 4}

	u, err := New(w, y)
	require.NoError(t, err)
	_, accepted, err := u.Append([]float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	require.True(t, accepted)
	_, accepted, err = u.Append(x)
	require.NoError(t, err)
	require.True(t, accepted)
	incrementalRSS := u.RSS()

	A, err := mat.NewDenseFromRows([][]float64{
		{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4},
	})
	require.NoError(t, err)
	q, r, err := mat.QR(A)
	require.NoError(t, err)

	// Solve R*beta = Q^T*y by back-substitution, then compute batch RSS.
	qty := make([]float64, 2)
	for j := 0; j < 2; j++ {
		var s float64
		for i := 0; i < 5; i++ {
			qv, _ := q.At(i, j)
			s += qv * y[i]
		}
		qty[j] = s
	}
	beta := make([]float64, 2)
	for j := 1; j >= 0; j-- {
		s := qty[j]
		for k := j + 1; k < 2; k++ {
			rv, _ := r.At(j, k)
			s -= rv * beta[k]
		}
		rv, _ := r.At(j, j)
		beta[j] = s / rv
	}
	var batchRSS float64
	for i := 0; i < 5; i++ {
		yhat := beta[0] + beta[1]*x[i]
		d := y[i] - yhat
		batchRSS += d * d
	}

	assert.InDelta(t, batchRSS, incrementalRSS, 1e-6)
	assert.False(t, math.IsNaN(incrementalRSS))
}
