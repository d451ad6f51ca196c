package pruning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/mars/basis"
	"github.com/katalvlaran/mars/mat"
)

// buildOverfitBasis constructs a Basis with a useful linear term and a
// useless (noise) linear term over two features.
func buildOverfitBasis(t *testing.T) (*basis.Basis, *mat.Dense, []float64, []float64) {
	t.Helper()
	b, err := basis.New(2, 1, nil)
	require.NoError(t, err)
	_, err = b.AppendLinear(0, 0)
	require.NoError(t, err)
	_, err = b.AppendLinear(0, 1)
	require.NoError(t, err)

	m := 30
	rows := make([][]float64, m)
	y := make([]float64, m)
	w := make([]float64, m)
	for i := 0; i < m; i++ {
		noise := float64(i%5) - 2 // small, uncorrelated-ish wobble, not true noise
		rows[i] = []float64{float64(i), noise}
		y[i] = 3*float64(i) + 1
		w[i] = 1
	}
	X, err := mat.NewDenseFromRows(rows)
	require.NoError(t, err)

	return b, X, y, w
}

func TestRunPrunesUselessTerm(t *testing.T) {
	b, X, y, w := buildOverfitBasis(t)
	pp := New(b, X, y, w, 3.0)
	require.NoError(t, pp.Run())

	active := b.PIter()
	foundUseless := false
	for _, idx := range active {
		term, err := b.Term(idx)
		require.NoError(t, err)
		if term.Feature() == 1 {
			foundUseless = true
		}
	}
	assert.False(t, foundUseless, "the uninformative feature-1 term should have been pruned")
	assert.Greater(t, pp.Record().Len(), 1)
	assert.GreaterOrEqual(t, pp.Record().Selected(), 0)
}

func TestCoefficientsRequiresRun(t *testing.T) {
	b, X, y, w := buildOverfitBasis(t)
	pp := New(b, X, y, w, 3.0)
	_, err := pp.Coefficients()
	assert.Error(t, err)
}

func TestRunRejectsEmptyBasis(t *testing.T) {
	b, err := basis.New(1, 1, nil)
	require.NoError(t, err)
	X, err := mat.NewDenseFromRows([][]float64{{1}, {2}, {3}})
	require.NoError(t, err)
	pp := New(b, X, []float64{1, 2, 3}, []float64{1, 1, 1}, 3.0)
	assert.ErrorIs(t, pp.Run(), ErrEmptyBasis)
}

func TestCoefficientsAfterRun(t *testing.T) {
	b, X, y, w := buildOverfitBasis(t)
	pp := New(b, X, y, w, 3.0)
	require.NoError(t, pp.Run())
	coef, err := pp.Coefficients()
	require.NoError(t, err)
	assert.Equal(t, len(b.PIter()), len(coef))
}
