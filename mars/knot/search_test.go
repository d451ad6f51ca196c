package knot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/mars/orth"
)

func baseOptions(n int) Options {
	return Options{
		Endspan:         -1,
		EndspanAlpha:    0.05,
		Minspan:         -1,
		MinspanAlpha:    0.05,
		CheckEvery:      -1,
		MinSearchPoints: 100,
		AllowLinear:     true,
		NumVariables:    n,
	}
}

// a clean kink: y = max(0, x-3), x = 0..9, no noise. The best knot
// should land at or near 3.
func TestSearchFindsCleanKink(t *testing.T) {
	m := 10
	x := make([]float64, m)
	y := make([]float64, m)
	p := make([]float64, m)
	w := make([]float64, m)
	for i := 0; i < m; i++ {
		x[i] = float64(i)
		p[i] = 1
		w[i] = 1
		h := x[i] - 3
		if h < 0 {
			h = 0
		}
		y[i] = h
	}
	upd, err := orth.New(w, y)
	require.NoError(t, err)
	_, accepted, err := upd.Append(p)
	require.NoError(t, err)
	require.True(t, accepted)

	opts := baseOptions(1)
	opts.MinSearchPoints = 1 // don't thin such a small sweep away
	opts.Endspan = 1         // the derived endspan (7 for n=1) leaves no eligible knot among 10 values
	res, err := Search(p, x, upd, nil, opts)
	require.NoError(t, err)
	assert.True(t, res.HasHinge)
	assert.InDelta(t, 3.0, res.Knot, 1.0)
	assert.Greater(t, res.ReductionHinge, 0.0)
}

func TestSearchNoActiveRowsReturnsError(t *testing.T) {
	m := 5
	p := make([]float64, m) // all zero: no active rows
	x := make([]float64, m)
	y := make([]float64, m)
	w := make([]float64, m)
	for i := range w {
		w[i] = 1
	}
	upd, err := orth.New(w, y)
	require.NoError(t, err)
	_, err = Search(p, x, upd, nil, baseOptions(1))
	assert.ErrorIs(t, err, ErrNoEligibleKnots)
}

func TestSearchLinearAlternativeWhenNoKinkPresent(t *testing.T) {
	m := 20
	x := make([]float64, m)
	y := make([]float64, m)
	p := make([]float64, m)
	w := make([]float64, m)
	for i := 0; i < m; i++ {
		x[i] = float64(i)
		y[i] = 2*float64(i) + 1 // purely linear
		p[i] = 1
		w[i] = 1
	}
	upd, err := orth.New(w, y)
	require.NoError(t, err)
	_, accepted, err := upd.Append(p)
	require.NoError(t, err)
	require.True(t, accepted)

	opts := baseOptions(1)
	opts.MinSearchPoints = 1
	res, err := Search(p, x, upd, nil, opts)
	require.NoError(t, err)
	assert.True(t, res.HasLinear)
	assert.Greater(t, res.ReductionLinear, 0.0)
}

func TestSearchMinspanExcludesAdjacentPriorKnot(t *testing.T) {
	m := 30
	x := make([]float64, m)
	y := make([]float64, m)
	p := make([]float64, m)
	w := make([]float64, m)
	for i := 0; i < m; i++ {
		x[i] = float64(i)
		y[i] = float64(i % 3)
		p[i] = 1
		w[i] = 1
	}
	upd, err := orth.New(w, y)
	require.NoError(t, err)
	_, accepted, err := upd.Append(p)
	require.NoError(t, err)
	require.True(t, accepted)

	opts := baseOptions(1)
	opts.Endspan = 1
	opts.Minspan = 5 // excludes candidates within 5 active rows of rank(15)
	opts.AllowLinear = false
	res, err := Search(p, x, upd, []float64{15}, opts)
	require.NoError(t, err)
	assert.True(t, res.HasHinge)
	assert.False(t, res.Knot > 10 && res.Knot < 20, "knot %v should have been excluded as too close to the prior knot at 15", res.Knot)
}
