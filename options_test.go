package mars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsMatchesForwardDefaults(t *testing.T) {
	o := DefaultOptions(3)
	assert.Equal(t, 2*3+10, o.MaxTerms)
	assert.Equal(t, 1, o.MaxDegree)
	assert.Equal(t, 3.0, o.Penalty)
}

func TestOptionsValidateRejectsEmptyFeatureRef(t *testing.T) {
	o := DefaultOptions(2)
	o.LinVars = []FeatureRef{{Index: -1, Name: ""}}
	assert.ErrorIs(t, o.Validate(), ErrInvalidConfig)
}

func TestResolveFeatureRefsByName(t *testing.T) {
	labels := []string{"a", "b", "c"}
	out, err := resolveFeatureRefs([]FeatureRef{{Name: "b"}}, labels, 3)
	require.NoError(t, err)
	assert.True(t, out[1])
}

func TestResolveFeatureRefsAmbiguousName(t *testing.T) {
	labels := []string{"a", "a", "c"}
	_, err := resolveFeatureRefs([]FeatureRef{{Name: "a"}}, labels, 3)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResolveFeatureRefsByIndex(t *testing.T) {
	out, err := resolveFeatureRefs([]FeatureRef{{Index: 1}}, nil, 3)
	require.NoError(t, err)
	assert.True(t, out[1])

	_, err = resolveFeatureRefs([]FeatureRef{{Index: 9}}, nil, 3)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestToForwardConfigAppliesOverrides(t *testing.T) {
	o := DefaultOptions(2)
	o.MaxTerms = 7
	o.XLabels = []string{"x0", "x1"}
	o.LinVars = []FeatureRef{{Name: "x1"}}

	cfg, err := o.toForwardConfig(2, o.XLabels)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxTerms)
	assert.True(t, cfg.LinVars[1])
}
