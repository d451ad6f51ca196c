package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardPassRecord(t *testing.T) {
	r := NewForwardPassRecord()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, NotStopped, r.StoppingCondition())

	r.Append(ForwardEntry{MSE: 1, Stopping: NotStopped})
	r.Append(ForwardEntry{MSE: 0.5, Stopping: ReachedMaxTerms})
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, ReachedMaxTerms, r.StoppingCondition())

	e, err := r.At(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, e.MSE)

	_, err = r.At(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPruningPassRecordSelection(t *testing.T) {
	r := NewPruningPassRecord()
	assert.Equal(t, -1, r.Selected())

	r.Append(PruningEntry{RSS: 10, GCV: 5, Removed: -1})
	r.Append(PruningEntry{RSS: 12, GCV: 3, Removed: 2})
	require.NoError(t, r.SetSelected(1))
	assert.Equal(t, 1, r.Selected())

	assert.ErrorIs(t, r.SetSelected(5), ErrIndexOutOfRange)
}

func TestStoppingConditionString(t *testing.T) {
	assert.Equal(t, "reached max_terms", ReachedMaxTerms.String())
	assert.Equal(t, "unknown", StoppingCondition(99).String())
}
