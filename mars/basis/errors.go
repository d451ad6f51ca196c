package basis

import "errors"

// Sentinel errors for the basis package. Algorithms MUST return these
// rather than panic on caller-triggered conditions.
var (
	// ErrInvalidParent indicates a parent index outside [0, len(terms)) or pointing at a pruned term.
	ErrInvalidParent = errors.New("basis: invalid parent index")

	// ErrDegreeExceeded indicates the constructed term's degree exceeds the basis's max degree.
	ErrDegreeExceeded = errors.New("basis: degree exceeds max_degree")

	// ErrFeatureCovered indicates a feature already appears along the ancestor chain.
	ErrFeatureCovered = errors.New("basis: feature already covered by an ancestor")

	// ErrFeatureOutOfRange indicates a feature index outside [0, NumVariables).
	ErrFeatureOutOfRange = errors.New("basis: feature index out of range")

	// ErrIndexOutOfRange indicates a term index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("basis: term index out of range")

	// ErrPruneRoot indicates an attempt to prune the Constant root term.
	ErrPruneRoot = errors.New("basis: the constant root term cannot be pruned")

	// ErrNotHinge indicates Mirror was called on a non-Hinge term.
	ErrNotHinge = errors.New("basis: mirror is only defined for hinge terms")

	// ErrRowLength indicates an evaluate row's length does not match NumVariables.
	ErrRowLength = errors.New("basis: row length does not match number of variables")
)
