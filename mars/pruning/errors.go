package pruning

import "errors"

// ErrEmptyBasis indicates a basis with nothing but the Constant root was
// handed to the pruning pass; there is nothing to prune.
var ErrEmptyBasis = errors.New("pruning: basis has no removable terms")

// ErrSolveFailed indicates the weighted least-squares re-solve failed
// (e.g. a rank-deficient design matrix at some step).
var ErrSolveFailed = errors.New("pruning: least-squares re-solve failed")
