package forward

import "errors"

// ErrShapeMismatch indicates X, y and w disagree on sample count, or X
// has zero rows or columns.
var ErrShapeMismatch = errors.New("forward: shape mismatch between X, y and w")

// ErrInvalidConfig indicates a Config field is outside its documented range.
var ErrInvalidConfig = errors.New("forward: invalid configuration")

// ErrNonFinite indicates a non-finite value was found in X, y or w.
var ErrNonFinite = errors.New("forward: non-finite value in input")

// ErrNegativeWeight indicates a negative sample weight was supplied.
var ErrNegativeWeight = errors.New("forward: sample weights must be nonnegative")
