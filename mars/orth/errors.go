package orth

import "errors"

// ErrShapeMismatch indicates a candidate column's length does not match
// the number of samples the updater was constructed with.
var ErrShapeMismatch = errors.New("orth: column length does not match sample count")

// ErrNegativeWeight indicates a negative sample weight was supplied.
var ErrNegativeWeight = errors.New("orth: sample weights must be nonnegative")
