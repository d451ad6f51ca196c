package mars

import "errors"

// ErrInvalidInput indicates the training data itself is malformed: shape
// mismatches between X, y and w, non-finite values, or negative weights.
var ErrInvalidInput = errors.New("mars: invalid input")

// ErrInvalidConfig indicates an Options value failed validation, e.g. a
// non-positive max_terms or an unresolvable linvars entry.
var ErrInvalidConfig = errors.New("mars: invalid config")

// ErrDegenerateFit is not returned by Fit under normal operation: a data
// set for which the forward pass cannot improve on the intercept-only
// model still produces a valid (Constant-only) Result, reported via its
// ForwardPassRecord's NoImprovement stopping condition rather than as an
// error. It is declared here for callers that want a named sentinel to
// check the returned Result against, via Result.IsDegenerate.
var ErrDegenerateFit = errors.New("mars: fit is degenerate (constant-only model)")
