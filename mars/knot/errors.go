package knot

import "errors"

// ErrNoEligibleKnots indicates every candidate knot was excluded by the
// endspan/minspan/check_every constraints (e.g. too few active samples).
var ErrNoEligibleKnots = errors.New("knot: no eligible knot candidates")
