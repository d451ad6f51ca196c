// Package knot implements the MARS knot search: given a parent term and
// a candidate feature, it finds the knot (and sign) or knotless linear
// alternative that maximally reduces the weighted residual sum of
// squares of the current model, using running sufficient statistics so
// the scan costs O(m * basis_size) rather than O(m^2).
//
// The search sweeps candidate knots in decreasing order of the feature
// column, updating running sums as each data point crosses the knot
// boundary, the way the MARS core's inner loop (Friedman 1991) is
// specified: an O(basis_size) update per swept point rather than a
// fresh O(m) recompute per candidate knot.
package knot
