// Package mat provides the bounds-checked dense matrix type used at the
// boundary of the MARS core: the caller-visible predictor matrix X, the
// transform() output, and the gonum interop point the pruning pass uses
// for its least-squares re-solves.
//
// Dense is deliberately minimal compared to a full linear-algebra
// package: internal hot loops (knot search, incremental orthogonalization)
// operate on raw []float64 slices for speed and reach for Dense only at
// package boundaries where bounds-checked access matters more than a few
// extra nanoseconds per cell.
package mat
