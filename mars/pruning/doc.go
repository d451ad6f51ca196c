// Package pruning implements the MARS pruning pass: backward
// elimination over the basis produced by the forward pass, removing at
// each step the single unpruned, non-root term whose removal yields the
// smallest RSS increase, and selecting the step with minimum GCV across
// the whole trace (including the initial, unpruned state).
//
// Each step's least-squares re-solve is an ordinary (non-incremental)
// weighted least squares over the surviving columns, via
// gonum.org/v1/gonum/mat's QR-based VecDense.SolveVec — the forward
// pass's incrementally-maintained QR is not reused here because pruning
// removes columns, which the forward pass's append-only updater cannot
// represent.
package pruning
