// Package mars implements the core of a Multivariate Adaptive Regression
// Splines (MARS) fitting engine: a supervised regression method that
// approximates a real-valued response as a weighted sum of products of
// univariate hinge functions, discovered in two passes (Friedman, 1991):
//
//	forward  — greedy construction of an over-fit basis, one
//	           reflected hinge pair (or knotless linear term) at a
//	           time, via an incrementally-maintained weighted QR;
//	pruning  — backward elimination over that basis, selecting the
//	           subset with the lowest generalized cross-validation
//	           score.
//
// Fit wires the two passes together and re-solves the final coefficients
// over the selected columns. Its subpackages factor the algorithm into
// independently-testable pieces:
//
//	mat/      — minimal dense-matrix type used at package boundaries
//	basis/    — the term algebra: Constant/Linear/Hinge and their
//	            evaluation against a design matrix
//	orth/     — incremental weighted QR via two-pass modified
//	            Gram-Schmidt
//	knot/     — O(m·k) running-sufficient-statistics knot search
//	gcv/      — generalized cross-validation and R² bookkeeping
//	record/   — forward- and pruning-pass iteration traces
//	forward/  — the forward pass
//	pruning/  — the pruning pass
//
// Out of scope: the user-facing estimator facade (fit/predict/score/
// transform wrappers around tabular inputs), serialization, textual
// summary rendering, and scoring-code generation. Those are external
// collaborators; this package's contract with them is Fit's signature
// and the Basis/record types it returns.
package mars
