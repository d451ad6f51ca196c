// Package orth maintains an incremental weighted QR factorization of the
// design matrix during the forward pass: a thin Q with orthonormal
// columns under the weighted inner product <u,v> = sum(w_i * u_i * v_i).
//
// Columns are appended one at a time via modified Gram-Schmidt (two
// passes, for numerical stability, following the pattern of
// matrix/ops/qr.go's Householder reflections reshaped into an
// append-only incremental form); the updater never removes columns
// during the forward pass. Pruning is a logical flag applied afterward
// and drives a full re-solve elsewhere (see the pruning package).
package orth
