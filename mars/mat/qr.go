package mat

import (
	"fmt"
	"math"
)

// QR computes a reduced QR decomposition m = Q×R for a tall (or square)
// m.Rows() >= m.Cols() matrix, using Householder reflections. Q has
// orthonormal columns (Rows() x Cols()) and R is upper triangular
// (Cols() x Cols()), so that for every row i, m[i,:] = Q[i,:] * R.
//
// This is a batch, non-incremental decomposition: it exists to
// cross-check orth.Updater's incrementally-maintained weighted QR
// against an independent computation, not to run in the forward pass's
// hot loop (which appends one column at a time and cannot afford an
// O(m*n^2) full recomputation per candidate).
//
// Stage 1 (Validate): require Rows() >= Cols() >= 1.
// Stage 2 (Prepare): clone m into a working copy R, seed the Q
// accumulator as the Rows()xRows() identity.
// Stage 3 (Reflect): for each pivot column k, build the Householder
// vector that zeros R[k+1:,k], apply it to R and to Q.
// Complexity: O(m*n^2) time, O(m*n) memory.
func QR(m *Dense) (q, r *Dense, err error) {
	rows, cols := m.Rows(), m.Cols()
	if cols < 1 || rows < cols {
		return nil, nil, fmt.Errorf("QR: shape %dx%d needs rows >= cols >= 1: %w", rows, cols, ErrInvalidDimensions)
	}

	a := m.Clone()
	qFull, err := NewDense(rows, rows)
	if err != nil {
		return nil, nil, fmt.Errorf("QR: %w", err)
	}
	for i := 0; i < rows; i++ {
		_ = qFull.Set(i, i, 1.0)
	}
	v := make([]float64, rows)

	for k := 0; k < cols; k++ {
		// 3.1: norm of the trailing part of column k
		var norm float64
		for i := k; i < rows; i++ {
			norm += a.data[i*a.c+k] * a.data[i*a.c+k]
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		// 3.2: reflection scalar, sign chosen away from the pivot to
		// avoid cancellation
		alpha := -math.Copysign(norm, a.data[k*a.c+k])

		// 3.3: Householder vector
		for i := range v {
			v[i] = 0
		}
		for i := k; i < rows; i++ {
			v[i] = a.data[i*a.c+k]
		}
		v[k] -= alpha

		var beta float64
		for i := k; i < rows; i++ {
			beta += v[i] * v[i]
		}
		if beta == 0 {
			continue
		}
		tau := 2.0 / beta

		// 3.4: apply reflection to the working matrix (builds R)
		for j := k; j < cols; j++ {
			var sum float64
			for i := k; i < rows; i++ {
				sum += v[i] * a.data[i*a.c+j]
			}
			for i := k; i < rows; i++ {
				a.data[i*a.c+j] -= tau * v[i] * sum
			}
		}

		// 3.5: apply the same reflection to Q's accumulator
		for j := 0; j < rows; j++ {
			var sum float64
			for i := k; i < rows; i++ {
				sum += v[i] * qFull.data[i*qFull.c+j]
			}
			for i := k; i < rows; i++ {
				qFull.data[i*qFull.c+j] -= tau * v[i] * sum
			}
		}
	}

	// Stage 4: Q accumulates Q^T; transpose and truncate to the first
	// cols columns, and take R's top cols x cols block.
	q, err = NewDense(rows, cols)
	if err != nil {
		return nil, nil, fmt.Errorf("QR: %w", err)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			q.data[i*q.c+j] = qFull.data[j*qFull.c+i]
		}
	}
	r, err = NewDense(cols, cols)
	if err != nil {
		return nil, nil, fmt.Errorf("QR: %w", err)
	}
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			r.data[i*r.c+j] = a.data[i*a.c+j]
		}
	}

	return q, r, nil
}
