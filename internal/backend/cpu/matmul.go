package cpu

import (
	"fmt"

	"github.com/painterly-ml/painterly/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N).
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]

	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n})
	matmulFloat32(result.Data(), a.Data(), b.Data(), m, k, n)
	return result
}

// matmulFloat32 computes C[i,j] = sum_k A[i,k] * B[k,j].
//
// Loop order (i, k, j) keeps the inner loop walking both B and C rows
// sequentially, which is considerably more cache-friendly than the
// textbook (i, j, k) order for the Gram-matrix sizes seen here.
func matmulFloat32(c, a, b []float32, m, k, n int) {
	for i := range c {
		c[i] = 0
	}

	for i := 0; i < m; i++ {
		aRow := a[i*k : (i+1)*k]
		cRow := c[i*n : (i+1)*n]
		for kIdx := 0; kIdx < k; kIdx++ {
			av := aRow[kIdx]
			if av == 0 {
				continue
			}
			bRow := b[kIdx*n : (kIdx+1)*n]
			for j := range cRow {
				cRow[j] += av * bRow[j]
			}
		}
	}
}
