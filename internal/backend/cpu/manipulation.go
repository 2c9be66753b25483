package cpu

import (
	"fmt"

	"github.com/painterly-ml/painterly/internal/tensor"
)

// Reshape returns a tensor viewing the same data under a new shape.
// The new shape must have the same number of elements.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v to %v", t.Shape(), newShape))
	}
	return t.WithShape(newShape)
}

// Transpose permutes the dimensions of a tensor.
// If axes is empty, all dimensions are reversed.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes %v for %dD tensor", axes, ndim))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
	}

	result := tensor.MustNewRaw(outShape)
	src := t.Data()
	dst := result.Data()
	srcStrides := t.Strides()
	outStrides := outShape.ComputeStrides()

	// Walk output positions in order and gather from the permuted source
	// index. idx holds the multi-dimensional output coordinate.
	idx := make([]int, ndim)
	for flat := range dst {
		rem := flat
		srcOffset := 0
		for d := 0; d < ndim; d++ {
			idx[d] = rem / outStrides[d]
			rem %= outStrides[d]
			srcOffset += idx[d] * srcStrides[axes[d]]
		}
		dst[flat] = src[srcOffset]
	}

	return result
}
