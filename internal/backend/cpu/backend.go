// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/painterly-ml/painterly/internal/parallel"
	"github.com/painterly-ml/painterly/internal/tensor"
)

// CPUBackend implements tensor operations on the CPU. The convolution
// kernels split their work across goroutines per the parallel config.
type CPUBackend struct {
	par parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return &CPUBackend{par: parallel.DefaultConfig()}
}

// NewSequential creates a CPU backend that never spawns goroutines.
// Useful for profiling and for deterministic benchmarks.
func NewSequential() *CPUBackend {
	return &CPUBackend{par: parallel.Config{}}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Add performs element-wise addition. Operands must share a shape.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := newBinaryResult("add", a, b)
	ra, rb, out := a.Data(), b.Data(), result.Data()
	for i := range out {
		out[i] = ra[i] + rb[i]
	}
	return result
}

// Sub performs element-wise subtraction. Operands must share a shape.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := newBinaryResult("sub", a, b)
	ra, rb, out := a.Data(), b.Data(), result.Data()
	for i := range out {
		out[i] = ra[i] - rb[i]
	}
	return result
}

// Mul performs element-wise multiplication. Operands must share a shape.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := newBinaryResult("mul", a, b)
	ra, rb, out := a.Data(), b.Data(), result.Data()
	for i := range out {
		out[i] = ra[i] * rb[i]
	}
	return result
}

// Scale multiplies every element by a scalar.
func (cpu *CPUBackend) Scale(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape())
	src, out := x.Data(), result.Data()
	for i := range out {
		out[i] = src[i] * s
	}
	return result
}

// Mean reduces all elements to their mean, returned as a shape-[1] tensor.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(tensor.Shape{1})
	var sum float64
	for _, v := range x.Data() {
		sum += float64(v)
	}
	result.Data()[0] = float32(sum / float64(x.NumElements()))
	return result
}

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape())
	src, out := x.Data(), result.Data()
	for i, v := range src {
		if v > 0 {
			out[i] = v
		}
	}
	return result
}

// newBinaryResult validates operand shapes and allocates the result tensor.
func newBinaryResult(op string, a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
	return tensor.MustNewRaw(a.Shape())
}
