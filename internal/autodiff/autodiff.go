// Package autodiff provides reverse-mode automatic differentiation via a
// gradient tape and a decorator backend.
//
// AutodiffBackend wraps any tensor.Backend and records every differentiable
// operation on a GradientTape while recording is enabled. Calling Backward on
// the tape walks the recorded operations in reverse and accumulates gradients
// for every tensor that participated in the computation.
package autodiff

import (
	"github.com/painterly-ml/painterly/internal/autodiff/ops"
	"github.com/painterly-ml/painterly/internal/tensor"
)

// AutodiffBackend decorates a tensor.Backend with gradient tape recording.
// All operations delegate to the wrapped backend; when the tape is recording,
// the corresponding operation node is appended to it.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates an AutodiffBackend wrapping the given backend.
// The tape starts out not recording.
func New[B tensor.Backend](inner B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: inner,
		tape:  NewGradientTape(),
	}
}

// Inner returns the wrapped backend.
func (ad *AutodiffBackend[B]) Inner() B { return ad.inner }

// GetTape returns the gradient tape.
func (ad *AutodiffBackend[B]) GetTape() *GradientTape { return ad.tape }

// Name returns the backend name, marking it as autodiff-enabled.
func (ad *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + ad.inner.Name() + ")"
}

// Add performs element-wise addition, recording the operation.
func (ad *AutodiffBackend[B]) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := ad.inner.Add(a, b)
	ad.tape.Record(ops.NewAddOp(a, b, result))
	return result
}

// Sub performs element-wise subtraction, recording the operation.
func (ad *AutodiffBackend[B]) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := ad.inner.Sub(a, b)
	ad.tape.Record(ops.NewSubOp(a, b, result))
	return result
}

// Mul performs element-wise multiplication, recording the operation.
func (ad *AutodiffBackend[B]) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := ad.inner.Mul(a, b)
	ad.tape.Record(ops.NewMulOp(a, b, result))
	return result
}

// Scale multiplies every element by a scalar, recording the operation.
func (ad *AutodiffBackend[B]) Scale(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	result := ad.inner.Scale(x, s)
	ad.tape.Record(ops.NewScaleOp(x, result, s))
	return result
}

// MatMul performs matrix multiplication, recording the operation.
func (ad *AutodiffBackend[B]) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := ad.inner.MatMul(a, b)
	ad.tape.Record(ops.NewMatMulOp(a, b, result))
	return result
}

// Reshape changes the tensor shape, recording the operation.
func (ad *AutodiffBackend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result := ad.inner.Reshape(t, newShape)
	ad.tape.Record(ops.NewReshapeOp(t, result))
	return result
}

// Transpose permutes tensor axes, recording the operation.
func (ad *AutodiffBackend[B]) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	result := ad.inner.Transpose(t, axes...)
	ad.tape.Record(ops.NewTransposeOp(t, result, axes))
	return result
}

// Mean reduces the tensor to its mean, recording the operation.
func (ad *AutodiffBackend[B]) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := ad.inner.Mean(x)
	ad.tape.Record(ops.NewMeanOp(x, result))
	return result
}

// ReLU applies the rectified linear unit, recording the operation.
func (ad *AutodiffBackend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := ad.inner.ReLU(x)
	ad.tape.Record(ops.NewReLUOp(x, result))
	return result
}

// Conv2D performs a 2D convolution, recording the operation.
func (ad *AutodiffBackend[B]) Conv2D(input, kernel, bias *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	result := ad.inner.Conv2D(input, kernel, bias, stride, padding)
	ad.tape.Record(ops.NewConv2DOp(input, kernel, bias, result, stride, padding))
	return result
}

// Conv2DInputBackward is a gradient kernel; it is never recorded.
func (ad *AutodiffBackend[B]) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return ad.inner.Conv2DInputBackward(input, kernel, grad, stride, padding)
}

// MaxPool2D performs 2D max pooling, recording the operation.
// The op constructor captures max positions, which is only worth paying for
// while the tape is recording.
func (ad *AutodiffBackend[B]) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	result := ad.inner.MaxPool2D(input, kernelSize, stride)
	if ad.tape.IsRecording() {
		ad.tape.Record(ops.NewMaxPool2DOp(input, result, kernelSize, stride))
	}
	return result
}

// MaxPool2DBackward is a gradient kernel; it is never recorded.
func (ad *AutodiffBackend[B]) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *tensor.RawTensor {
	return ad.inner.MaxPool2DBackward(input, grad, maxIndices, kernelSize, stride)
}
