package ops

import "github.com/painterly-ml/painterly/internal/tensor"

// Conv2DOp records a 2D convolution for autodiff.
//
// Only the input gradient is propagated: the convolution kernels and biases
// belong to the frozen feature trunk and are never optimized, so computing
// their gradients would be wasted work on every iteration. The kernel and
// bias entries of the backward result are nil and the tape skips them.
type Conv2DOp struct {
	input   *tensor.RawTensor
	kernel  *tensor.RawTensor
	bias    *tensor.RawTensor // may be nil
	output  *tensor.RawTensor
	stride  int
	padding int
}

// NewConv2DOp creates a new Conv2D operation.
func NewConv2DOp(input, kernel, bias, output *tensor.RawTensor, stride, padding int) *Conv2DOp {
	return &Conv2DOp{
		input:   input,
		kernel:  kernel,
		bias:    bias,
		output:  output,
		stride:  stride,
		padding: padding,
	}
}

// Backward computes the gradient with respect to the convolution input.
func (op *Conv2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inputGrad := backend.Conv2DInputBackward(op.input, op.kernel, outputGrad, op.stride, op.padding)
	if op.bias == nil {
		return []*tensor.RawTensor{inputGrad, nil}
	}
	return []*tensor.RawTensor{inputGrad, nil, nil}
}

// Inputs returns the input tensors [input, kernel] or [input, kernel, bias].
func (op *Conv2DOp) Inputs() []*tensor.RawTensor {
	if op.bias == nil {
		return []*tensor.RawTensor{op.input, op.kernel}
	}
	return []*tensor.RawTensor{op.input, op.kernel, op.bias}
}

// Output returns the convolution output tensor.
func (op *Conv2DOp) Output() *tensor.RawTensor { return op.output }
