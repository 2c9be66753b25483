package ops

import "github.com/painterly-ml/painterly/internal/tensor"

// ReLUOp represents a ReLU activation: output = max(0, x).
//
// Backward: d(ReLU(x))/dx = 1 if x > 0, else 0. The gradient is the output
// gradient masked by the positions where the input was positive.
type ReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: input, output: output}
}

// Backward computes the input gradient for ReLU.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := tensor.MustNewRaw(op.input.Shape())
	in := op.input.Data()
	og := outputGrad.Data()
	out := grad.Data()
	for i, v := range in {
		if v > 0 {
			out[i] = og[i]
		}
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensors [x].
func (op *ReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the output tensor max(0, x).
func (op *ReLUOp) Output() *tensor.RawTensor { return op.output }
