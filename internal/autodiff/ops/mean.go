package ops

import "github.com/painterly-ml/painterly/internal/tensor"

// MeanOp represents a full reduction to the mean: output = mean(x).
//
// Backward: every element contributed 1/n to the mean, so the scalar output
// gradient is spread uniformly over the input shape divided by n.
type MeanOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(input, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{input: input, output: output}
}

// Backward computes the input gradient for the mean reduction.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad := tensor.MustNewRaw(op.input.Shape())
	v := outputGrad.Data()[0] / float32(op.input.NumElements())
	data := grad.Data()
	for i := range data {
		data[i] = v
	}
	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensors [x].
func (op *MeanOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the shape-[1] mean tensor.
func (op *MeanOp) Output() *tensor.RawTensor { return op.output }
