// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation stores the tensors involved in its forward pass and knows
// how to turn an output gradient into input gradients during the backward
// pass. Operations never compute forward results themselves; that is the
// backend's job.
package ops

import "github.com/painterly-ml/painterly/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// The returned slice corresponds position-wise to Inputs(); a nil entry
	// means no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
