// Package optim implements gradient-based optimizers.
//
// Optimizers update tensors in place from a gradient map produced by the
// autodiff tape. Only the tensors registered with the optimizer are updated;
// everything else in the gradient map (frozen network activations) is
// ignored.
package optim

import "github.com/painterly-ml/painterly/internal/tensor"

// Optimizer is the interface implemented by all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to all registered tensors, in place.
	// Tensors absent from the gradient map are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// LR returns the current learning rate.
	LR() float32

	// SetLR updates the learning rate. Useful for scheduling.
	SetLR(lr float32)
}
