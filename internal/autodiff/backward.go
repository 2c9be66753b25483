package autodiff

import "github.com/painterly-ml/painterly/internal/tensor"

// BackwardCapable is a backend that carries a gradient tape.
// AutodiffBackend satisfies it; code that needs to run a backward pass should
// constrain its backend type parameter to this interface.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// Backward runs the backward pass from a scalar loss tensor, seeding the
// output gradient with ones. It returns the gradient map for every tensor on
// the tape's computation graph.
func Backward[B BackwardCapable](loss *tensor.Tensor[B]) map[*tensor.RawTensor]*tensor.RawTensor {
	seed := tensor.MustNewRaw(loss.Shape().Clone())
	data := seed.Data()
	for i := range data {
		data[i] = 1
	}
	return loss.Backend().GetTape().Backward(seed, loss.Backend())
}
