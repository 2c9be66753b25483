package nn

import "github.com/painterly-ml/painterly/internal/tensor"

// ReLU applies the rectified linear unit element-wise.
type ReLU[B tensor.Backend] struct {
	name string
}

// NewReLU creates a ReLU activation layer.
func NewReLU[B tensor.Backend](name string) *ReLU[B] {
	return &ReLU[B]{name: name}
}

// Forward computes max(0, x).
func (r *ReLU[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	return input.ReLU()
}

// Name returns the layer name.
func (r *ReLU[B]) Name() string { return r.name }
