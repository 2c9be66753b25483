// Package nn provides neural network layers built on the tensor package.
//
// Layers are generic over the backend so the same definitions run on a plain
// CPU backend or an autodiff-decorated one. All layers here hold frozen
// parameters: they transform activations but are never trained themselves.
package nn

import "github.com/painterly-ml/painterly/internal/tensor"

// Module is the interface implemented by all network layers.
type Module[B tensor.Backend] interface {
	// Forward computes the layer's output for the given input.
	Forward(input *tensor.Tensor[B]) *tensor.Tensor[B]

	// Name returns the layer's name within the network.
	Name() string
}
