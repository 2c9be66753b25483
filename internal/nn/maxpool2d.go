package nn

import "github.com/painterly-ml/painterly/internal/tensor"

// MaxPool2D downsamples NCHW input by taking the maximum over square windows.
type MaxPool2D[B tensor.Backend] struct {
	name       string
	kernelSize int
	stride     int
}

// NewMaxPool2D creates a max pooling layer.
func NewMaxPool2D[B tensor.Backend](name string, kernelSize, stride int) *MaxPool2D[B] {
	return &MaxPool2D[B]{name: name, kernelSize: kernelSize, stride: stride}
}

// Forward applies max pooling.
func (p *MaxPool2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	backend := input.Backend()
	raw := backend.MaxPool2D(input.Raw(), p.kernelSize, p.stride)
	return tensor.New(raw, backend)
}

// Name returns the layer name.
func (p *MaxPool2D[B]) Name() string { return p.name }
