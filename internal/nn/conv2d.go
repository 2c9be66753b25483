package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/painterly-ml/painterly/internal/tensor"
)

// Conv2D is a 2D convolution layer with frozen weights.
//
// Weight shape is [outChannels, inChannels, kernelSize, kernelSize], bias
// shape is [outChannels]. Input and output use NCHW layout.
type Conv2D[B tensor.Backend] struct {
	name        string
	weight      *tensor.Tensor[B]
	bias        *tensor.Tensor[B]
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     int
}

// NewConv2D creates a convolution layer with zero-valued parameters.
// Weights are expected to be filled in by SetWeights before use.
func NewConv2D[B tensor.Backend](name string, inChannels, outChannels, kernelSize, stride, padding int, backend B) *Conv2D[B] {
	return &Conv2D[B]{
		name:        name,
		weight:      tensor.Zeros(tensor.Shape{outChannels, inChannels, kernelSize, kernelSize}, backend),
		bias:        tensor.Zeros(tensor.Shape{outChannels}, backend),
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
	}
}

// NewConv2DRandom creates a convolution layer with He-initialized weights
// drawn from rng. Used for synthetic trunks in tests.
func NewConv2DRandom[B tensor.Backend](name string, inChannels, outChannels, kernelSize, stride, padding int, rng *rand.Rand, backend B) *Conv2D[B] {
	c := NewConv2D(name, inChannels, outChannels, kernelSize, stride, padding, backend)
	fanIn := float64(inChannels * kernelSize * kernelSize)
	std := float32(math.Sqrt(2.0 / fanIn))
	data := c.weight.Data()
	for i := range data {
		data[i] = float32(rng.NormFloat64()) * std
	}
	return c
}

// Forward applies the convolution followed by the bias.
func (c *Conv2D[B]) Forward(input *tensor.Tensor[B]) *tensor.Tensor[B] {
	backend := input.Backend()
	raw := backend.Conv2D(input.Raw(), c.weight.Raw(), c.bias.Raw(), c.stride, c.padding)
	return tensor.New(raw, backend)
}

// Name returns the layer name.
func (c *Conv2D[B]) Name() string { return c.name }

// Weight returns the kernel tensor.
func (c *Conv2D[B]) Weight() *tensor.Tensor[B] { return c.weight }

// Bias returns the bias tensor.
func (c *Conv2D[B]) Bias() *tensor.Tensor[B] { return c.bias }

// SetWeights replaces the layer parameters with the given values.
// Shapes must match the layer's configuration exactly.
func (c *Conv2D[B]) SetWeights(weight, bias *tensor.RawTensor) error {
	wantW := tensor.Shape{c.outChannels, c.inChannels, c.kernelSize, c.kernelSize}
	if !weight.Shape().Equal(wantW) {
		return fmt.Errorf("conv2d %s: weight shape %v, want %v", c.name, weight.Shape(), wantW)
	}
	wantB := tensor.Shape{c.outChannels}
	if !bias.Shape().Equal(wantB) {
		return fmt.Errorf("conv2d %s: bias shape %v, want %v", c.name, bias.Shape(), wantB)
	}
	copy(c.weight.Data(), weight.Data())
	copy(c.bias.Data(), bias.Data())
	return nil
}
