// Package vgg implements a frozen VGG-19 convolutional trunk used as a fixed
// feature extractor.
//
// The trunk covers the convolutional blocks only; the classifier head is
// omitted because style transfer never needs it. Layers are named
// block{i}_conv{j} and their captured activations are the post-ReLU outputs,
// matching the canonical ImageNet-trained network.
package vgg

import (
	"errors"
	"fmt"

	"github.com/painterly-ml/painterly/internal/nn"
	"github.com/painterly-ml/painterly/internal/tensor"
	"github.com/painterly-ml/painterly/internal/weights"
)

// Errors returned by the extractor.
var (
	// ErrUnknownLayer is returned when a requested layer name does not exist
	// in the trunk.
	ErrUnknownLayer = errors.New("vgg: unknown layer")

	// ErrShapeMismatch is returned when an input tensor does not have the
	// expected [1, 3, H, W] shape.
	ErrShapeMismatch = errors.New("vgg: shape mismatch")
)

// convsPerBlock and blockWidths describe the VGG-19 convolutional topology:
// five blocks of 3x3 stride-1 convolutions, each block followed by a 2x2
// stride-2 max pool.
var (
	convsPerBlock = []int{2, 2, 4, 4, 4}
	blockWidths   = []int{64, 128, 256, 512, 512}
)

// step is one unit of the forward pass. Conv steps carry the capture name
// under which their post-ReLU activation is published.
type step[B tensor.Backend] struct {
	conv *nn.Conv2D[B]
	relu *nn.ReLU[B]
	pool *nn.MaxPool2D[B]
	name string
}

// Extractor runs images through the trunk and captures named activations.
type Extractor[B tensor.Backend] struct {
	steps   []step[B]
	convs   map[string]*nn.Conv2D[B]
	backend B
}

// New builds a VGG-19 extractor with zero-valued weights.
// Call LoadWeights before extracting features.
func New[B tensor.Backend](backend B) *Extractor[B] {
	return build(convsPerBlock, blockWidths, backend)
}

func build[B tensor.Backend](convs, widths []int, backend B) *Extractor[B] {
	e := &Extractor[B]{
		convs:   make(map[string]*nn.Conv2D[B]),
		backend: backend,
	}

	inChannels := 3
	for block := 0; block < len(convs); block++ {
		width := widths[block]
		for c := 0; c < convs[block]; c++ {
			name := fmt.Sprintf("block%d_conv%d", block+1, c+1)
			conv := nn.NewConv2D(name, inChannels, width, 3, 1, 1, backend)
			e.convs[name] = conv
			e.steps = append(e.steps, step[B]{
				conv: conv,
				relu: nn.NewReLU[B](name + "_relu"),
				name: name,
			})
			inChannels = width
		}
		e.steps = append(e.steps, step[B]{
			pool: nn.NewMaxPool2D[B](fmt.Sprintf("block%d_pool", block+1), 2, 2),
		})
	}

	return e
}

// LayerNames returns all capturable layer names in forward order.
func (e *Extractor[B]) LayerNames() []string {
	names := make([]string, 0, len(e.convs))
	for _, s := range e.steps {
		if s.conv != nil {
			names = append(names, s.name)
		}
	}
	return names
}

// HasLayer reports whether name is a capturable layer.
func (e *Extractor[B]) HasLayer(name string) bool {
	_, ok := e.convs[name]
	return ok
}

// Backend returns the extractor's compute backend.
func (e *Extractor[B]) Backend() B { return e.backend }

// Extract runs a forward pass and returns the activation of a single layer.
// The pass stops as soon as the requested layer has been computed.
func (e *Extractor[B]) Extract(input *tensor.Tensor[B], layer string) (*tensor.Tensor[B], error) {
	acts, err := e.ExtractAll(input, []string{layer})
	if err != nil {
		return nil, err
	}
	return acts[layer], nil
}

// ExtractAll runs a single forward pass and returns the activations of all
// requested layers. Duplicate names are allowed and resolve to the same
// tensor.
func (e *Extractor[B]) ExtractAll(input *tensor.Tensor[B], layers []string) (map[string]*tensor.Tensor[B], error) {
	if err := e.checkInput(input); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(layers))
	for _, name := range layers {
		if !e.HasLayer(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLayer, name)
		}
		wanted[name] = true
	}

	acts := make(map[string]*tensor.Tensor[B], len(wanted))
	x := input
	for _, s := range e.steps {
		switch {
		case s.conv != nil:
			x = s.relu.Forward(s.conv.Forward(x))
			if wanted[s.name] {
				acts[s.name] = x
				if len(acts) == len(wanted) {
					return acts, nil
				}
			}
		case s.pool != nil:
			x = s.pool.Forward(x)
		}
	}

	return acts, nil
}

func (e *Extractor[B]) checkInput(input *tensor.Tensor[B]) error {
	shape := input.Shape()
	if len(shape) != 4 || shape[0] != 1 || shape[1] != 3 {
		return fmt.Errorf("%w: input must be [1, 3, H, W], got %v", ErrShapeMismatch, shape)
	}
	// Five pooling stages halve H and W each time.
	minSide := 1 << len(convsPerBlock)
	if shape[2] < minSide || shape[3] < minSide {
		return fmt.Errorf("%w: input %dx%d smaller than minimum %dx%d", ErrShapeMismatch, shape[2], shape[3], minSide, minSide)
	}
	return nil
}

// LoadWeights fills the trunk's convolution parameters from a store.
// Every layer must be present under the keys "<name>/weight" and
// "<name>/bias".
func (e *Extractor[B]) LoadWeights(store *weights.Store) error {
	for name, conv := range e.convs {
		w, ok := store.Get(name + "/weight")
		if !ok {
			return fmt.Errorf("vgg: missing weight for layer %s", name)
		}
		b, ok := store.Get(name + "/bias")
		if !ok {
			return fmt.Errorf("vgg: missing bias for layer %s", name)
		}
		if err := conv.SetWeights(w, b); err != nil {
			return err
		}
	}
	return nil
}

// ExportWeights writes the trunk's convolution parameters into a store.
func (e *Extractor[B]) ExportWeights() *weights.Store {
	store := weights.NewStore()
	for _, s := range e.steps {
		if s.conv == nil {
			continue
		}
		store.Put(s.name+"/weight", s.conv.Weight().Raw())
		store.Put(s.name+"/bias", s.conv.Bias().Raw())
	}
	return store
}

// Load builds a VGG-19 extractor and fills it from a PWTS weights file.
func Load[B tensor.Backend](path string, backend B) (*Extractor[B], error) {
	store, err := weights.Load(path)
	if err != nil {
		return nil, err
	}
	e := New(backend)
	if err := e.LoadWeights(store); err != nil {
		return nil, err
	}
	return e, nil
}
