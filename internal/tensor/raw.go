// Package tensor provides the core tensor types and operations for Painterly.
package tensor

import "fmt"

// RawTensor is the low-level tensor representation: a float32 buffer plus
// shape metadata. Image optimization only ever needs float32, so unlike a
// general framework there is no dtype dispatch and no device field.
//
// RawTensor identity matters: the autodiff tape keys recorded operations and
// accumulated gradients by *RawTensor pointer. Backends therefore never
// modify an input buffer in place; every operation allocates a fresh result.
type RawTensor struct {
	data   []float32
	shape  Shape
	stride []int
}

// NewRaw creates a new zero-initialized RawTensor with the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]float32, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// MustNewRaw is NewRaw for shapes known to be valid. Panics otherwise.
func MustNewRaw(shape Shape) *RawTensor {
	r, err := NewRaw(shape)
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return r
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the backing float32 slice (zero-copy).
//
// WARNING: Modifications to the returned slice modify the tensor.
func (r *RawTensor) Data() []float32 {
	return r.data
}

// Clone creates a deep copy of the RawTensor. The copy has its own buffer
// and its own identity on the autodiff tape.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]float32, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
	}
}

// WithShape returns a view of the same buffer under a different shape.
// The new shape must have the same number of elements.
func (r *RawTensor) WithShape(newShape Shape) *RawTensor {
	if newShape.NumElements() != r.NumElements() {
		panic(fmt.Sprintf("tensor: cannot view shape %v as %v", r.shape, newShape))
	}
	return &RawTensor{
		data:   r.data,
		shape:  newShape.Clone(),
		stride: newShape.ComputeStrides(),
	}
}
