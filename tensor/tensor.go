// Copyright 2026 Painterly Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations.
//
// The package defines the core types for float32 tensor math:
//   - Tensor[B]: high-level tensor bound to a compute backend
//   - RawTensor: low-level dense storage
//   - Backend: interface for compute implementations
//   - Shape: tensor dimensions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	y := x.Add(x)
package tensor

import (
	"math/rand"

	"github.com/painterly-ml/painterly/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{1, 3, 224, 224} is a batched NCHW image.
type Shape = tensor.Shape

// RawTensor is the low-level dense float32 tensor.
type RawTensor = tensor.RawTensor

// Backend is the compute interface implemented by all backends.
type Backend = tensor.Backend

// Tensor is a float32 tensor bound to a compute backend B.
type Tensor[B Backend] = tensor.Tensor[B]

// NewRaw creates a zero-filled RawTensor of the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	return tensor.NewRaw(shape)
}

// New creates a Tensor from a RawTensor and backend.
func New[B Backend](raw *RawTensor, b B) *Tensor[B] {
	return tensor.New(raw, b)
}

// FromSlice creates a tensor from a Go slice; the data is copied.
func FromSlice[B Backend](data []float32, shape Shape, b B) (*Tensor[B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros[B Backend](shape Shape, b B) *Tensor[B] {
	return tensor.Zeros(shape, b)
}

// Full creates a tensor filled with a specific value.
func Full[B Backend](shape Shape, value float32, b B) *Tensor[B] {
	return tensor.Full(shape, value, b)
}

// Uniform creates a tensor with values drawn from U(lo, hi) using rng.
func Uniform[B Backend](shape Shape, lo, hi float32, rng *rand.Rand, b B) *Tensor[B] {
	return tensor.Uniform(shape, lo, hi, rng, b)
}
