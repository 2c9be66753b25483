// Copyright 2026 Painterly Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// Wrap any backend to record operations on a gradient tape:
//
//	backend := autodiff.New(cpu.New())
//	backend.GetTape().StartRecording()
//	loss := computeLoss(backend)
//	grads := autodiff.Backward(loss)
package autodiff

import (
	internal "github.com/painterly-ml/painterly/internal/autodiff"
	"github.com/painterly-ml/painterly/tensor"
)

// AutodiffBackend decorates a backend with gradient tape recording.
type AutodiffBackend[B tensor.Backend] = internal.AutodiffBackend[B]

// GradientTape records operations and computes gradients in reverse.
type GradientTape = internal.GradientTape

// BackwardCapable is a backend carrying a gradient tape.
type BackwardCapable = internal.BackwardCapable

// New creates an AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](inner B) *AutodiffBackend[B] {
	return internal.New(inner)
}

// NewGradientTape creates an empty gradient tape.
func NewGradientTape() *GradientTape {
	return internal.NewGradientTape()
}

// Backward runs the backward pass from a scalar loss, seeding with ones.
func Backward[B BackwardCapable](loss *tensor.Tensor[B]) map[*tensor.RawTensor]*tensor.RawTensor {
	return internal.Backward(loss)
}
