// Copyright 2026 Painterly Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for neural network layers.
package nn

import (
	internal "github.com/painterly-ml/painterly/internal/nn"
	"github.com/painterly-ml/painterly/tensor"
)

// Module is the interface implemented by all layers.
type Module[B tensor.Backend] = internal.Module[B]

// Conv2D is a 2D convolution layer with frozen weights.
type Conv2D[B tensor.Backend] = internal.Conv2D[B]

// MaxPool2D downsamples input by taking window maxima.
type MaxPool2D[B tensor.Backend] = internal.MaxPool2D[B]

// ReLU applies the rectified linear unit element-wise.
type ReLU[B tensor.Backend] = internal.ReLU[B]

// NewConv2D creates a convolution layer with zero-valued parameters.
func NewConv2D[B tensor.Backend](name string, inChannels, outChannels, kernelSize, stride, padding int, backend B) *Conv2D[B] {
	return internal.NewConv2D(name, inChannels, outChannels, kernelSize, stride, padding, backend)
}

// NewMaxPool2D creates a max pooling layer.
func NewMaxPool2D[B tensor.Backend](name string, kernelSize, stride int) *MaxPool2D[B] {
	return internal.NewMaxPool2D[B](name, kernelSize, stride)
}

// NewReLU creates a ReLU activation layer.
func NewReLU[B tensor.Backend](name string) *ReLU[B] {
	return internal.NewReLU[B](name)
}
