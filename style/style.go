// Copyright 2026 Painterly Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package style provides the public API for content and style losses.
package style

import (
	internal "github.com/painterly-ml/painterly/internal/style"
	"github.com/painterly-ml/painterly/tensor"
)

// ErrShapeMismatch is returned when compared activations disagree in shape.
var ErrShapeMismatch = internal.ErrShapeMismatch

// LayerWeight pairs a trunk layer name with its style loss weight.
type LayerWeight = internal.LayerWeight

// DefaultContentLayer is the trunk layer used for the content loss.
const DefaultContentLayer = internal.DefaultContentLayer

// DefaultStyleLayers returns the standard style layer selection.
func DefaultStyleLayers() []LayerWeight {
	return internal.DefaultStyleLayers()
}

// ParseLayers parses a comma-separated "name:weight" list.
func ParseLayers(s string) ([]LayerWeight, error) {
	return internal.ParseLayers(s)
}

// Gram computes the Gram matrix of a [1, C, H, W] activation.
func Gram[B tensor.Backend](activation *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	return internal.Gram(activation)
}

// ContentLoss computes the content loss between two activations.
func ContentLoss[B tensor.Backend](content, generated *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	return internal.ContentLoss(content, generated)
}

// StyleLoss computes the weighted sum of per-layer style losses.
func StyleLoss[B tensor.Backend](styleActs, generatedActs map[string]*tensor.Tensor[B], layers []LayerWeight) (*tensor.Tensor[B], error) {
	return internal.StyleLoss(styleActs, generatedActs, layers)
}

// TotalLoss combines content and style losses with their weights.
func TotalLoss[B tensor.Backend](content, style *tensor.Tensor[B], alpha, beta float32) *tensor.Tensor[B] {
	return internal.TotalLoss(content, style, alpha, beta)
}
