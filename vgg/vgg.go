// Copyright 2026 Painterly Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package vgg provides the public API for the frozen VGG-19 feature
// extractor.
package vgg

import (
	internal "github.com/painterly-ml/painterly/internal/vgg"
	"github.com/painterly-ml/painterly/tensor"
)

// Errors returned by the extractor.
var (
	ErrUnknownLayer  = internal.ErrUnknownLayer
	ErrShapeMismatch = internal.ErrShapeMismatch
)

// Extractor runs images through the trunk and captures named activations.
type Extractor[B tensor.Backend] = internal.Extractor[B]

// New builds a VGG-19 extractor with zero-valued weights.
func New[B tensor.Backend](backend B) *Extractor[B] {
	return internal.New(backend)
}

// Load builds a VGG-19 extractor and fills it from a PWTS weights file.
func Load[B tensor.Backend](path string, backend B) (*Extractor[B], error) {
	return internal.Load(path, backend)
}

// NewRandom builds a narrow, seeded random trunk with VGG-19 layer names.
func NewRandom[B tensor.Backend](seed int64, backend B) *Extractor[B] {
	return internal.NewRandom(seed, backend)
}
