// Copyright 2026 Painterly Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package imaging provides the public API for image/tensor conversion.
package imaging

import (
	"image"

	internal "github.com/painterly-ml/painterly/internal/imaging"
	"github.com/painterly-ml/painterly/tensor"
)

// ErrResourceUnavailable wraps failures to read or decode an input image.
var ErrResourceUnavailable = internal.ErrResourceUnavailable

// Load reads and decodes an image file (PNG or JPEG).
func Load(path string) (image.Image, error) {
	return internal.Load(path)
}

// Save encodes an image to a file; the format is chosen by extension.
func Save(path string, img image.Image) error {
	return internal.Save(path, img)
}

// Resize scales an image to the given dimensions with bilinear filtering.
func Resize(img image.Image, width, height int) image.Image {
	return internal.Resize(img, width, height)
}

// Preprocess converts an image into a mean-centered BGR [1, 3, H, W] tensor.
func Preprocess[B tensor.Backend](img image.Image, backend B) *tensor.Tensor[B] {
	return internal.Preprocess(img, backend)
}

// Deprocess converts a [1, 3, H, W] BGR tensor back into an image.
func Deprocess(t *tensor.RawTensor) (image.Image, error) {
	return internal.Deprocess(t)
}
