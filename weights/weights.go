// Copyright 2026 Painterly Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package weights provides the public API for the PWTS parameter format.
package weights

import internal "github.com/painterly-ml/painterly/internal/weights"

// FormatVersion is the current PWTS format version.
const FormatVersion = internal.FormatVersion

// Errors returned when loading weights files.
var (
	ErrResourceUnavailable = internal.ErrResourceUnavailable
	ErrChecksumMismatch    = internal.ErrChecksumMismatch
)

// Entry describes one named tensor in a PWTS header.
type Entry = internal.Entry

// Store is an in-memory collection of named tensors.
type Store = internal.Store

// NewStore creates an empty store.
func NewStore() *Store {
	return internal.NewStore()
}

// Load reads a PWTS file into a new store.
func Load(path string) (*Store, error) {
	return internal.Load(path)
}
