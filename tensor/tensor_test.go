// Copyright 2026 Painterly Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/painterly-ml/painterly/backend/cpu"
	"github.com/painterly-ml/painterly/tensor"
)

// TestBackendInterface verifies that cpu.Backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.Backend)(nil)
}

// TestPublicAPI exercises the re-exported tensor surface.
func TestPublicAPI(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	y := x.Add(x)
	want := []float32{2, 4, 6, 8}
	for i, v := range y.Data() {
		if v != want[i] {
			t.Errorf("Add result[%d] = %v, want %v", i, v, want[i])
		}
	}

	z := tensor.Full(tensor.Shape{2, 2}, 1, backend)
	if got := x.Mul(z).Mean().Item(); got != 2.5 {
		t.Errorf("Mean = %v, want 2.5", got)
	}
}
