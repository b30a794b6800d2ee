// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"testing"

	"github.com/strand-ml/strand/backend/cpu"
	"github.com/strand-ml/strand/tensor"
)

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want (2, 3)", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want float32", raw.DType())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}
}

// TestDispatcherEndToEnd runs a small computation through the public packages.
func TestDispatcherEndToEnd(t *testing.T) {
	d := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}
	y, err := tensor.Ones(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}

	z, err := d.Add(x, y)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tensor.ToSlice[float32](z)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{2, 3, 4, 5, 6, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("z[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	p, err := d.MatMul(x, x.T())
	if err != nil {
		t.Fatal(err)
	}
	if p.At(0, 1) != 32 {
		t.Errorf("(x @ x^T)[0][1] = %v, want 32", p.At(0, 1))
	}
}

// TestErrorSentinels verifies the re-exported error kinds match.
func TestErrorSentinels(t *testing.T) {
	_, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{3}, tensor.CPU)
	if !errors.Is(err, tensor.ErrSizeMismatch) {
		t.Errorf("FromSlice error = %v, want ErrSizeMismatch", err)
	}

	d := tensor.NewDispatcher(tensor.NewTable())
	a := tensor.Scalar(1, tensor.Float64, tensor.CPU)
	_, err = d.Exp(a)
	if !errors.Is(err, tensor.ErrUnsupported) {
		t.Errorf("Exp on empty table = %v, want ErrUnsupported", err)
	}
	var ke *tensor.KernelError
	if !errors.As(err, &ke) || ke.Key.Op != tensor.OpExp {
		t.Errorf("expected KernelError for %s, got %v", tensor.OpExp, err)
	}
}
