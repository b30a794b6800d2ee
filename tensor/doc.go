// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides n-dimensional arrays for the Strand library.
//
// # Overview
//
// A tensor is a strided view over a reference-counted storage buffer:
//   - Six element types: float16, float32, float64, int32, int64, uint8
//   - NumPy-style broadcasting
//   - Zero-copy views (Reshape, Permute, Transpose, Expand, Slice)
//   - Device tags (CPU, CUDA, Vulkan, Metal, WebGPU) that select kernels
//
// # Basic Usage
//
//	import (
//	    "github.com/strand-ml/strand/backend/cpu"
//	    "github.com/strand-ml/strand/tensor"
//	)
//
//	func main() {
//	    d := cpu.New()
//
//	    x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
//	    y, _ := tensor.Ones(tensor.Shape{3}, tensor.Float32, tensor.CPU)
//
//	    z, _ := d.Add(x, y)         // (2, 3), y broadcast over rows
//	    p, _ := d.MatMul(x, x.T())  // (2, 2)
//	    s, _ := d.Sum(p, nil, false)
//	    fmt.Println(s.Item())
//	}
//
// # Broadcasting
//
// Shapes are aligned on their trailing axis; each pair of extents must be
// equal or one of them must be 1:
//
//	(3, 1) with (3, 4) → (3, 4)
//	(4,)   with (3, 4) → (3, 4)
//	(3, 2) with (3, 4) → ErrShapeMismatch
//
// # Memory Management
//
// Views share storage with the tensor they came from, so a write through one
// is visible through all. Release drops a view's reference; the buffer is
// freed when the last reference goes.
//
// # Errors
//
// Failures carry a sentinel (ErrShapeMismatch, ErrNotContiguous,
// ErrSizeMismatch, ErrDeviceMismatch, ErrUnsupported, ...) for errors.Is and
// a structured type (ShapeError, SizeError, DeviceError) for errors.As.
package tensor
