// Copyright 2025 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU kernels for Strand.
//
// # Overview
//
// This package registers kernels for every operation and dtype:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS matrix multiplication for float32 and float64
//   - Float16 computed through float32
//   - Strided and broadcast operands without intermediate copies
//
// # Basic Usage
//
//	import (
//	    "github.com/strand-ml/strand/autodiff"
//	    "github.com/strand-ml/strand/backend/cpu"
//	    "github.com/strand-ml/strand/tensor"
//	)
//
//	func main() {
//	    d := cpu.New()
//
//	    x, _ := tensor.Ones(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	    y, _ := d.Add(x, x)
//
//	    // Use with autodiff
//	    g := autodiff.New(d)
//	}
//
// # Performance
//
// Elementwise kernels split their output into chunks of at least
// Config.MinChunkSize elements; reductions split output elements. Results are
// bit-identical to the sequential path for any worker count.
//
// # Thread Safety
//
// The returned Dispatcher is safe for concurrent use. Concurrent writes to
// tensors that share storage are the caller's responsibility.
package cpu
